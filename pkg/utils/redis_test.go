package utils

import (
	"context"
	"testing"
	"time"
)

func TestRedisConfigDefaults(t *testing.T) {
	c := RedisConfig{}.withDefaults()
	if c.DialTimeout != 3*time.Second {
		t.Errorf("DialTimeout = %s", c.DialTimeout)
	}
	if c.PoolSize != 20 {
		t.Errorf("PoolSize = %d", c.PoolSize)
	}
	if c.PingTimeout != 2*time.Second {
		t.Errorf("PingTimeout = %s", c.PingTimeout)
	}
}

func TestOpenRedisRequiresAddr(t *testing.T) {
	if _, err := OpenRedis(context.Background(), RedisConfig{}); err == nil {
		t.Fatal("expected error for empty addr")
	}
}

func TestPresenceHelpersValidateInput(t *testing.T) {
	ctx := context.Background()

	if _, err := PresenceHeartbeat(ctx, nil, "k", time.Second); err == nil {
		t.Fatal("expected error for nil client")
	}
	if err := PresenceClear(ctx, nil, "k"); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := PresenceCheck(ctx, nil, "k"); err == nil {
		t.Fatal("expected error for nil client")
	}
}
