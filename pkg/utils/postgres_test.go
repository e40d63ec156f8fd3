package utils

import (
	"testing"
	"time"
)

func TestPostgresPoolConfigDefaults(t *testing.T) {
	c := PostgresPoolConfig{}.withDefaults()
	if c.MaxOpenConns != 25 {
		t.Errorf("MaxOpenConns = %d", c.MaxOpenConns)
	}
	if c.MaxIdleConns != 25 {
		t.Errorf("MaxIdleConns = %d", c.MaxIdleConns)
	}
	if c.ConnMaxLifetime != 30*time.Minute {
		t.Errorf("ConnMaxLifetime = %s", c.ConnMaxLifetime)
	}
	if c.ConnMaxIdleTime != 5*time.Minute {
		t.Errorf("ConnMaxIdleTime = %s", c.ConnMaxIdleTime)
	}
	if c.PingTimeout != 5*time.Second {
		t.Errorf("PingTimeout = %s", c.PingTimeout)
	}
}

func TestPostgresPoolConfigExplicitValuesKept(t *testing.T) {
	c := PostgresPoolConfig{MaxOpenConns: 5, PingTimeout: time.Second}.withDefaults()
	if c.MaxOpenConns != 5 {
		t.Errorf("MaxOpenConns = %d", c.MaxOpenConns)
	}
	if c.PingTimeout != time.Second {
		t.Errorf("PingTimeout = %s", c.PingTimeout)
	}
}
