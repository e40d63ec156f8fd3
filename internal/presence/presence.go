package presence

import (
	"context"
	"time"

	"callpay-platform/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// Tracker maintains per-account online flags in Redis.
//
// Online is advisory liveness fed by client heartbeats; it expires on its
// own when a client crashes. The busy flag is NOT tracked here: busy must
// participate in the admission/transition transactions, so it lives on the
// account row in Postgres and is written only by the session service.
type Tracker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTracker(rdb *redis.Client, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Tracker{rdb: rdb, ttl: ttl}
}

// Heartbeat refreshes the online flag. Returns true when the account
// transitioned from offline to online.
func (t *Tracker) Heartbeat(ctx context.Context, accountID string) (bool, error) {
	return utils.PresenceHeartbeat(ctx, t.rdb, OnlineKey(accountID), t.ttl)
}

// SetOffline drops the online flag immediately (explicit sign-off from the
// client; quicker than waiting for the TTL).
func (t *Tracker) SetOffline(ctx context.Context, accountID string) error {
	return utils.PresenceClear(ctx, t.rdb, OnlineKey(accountID))
}

// IsOnline reports whether the account currently has a live heartbeat.
func (t *Tracker) IsOnline(ctx context.Context, accountID string) (bool, error) {
	return utils.PresenceCheck(ctx, t.rdb, OnlineKey(accountID))
}

// OnlineKey builds the Redis key for an account's online flag.
func OnlineKey(accountID string) string {
	return "presence:online:" + accountID
}
