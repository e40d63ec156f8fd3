package account

import "time"

// Account is a party capable of calling or being called.
//
// Invariants:
// - CoinBalance never goes below zero (also enforced by a CHECK constraint).
// - Busy is true iff the account is caller or receiver of exactly one
//   session in RINGING or ONGOING. Only the session service writes it.
// - CoinBalance is written only through the billing/ledger path; every
//   change has a matching ledger entry.
//
// Rates are per-receiver: the callee decides what a minute of their time
// costs, per media type.
type Account struct {
	ID     string `json:"id" db:"id"`
	Status Status `json:"status" db:"status"`

	Busy        bool  `json:"busy" db:"busy"`
	CoinBalance int64 `json:"coin_balance" db:"coin_balance"`

	AudioRatePerMin int64 `json:"audio_rate_per_min" db:"audio_rate_per_min"`
	VideoRatePerMin int64 `json:"video_rate_per_min" db:"video_rate_per_min"`
	AudioEnabled    bool  `json:"audio_enabled" db:"audio_enabled"`
	VideoEnabled    bool  `json:"video_enabled" db:"video_enabled"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusDeleted   Status = "deleted"
)
