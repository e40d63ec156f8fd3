package ledger

import "time"

// Entry is an immutable append-only balance change record.
//
// Invariants:
// - Entries are never updated or deleted.
// - The sum of an account's entry amounts since account creation equals its
//   current coin balance; every balance write happens in the same transaction
//   as its entry insert.
// - A call session produces at most one CALL_CHARGE and one CALL_EARNING
//   entry, written together.
type Entry struct {
	ID        string `json:"id" db:"id"`
	AccountID string `json:"account_id" db:"account_id"`

	// AmountCoins is signed: credits are positive, debits are negative.
	AmountCoins int64 `json:"amount_coins" db:"amount_coins"`

	Type EntryType `json:"type" db:"type"`

	// SessionID links call entries to their CallSession. Empty for
	// non-call categories.
	SessionID string `json:"session_id,omitempty" db:"session_id"`

	// IdempotencyKey is required for safe retries of money-posting
	// operations. Call entries derive it from the session id, which is what
	// makes billing at-most-once even across replayed End requests.
	IdempotencyKey string `json:"idempotency_key" db:"idempotency_key"`

	// Metadata is optional JSON for audit/debug (store as JSONB in Postgres).
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EntryType string

const (
	EntryTypeCallCharge  EntryType = "call_charge"  // debit on the caller
	EntryTypeCallEarning EntryType = "call_earning" // credit on the receiver
	EntryTypeAdminAdjust EntryType = "admin_adjust" // manual ops correction
)

// ChargeKey and EarningKey build the idempotency keys for a session's
// billing pair.
func ChargeKey(sessionID string) string  { return "call_charge:" + sessionID }
func EarningKey(sessionID string) string { return "call_earning:" + sessionID }
