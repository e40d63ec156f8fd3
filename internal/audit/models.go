package audit

import "time"

// Event is an immutable, append-only operational audit record.
//
// Invariants:
// - Events are never updated or deleted.
// - Audit capture is best-effort; never block a call transition or a money
//   operation on an audit failure.
//
// Anything that touches live calls or balances outside the normal client
// flow (reaper terminations, manual credits, forced ends) must leave a
// record here.
type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the event, when one
	// exists; reaper events have none.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// Target identifiers (optional, depending on the event type).
	SessionID string `json:"session_id,omitempty" db:"session_id"`
	AccountID string `json:"account_id,omitempty" db:"account_id"`

	// AmountCoins is set for events with a money side (forced billing,
	// manual credits).
	AmountCoins int64 `json:"amount_coins,omitempty" db:"amount_coins"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeForcedTermination EventType = "forced_termination"
	EventTypeAdminAction       EventType = "admin_action"
)
