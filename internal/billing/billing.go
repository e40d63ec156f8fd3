package billing

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"callpay-platform/internal/account"
	"callpay-platform/internal/ledger"

	"github.com/google/uuid"
)

// Quote is the computed charge for a terminated session.
//
// Chargeable time runs from the receiver joining to the end of the call.
// Ring time is never billed: a call that ends while still RINGING quotes
// zero and posts nothing.
type Quote struct {
	ChargeableSeconds int   `json:"chargeable_seconds"`
	BillableMinutes   int   `json:"billable_minutes"`
	RatePerMinute     int64 `json:"rate_per_minute"`
	CoinsCharged      int64 `json:"coins_charged"`
}

// QuoteFor computes the charge for a session ending at endedAt.
// receiverJoinedAt == nil means the conversation never began.
// ratePerMinute is the receiver's configured rate for the session's media type.
func QuoteFor(receiverJoinedAt *time.Time, endedAt time.Time, ratePerMinute int64) Quote {
	if receiverJoinedAt == nil {
		return Quote{RatePerMinute: ratePerMinute}
	}
	sec := int(endedAt.Sub(*receiverJoinedAt) / time.Second)
	if sec < 0 {
		// Clock skew between recorded timestamps; never bill negative time.
		sec = 0
	}
	mins := BillableMinutes(sec)
	return Quote{
		ChargeableSeconds: sec,
		BillableMinutes:   mins,
		RatePerMinute:     ratePerMinute,
		CoinsCharged:      int64(mins) * ratePerMinute,
	}
}

// BillableMinutes rounds seconds up to whole minutes, telephony style:
// a 1-second call bills as 1 minute.
func BillableMinutes(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	m := seconds / 60
	if seconds%60 != 0 {
		m++
	}
	return m
}

// ClampCharge limits a charge to what the caller can actually pay.
// The call already happened, so an underfunded caller is charged down to
// zero rather than blocked retroactively.
func ClampCharge(charge, callerBalance int64) int64 {
	if charge <= 0 {
		return 0
	}
	if callerBalance <= 0 {
		return 0
	}
	if charge > callerBalance {
		return callerBalance
	}
	return charge
}

// Engine posts session charges to the ledger.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Result is what was actually posted after clamping.
type Result struct {
	CoinsCharged  int64
	CoinsCredited int64
}

// Post writes the billing outcome for a session inside the caller's
// transaction: one CALL_CHARGE debit, one CALL_EARNING credit, and both
// balance deltas. The caller must already hold FOR UPDATE locks on both
// account rows and must mark the session ENDED in the same transaction;
// that shared atomic unit is what makes billing at-most-once.
//
// Credit mirrors charge 1:1; platform commission is a payout-time concern,
// not a ledger one.
func (e *Engine) Post(ctx context.Context, tx *sql.Tx, sessionID, callerID, receiverID string, q Quote, callerBalance int64, now time.Time) (Result, error) {
	charged := ClampCharge(q.CoinsCharged, callerBalance)
	if charged == 0 {
		return Result{}, nil
	}

	// Replay guard: if the charge entry already exists the session was
	// billed by a competing transaction; the status CAS upstream should
	// have prevented this, so treat it as corruption.
	if _, ok, err := ledger.FindByIdempotency(ctx, tx, callerID, ledger.ChargeKey(sessionID)); err != nil {
		return Result{}, err
	} else if ok {
		return Result{}, fmt.Errorf("billing: session %s already charged", sessionID)
	}

	debit := ledger.Entry{
		ID:             uuid.NewString(),
		AccountID:      callerID,
		AmountCoins:    -charged,
		Type:           ledger.EntryTypeCallCharge,
		SessionID:      sessionID,
		IdempotencyKey: ledger.ChargeKey(sessionID),
		CreatedAt:      now,
	}
	credit := ledger.Entry{
		ID:             uuid.NewString(),
		AccountID:      receiverID,
		AmountCoins:    charged,
		Type:           ledger.EntryTypeCallEarning,
		SessionID:      sessionID,
		IdempotencyKey: ledger.EarningKey(sessionID),
		CreatedAt:      now,
	}
	if err := ledger.Insert(ctx, tx, debit); err != nil {
		return Result{}, err
	}
	if err := ledger.Insert(ctx, tx, credit); err != nil {
		return Result{}, err
	}

	if _, err := account.ApplyBalanceDelta(ctx, tx, callerID, -charged, now); err != nil {
		return Result{}, err
	}
	if _, err := account.ApplyBalanceDelta(ctx, tx, receiverID, charged, now); err != nil {
		return Result{}, err
	}

	return Result{CoinsCharged: charged, CoinsCredited: charged}, nil
}
