package reporting

import (
	"context"
	"errors"
	"time"

	"callpay-platform/internal/ledger"
	"callpay-platform/internal/session"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// Implementations should query immutable sources (terminated sessions, the
// ledger) so a summary can never disagree with what was actually charged.
type Repository interface {
	ListEndedSessions(ctx context.Context, accountID string, from, to time.Time) ([]session.Session, error)
	ListLedgerEntries(ctx context.Context, accountID string, from, to time.Time) ([]ledger.Entry, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// Summary is a per-account usage and earnings rollup for a time window.
type Summary struct {
	AccountID string    `json:"account_id"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`

	CallsPlaced   int `json:"calls_placed"`
	CallsReceived int `json:"calls_received"`

	// BilledSeconds sums server-computed chargeable durations.
	BilledSeconds int `json:"billed_seconds"`

	CoinsSpent  int64 `json:"coins_spent"`
	CoinsEarned int64 `json:"coins_earned"`
}

func (s *Service) AccountSummary(ctx context.Context, accountID string, from, to time.Time) (Summary, error) {
	if accountID == "" || !to.After(from) {
		return Summary{}, ErrInvalidRequest
	}

	sessions, err := s.repo.ListEndedSessions(ctx, accountID, from, to)
	if err != nil {
		return Summary{}, err
	}
	entries, err := s.repo.ListLedgerEntries(ctx, accountID, from, to)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{AccountID: accountID, From: from, To: to}
	for _, sess := range sessions {
		switch accountID {
		case sess.CallerID:
			out.CallsPlaced++
		case sess.ReceiverID:
			out.CallsReceived++
		default:
			continue
		}
		out.BilledSeconds += sess.DurationSeconds
	}
	for _, e := range entries {
		switch e.Type {
		case ledger.EntryTypeCallCharge:
			out.CoinsSpent += -e.AmountCoins
		case ledger.EntryTypeCallEarning:
			out.CoinsEarned += e.AmountCoins
		}
	}
	return out, nil
}
