package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"callpay-platform/internal/ledger"
	"callpay-platform/internal/session"
)

type fakeRepo struct {
	sessions []session.Session
	entries  []ledger.Entry
}

func (f *fakeRepo) ListEndedSessions(_ context.Context, _ string, _, _ time.Time) ([]session.Session, error) {
	return f.sessions, nil
}

func (f *fakeRepo) ListLedgerEntries(_ context.Context, _ string, _, _ time.Time) ([]ledger.Entry, error) {
	return f.entries, nil
}

func TestAccountSummary(t *testing.T) {
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	repo := &fakeRepo{
		sessions: []session.Session{
			{CallerID: "me", ReceiverID: "other-1", DurationSeconds: 125},
			{CallerID: "me", ReceiverID: "other-2", DurationSeconds: 60},
			{CallerID: "other-3", ReceiverID: "me", DurationSeconds: 300},
		},
		entries: []ledger.Entry{
			{Type: ledger.EntryTypeCallCharge, AmountCoins: -30},
			{Type: ledger.EntryTypeCallCharge, AmountCoins: -10},
			{Type: ledger.EntryTypeCallEarning, AmountCoins: 50},
			{Type: ledger.EntryTypeAdminAdjust, AmountCoins: 1000},
		},
	}

	out, err := NewService(repo).AccountSummary(context.Background(), "me", from, to)
	if err != nil {
		t.Fatal(err)
	}

	if out.CallsPlaced != 2 {
		t.Errorf("calls placed = %d, want 2", out.CallsPlaced)
	}
	if out.CallsReceived != 1 {
		t.Errorf("calls received = %d, want 1", out.CallsReceived)
	}
	if out.BilledSeconds != 485 {
		t.Errorf("billed seconds = %d, want 485", out.BilledSeconds)
	}
	if out.CoinsSpent != 40 {
		t.Errorf("coins spent = %d, want 40", out.CoinsSpent)
	}
	if out.CoinsEarned != 50 {
		t.Errorf("coins earned = %d, want 50", out.CoinsEarned)
	}
}

func TestAccountSummaryValidation(t *testing.T) {
	s := NewService(&fakeRepo{})
	now := time.Now()

	if _, err := s.AccountSummary(context.Background(), "", now.Add(-time.Hour), now); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("got %v", err)
	}
	if _, err := s.AccountSummary(context.Background(), "me", now, now); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("empty window: got %v", err)
	}
	if _, err := s.AccountSummary(context.Background(), "me", now, now.Add(-time.Hour)); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("inverted window: got %v", err)
	}
}
