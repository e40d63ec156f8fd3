package ledger

import (
	"context"
	"errors"
	"testing"
)

// Input validation runs before any query, so a nil DB is safe here.
func TestGetBalanceValidation(t *testing.T) {
	s := NewService(nil)
	if _, err := s.GetBalance(context.Background(), ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestListEntriesValidation(t *testing.T) {
	s := NewService(nil)
	if _, err := s.ListEntries(context.Background(), "", 10); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestAdminManualCreditValidation(t *testing.T) {
	s := NewService(nil)
	ctx := context.Background()

	cases := []struct {
		name      string
		accountID string
		req       AdminCreditRequest
	}{
		{"missing account", "", AdminCreditRequest{AmountCoins: 10, Reason: "r", IdempotencyKey: "k"}},
		{"missing idempotency key", "acc-1", AdminCreditRequest{AmountCoins: 10, Reason: "r"}},
		{"missing reason", "acc-1", AdminCreditRequest{AmountCoins: 10, IdempotencyKey: "k"}},
		{"zero amount", "acc-1", AdminCreditRequest{AmountCoins: 0, Reason: "r", IdempotencyKey: "k"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := s.AdminManualCredit(ctx, tc.accountID, tc.req)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("got %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestIdempotencyKeys(t *testing.T) {
	if got := ChargeKey("sess-1"); got != "call_charge:sess-1" {
		t.Fatalf("charge key = %s", got)
	}
	if got := EarningKey("sess-1"); got != "call_earning:sess-1" {
		t.Fatalf("earning key = %s", got)
	}
	if ChargeKey("sess-1") == EarningKey("sess-1") {
		t.Fatal("charge and earning keys must differ")
	}
}
