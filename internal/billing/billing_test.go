package billing

import (
	"testing"
	"time"
)

func TestBillableMinutes(t *testing.T) {
	cases := []struct {
		seconds int
		want    int
	}{
		{0, 0},
		{-5, 0},
		{1, 1},
		{59, 1},
		{60, 1},
		{61, 2},
		{119, 2},
		{120, 2},
		{125, 3},
		{3600, 60},
	}
	for _, tc := range cases {
		if got := BillableMinutes(tc.seconds); got != tc.want {
			t.Errorf("BillableMinutes(%d) = %d, want %d", tc.seconds, got, tc.want)
		}
	}
}

func TestQuoteFor(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("receiver never joined quotes zero", func(t *testing.T) {
		q := QuoteFor(nil, base.Add(time.Minute), 10)
		if q.CoinsCharged != 0 || q.ChargeableSeconds != 0 || q.BillableMinutes != 0 {
			t.Fatalf("expected zero quote, got %+v", q)
		}
		if q.RatePerMinute != 10 {
			t.Fatalf("rate should still be recorded, got %d", q.RatePerMinute)
		}
	})

	t.Run("125 seconds bills three minutes", func(t *testing.T) {
		joined := base
		q := QuoteFor(&joined, base.Add(125*time.Second), 10)
		if q.ChargeableSeconds != 125 {
			t.Fatalf("chargeable seconds = %d, want 125", q.ChargeableSeconds)
		}
		if q.BillableMinutes != 3 {
			t.Fatalf("billable minutes = %d, want 3", q.BillableMinutes)
		}
		if q.CoinsCharged != 30 {
			t.Fatalf("coins charged = %d, want 30", q.CoinsCharged)
		}
	})

	t.Run("negative window is clamped to zero", func(t *testing.T) {
		joined := base.Add(time.Hour)
		q := QuoteFor(&joined, base, 10)
		if q.ChargeableSeconds != 0 || q.CoinsCharged != 0 {
			t.Fatalf("expected zero quote for negative window, got %+v", q)
		}
	})

	t.Run("exact minute boundary", func(t *testing.T) {
		joined := base
		q := QuoteFor(&joined, base.Add(2*time.Minute), 7)
		if q.BillableMinutes != 2 || q.CoinsCharged != 14 {
			t.Fatalf("got %+v, want 2 minutes / 14 coins", q)
		}
	})
}

func TestClampCharge(t *testing.T) {
	cases := []struct {
		name    string
		charge  int64
		balance int64
		want    int64
	}{
		{"fully covered", 30, 100, 30},
		{"exactly covered", 30, 30, 30},
		{"clamped to balance", 30, 12, 12},
		{"zero balance", 30, 0, 0},
		{"negative balance", 30, -5, 0},
		{"zero charge", 0, 100, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClampCharge(tc.charge, tc.balance); got != tc.want {
				t.Fatalf("ClampCharge(%d, %d) = %d, want %d", tc.charge, tc.balance, got, tc.want)
			}
		})
	}
}
