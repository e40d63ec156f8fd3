package reaper

import (
	"testing"
	"time"

	"callpay-platform/internal/session"
)

func TestReasonFor(t *testing.T) {
	if got := ReasonFor(session.StatusRinging); got != session.EndReasonRingTimeout {
		t.Fatalf("ringing reason = %s", got)
	}
	if got := ReasonFor(session.StatusOngoing); got != session.EndReasonStaleForceEnd {
		t.Fatalf("ongoing reason = %s", got)
	}
}

func TestIsStale(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ringTimeout := 50 * time.Second
	maxOngoing := 6 * time.Hour

	joinedRecent := now.Add(-time.Hour)
	joinedAncient := now.Add(-7 * time.Hour)

	cases := []struct {
		name string
		s    session.Session
		want bool
	}{
		{
			"fresh ringing",
			session.Session{Status: session.StatusRinging, CreatedAt: now.Add(-10 * time.Second)},
			false,
		},
		{
			"ringing past timeout",
			session.Session{Status: session.StatusRinging, CreatedAt: now.Add(-2 * time.Minute)},
			true,
		},
		{
			"ongoing within ceiling",
			session.Session{Status: session.StatusOngoing, ReceiverJoinedAt: &joinedRecent},
			false,
		},
		{
			"ongoing past ceiling",
			session.Session{Status: session.StatusOngoing, ReceiverJoinedAt: &joinedAncient},
			true,
		},
		{
			"ongoing without join is never swept",
			session.Session{Status: session.StatusOngoing, CreatedAt: now.Add(-24 * time.Hour)},
			false,
		},
		{
			"terminal is never stale",
			session.Session{Status: session.StatusEnded, CreatedAt: now.Add(-24 * time.Hour)},
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsStale(tc.s, now, ringTimeout, maxOngoing); got != tc.want {
				t.Fatalf("IsStale = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	r := New(nil, nil, nil, 0, 0, 0)
	if r.interval <= 0 || r.ringTimeout <= 0 || r.maxOngoing <= 0 || r.batchSize <= 0 {
		t.Fatalf("defaults not applied: %+v", r)
	}
}
