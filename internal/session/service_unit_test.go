package session

import (
	"context"
	"errors"
	"testing"
)

// Validation must reject bad input before any store or tracker is touched,
// so these run against a service with nil dependencies.
func newBareService() *Service {
	return NewService(nil, nil, nil, nil, 0)
}

func TestInitiateValidation(t *testing.T) {
	s := newBareService()
	ctx := context.Background()

	cases := []struct {
		name       string
		callerID   string
		receiverID string
		media      MediaType
	}{
		{"missing caller", "", "receiver-1", MediaAudio},
		{"missing receiver", "caller-1", "", MediaAudio},
		{"empty media", "caller-1", "receiver-1", ""},
		{"unknown media", "caller-1", "receiver-1", "voice"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Initiate(ctx, tc.callerID, tc.receiverID, tc.media)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("got %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestTransitionInputValidation(t *testing.T) {
	s := newBareService()
	ctx := context.Background()

	if _, _, err := s.Accept(ctx, "", "sess-1"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Accept without actor: got %v", err)
	}
	if _, _, err := s.Accept(ctx, "user-1", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Accept without session: got %v", err)
	}
	if _, err := s.Reject(ctx, "", "sess-1"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Reject without actor: got %v", err)
	}
	if _, err := s.Cancel(ctx, "user-1", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Cancel without session: got %v", err)
	}
	if _, err := s.End(ctx, "", "sess-1", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("End without actor: got %v", err)
	}
	if _, err := s.Get(ctx, "user-1", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Get without session: got %v", err)
	}
	if _, err := s.ForceTerminate(ctx, "", EndReasonStaleForceEnd, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("ForceTerminate without session: got %v", err)
	}
}

func TestRateValidation(t *testing.T) {
	s := newBareService()
	ctx := context.Background()

	for _, rating := range []int{-1, 0, 6, 100} {
		if _, err := s.Rate(ctx, "caller-1", "sess-1", rating, ""); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("rating %d: got %v, want ErrInvalidArgument", rating, err)
		}
	}
}
