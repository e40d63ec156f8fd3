package session

import (
	"errors"
	"testing"

	"callpay-platform/internal/account"
)

// passingInput builds an input that clears every admission check; each test
// breaks exactly one (or more, to pin the ordering).
func passingInput() admissionInput {
	return admissionInput{
		CallerID:   "caller-1",
		ReceiverID: "receiver-1",
		Media:      MediaAudio,
		Caller: account.Account{
			ID:          "caller-1",
			Status:      account.StatusActive,
			CoinBalance: 100,
		},
		CallerFound: true,
		Receiver: account.Account{
			ID:              "receiver-1",
			Status:          account.StatusActive,
			AudioRatePerMin: 10,
			VideoRatePerMin: 20,
			AudioEnabled:    true,
			VideoEnabled:    true,
		},
		ReceiverFound:  true,
		ReceiverOnline: true,
	}
}

func wantCode(t *testing.T, err error, code RejectCode) {
	t.Helper()
	ae, ok := AsAdmissionError(err)
	if !ok {
		t.Fatalf("expected admission error %s, got %v", code, err)
	}
	if ae.Code != code {
		t.Fatalf("code = %s, want %s", ae.Code, code)
	}
}

func TestCheckAdmissionPasses(t *testing.T) {
	if err := checkAdmission(passingInput()); err != nil {
		t.Fatalf("expected pass, got %v", err)
	}
}

func TestCheckAdmissionFailures(t *testing.T) {
	t.Run("caller missing", func(t *testing.T) {
		in := passingInput()
		in.CallerFound = false
		if err := checkAdmission(in); !errors.Is(err, ErrCallerNotFound) {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("caller deleted reads as not found", func(t *testing.T) {
		in := passingInput()
		in.Caller.Status = account.StatusDeleted
		if err := checkAdmission(in); !errors.Is(err, ErrCallerNotFound) {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("caller suspended", func(t *testing.T) {
		in := passingInput()
		in.Caller.Status = account.StatusSuspended
		wantCode(t, checkAdmission(in), RejectCallingSuspended)
	})

	t.Run("caller already in a call", func(t *testing.T) {
		in := passingInput()
		in.Caller.Busy = true
		wantCode(t, checkAdmission(in), RejectCallerBusy)
	})

	t.Run("receiver missing", func(t *testing.T) {
		in := passingInput()
		in.ReceiverFound = false
		if err := checkAdmission(in); !errors.Is(err, ErrReceiverNotFound) {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("receiver deleted is vague unavailable", func(t *testing.T) {
		in := passingInput()
		in.Receiver.Status = account.StatusDeleted
		wantCode(t, checkAdmission(in), RejectUserUnavailable)
	})

	t.Run("self call", func(t *testing.T) {
		in := passingInput()
		in.ReceiverID = in.CallerID
		wantCode(t, checkAdmission(in), RejectSelfCall)
	})

	t.Run("blocked is vague unavailable", func(t *testing.T) {
		in := passingInput()
		in.Blocked = true
		wantCode(t, checkAdmission(in), RejectUserUnavailable)
	})

	t.Run("receiver offline", func(t *testing.T) {
		in := passingInput()
		in.ReceiverOnline = false
		wantCode(t, checkAdmission(in), RejectUserOffline)
	})

	t.Run("receiver busy", func(t *testing.T) {
		in := passingInput()
		in.Receiver.Busy = true
		wantCode(t, checkAdmission(in), RejectUserBusy)
	})

	t.Run("video disabled", func(t *testing.T) {
		in := passingInput()
		in.Media = MediaVideo
		in.Receiver.VideoEnabled = false
		wantCode(t, checkAdmission(in), RejectCallTypeDisabled)
	})

	t.Run("balance below first minute", func(t *testing.T) {
		in := passingInput()
		in.Caller.CoinBalance = 5
		in.Receiver.AudioRatePerMin = 10
		wantCode(t, checkAdmission(in), RejectInsufficientBalance)
	})

	t.Run("balance exactly one minute passes", func(t *testing.T) {
		in := passingInput()
		in.Caller.CoinBalance = 10
		in.Receiver.AudioRatePerMin = 10
		if err := checkAdmission(in); err != nil {
			t.Fatalf("got %v", err)
		}
	})
}

// The pipeline is ordered most-specific-first; clients depend on which
// failure wins when several apply.
func TestCheckAdmissionOrdering(t *testing.T) {
	t.Run("suspended caller beats offline receiver", func(t *testing.T) {
		in := passingInput()
		in.Caller.Status = account.StatusSuspended
		in.ReceiverOnline = false
		wantCode(t, checkAdmission(in), RejectCallingSuspended)
	})

	t.Run("busy caller beats busy receiver", func(t *testing.T) {
		in := passingInput()
		in.Caller.Busy = true
		in.Receiver.Busy = true
		wantCode(t, checkAdmission(in), RejectCallerBusy)
	})

	t.Run("busy caller beats offline receiver", func(t *testing.T) {
		in := passingInput()
		in.Caller.Busy = true
		in.ReceiverOnline = false
		wantCode(t, checkAdmission(in), RejectCallerBusy)
	})

	t.Run("offline beats busy", func(t *testing.T) {
		in := passingInput()
		in.ReceiverOnline = false
		in.Receiver.Busy = true
		wantCode(t, checkAdmission(in), RejectUserOffline)
	})

	t.Run("busy beats insufficient balance", func(t *testing.T) {
		in := passingInput()
		in.Receiver.Busy = true
		in.Caller.CoinBalance = 0
		wantCode(t, checkAdmission(in), RejectUserBusy)
	})

	t.Run("block beats offline", func(t *testing.T) {
		in := passingInput()
		in.Blocked = true
		in.ReceiverOnline = false
		wantCode(t, checkAdmission(in), RejectUserUnavailable)
	})
}

func TestRateFor(t *testing.T) {
	a := account.Account{AudioRatePerMin: 10, VideoRatePerMin: 25}
	if got := RateFor(a, MediaAudio); got != 10 {
		t.Fatalf("audio rate = %d, want 10", got)
	}
	if got := RateFor(a, MediaVideo); got != 25 {
		t.Fatalf("video rate = %d, want 25", got)
	}
}
