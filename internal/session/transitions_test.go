package session

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	allowed := map[Status]map[Action]bool{
		StatusRinging:   {ActionAccept: true, ActionReject: true, ActionCancel: true, ActionEnd: true},
		StatusOngoing:   {ActionCancel: true, ActionEnd: true},
		StatusEnded:     {ActionRate: true},
		StatusRejected:  {},
		StatusCancelled: {},
	}

	actions := []Action{ActionAccept, ActionReject, ActionCancel, ActionEnd, ActionRate}
	for st, ok := range allowed {
		for _, a := range actions {
			err := canTransition(st, a)
			if ok[a] && err != nil {
				t.Errorf("%s from %s: unexpected %v", a, st, err)
			}
			if !ok[a] && !errors.Is(err, ErrConflict) {
				t.Errorf("%s from %s: expected conflict, got %v", a, st, err)
			}
		}
	}
}

func TestAuthorizeActor(t *testing.T) {
	s := Session{CallerID: "caller-1", ReceiverID: "receiver-1"}

	cases := []struct {
		action Action
		actor  string
		ok     bool
	}{
		{ActionAccept, "receiver-1", true},
		{ActionAccept, "caller-1", false},
		{ActionReject, "receiver-1", true},
		{ActionReject, "caller-1", false},
		{ActionCancel, "caller-1", true},
		{ActionCancel, "receiver-1", false},
		{ActionRate, "caller-1", true},
		{ActionRate, "receiver-1", false},
		{ActionEnd, "caller-1", true},
		{ActionEnd, "receiver-1", true},
		{ActionEnd, "stranger", false},
	}
	for _, tc := range cases {
		err := authorizeActor(s, tc.action, tc.actor)
		if tc.ok && err != nil {
			t.Errorf("%s by %s: unexpected %v", tc.action, tc.actor, err)
		}
		if !tc.ok && !errors.Is(err, ErrUnauthorizedActor) {
			t.Errorf("%s by %s: expected unauthorized, got %v", tc.action, tc.actor, err)
		}
	}
}

// A second End against an ENDED session replays the stored result; every
// other terminal state stays a conflict through canTransition.
func TestEndIsReplay(t *testing.T) {
	if !endIsReplay(StatusEnded) {
		t.Fatal("End against ENDED must replay the stored result")
	}
	for _, st := range []Status{StatusRinging, StatusOngoing, StatusRejected, StatusCancelled} {
		if endIsReplay(st) {
			t.Errorf("End against %s must not replay", st)
		}
	}
	for _, st := range []Status{StatusRejected, StatusCancelled} {
		if !errors.Is(canTransition(st, ActionEnd), ErrConflict) {
			t.Errorf("End against %s must conflict", st)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	for _, st := range []Status{StatusEnded, StatusRejected, StatusCancelled} {
		if !st.IsTerminal() {
			t.Errorf("%s should be terminal", st)
		}
	}
	for _, st := range []Status{StatusRinging, StatusOngoing} {
		if st.IsTerminal() {
			t.Errorf("%s should not be terminal", st)
		}
	}
}
