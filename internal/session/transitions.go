package session

// Action is a state-machine transition request.
type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
	ActionCancel Action = "cancel"
	ActionEnd    Action = "end"
	ActionRate   Action = "rate"
)

// canTransition reports whether an action is legal from a status.
// End on an already-ENDED session is handled one level up (idempotent
// replay of the original result); here it is a conflict like any other
// repeat.
//
// Cancel from ONGOING is legal only while the receiver has not joined;
// that extra condition depends on session fields, so the service applies
// it after this structural check.
func canTransition(st Status, a Action) error {
	switch a {
	case ActionAccept, ActionReject:
		if st == StatusRinging {
			return nil
		}
	case ActionCancel:
		if st == StatusRinging || st == StatusOngoing {
			return nil
		}
	case ActionEnd:
		if st == StatusRinging || st == StatusOngoing {
			return nil
		}
	case ActionRate:
		if st == StatusEnded {
			return nil
		}
	}
	return ErrConflict
}

// endIsReplay reports whether an End request against this status returns
// the stored terminal result instead of transitioning. Only ENDED replays:
// REJECTED and CANCELLED were never billed and describe a different
// terminal outcome, so a repeated End against them is a conflict.
func endIsReplay(st Status) bool { return st == StatusEnded }

// authorizeActor enforces which party may request which transition.
func authorizeActor(s Session, a Action, actorID string) error {
	switch a {
	case ActionAccept, ActionReject:
		if actorID == s.ReceiverID {
			return nil
		}
	case ActionCancel, ActionRate:
		if actorID == s.CallerID {
			return nil
		}
	case ActionEnd:
		if actorID == s.CallerID || actorID == s.ReceiverID {
			return nil
		}
	}
	return ErrUnauthorizedActor
}
