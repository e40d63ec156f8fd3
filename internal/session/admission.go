package session

import "callpay-platform/internal/account"

// Admission is a fixed-order pipeline: callers rely on getting the MOST
// SPECIFIC failure, so the ordering below is a tested contract, not an
// implementation detail. The pipeline itself is pure; the initiation
// transaction loads both account rows under FOR UPDATE before running it,
// which is what makes the busy check race-free.

type admissionInput struct {
	CallerID   string
	ReceiverID string
	Media      MediaType

	Caller      account.Account
	CallerFound bool

	Receiver      account.Account
	ReceiverFound bool

	// Blocked is the bidirectional privacy check result.
	Blocked bool

	// ReceiverOnline is read from the presence tracker just before the
	// transaction opens; busy is the authoritative double-booking guard.
	ReceiverOnline bool
}

func checkAdmission(in admissionInput) error {
	// 1. Caller identity resolvable and not soft-deleted.
	if !in.CallerFound || in.Caller.Status == account.StatusDeleted {
		return ErrCallerNotFound
	}
	// 2. Caller allowed to place calls at all.
	if in.Caller.Status == account.StatusSuspended {
		return admissionErr(RejectCallingSuspended, "calling is disabled for this account")
	}
	// 3. Caller not already in a call. Without this a second initiation
	// would re-mark the caller busy, and whichever session terminates
	// first would free the caller while the other is still live.
	if in.Caller.Busy {
		return admissionErr(RejectCallerBusy, "you are already in a call")
	}
	// 4. Receiver identity resolvable and not soft-deleted. A deleted
	// receiver reads as generic unavailability; deletion is not leaked.
	if !in.ReceiverFound {
		return ErrReceiverNotFound
	}
	if in.Receiver.Status == account.StatusDeleted {
		return admissionErr(RejectUserUnavailable, "user is unavailable")
	}
	// 5. No self-calling.
	if in.CallerID == in.ReceiverID {
		return admissionErr(RejectSelfCall, "cannot call yourself")
	}
	// 6. Block check, surfaced as generic unavailability so block state is
	// not leaked to either side.
	if in.Blocked {
		return admissionErr(RejectUserUnavailable, "user is unavailable")
	}
	// 7. Receiver online.
	if !in.ReceiverOnline {
		return admissionErr(RejectUserOffline, "user is offline")
	}
	// 8. Receiver not already in a call.
	if in.Receiver.Busy {
		return admissionErr(RejectUserBusy, "user is busy")
	}
	// 9. Receiver accepts this media type.
	if !mediaEnabled(in.Receiver, in.Media) {
		return admissionErr(RejectCallTypeDisabled, "user does not accept this call type")
	}
	// 10. Caller can afford at least the first minute.
	if in.Caller.CoinBalance < RateFor(in.Receiver, in.Media) {
		return admissionErr(RejectInsufficientBalance, "insufficient balance for this call")
	}
	return nil
}

// RateFor returns the receiver's per-minute rate for a media type.
func RateFor(a account.Account, m MediaType) int64 {
	if m == MediaVideo {
		return a.VideoRatePerMin
	}
	return a.AudioRatePerMin
}

func mediaEnabled(a account.Account, m MediaType) bool {
	if m == MediaVideo {
		return a.VideoEnabled
	}
	return a.AudioEnabled
}
