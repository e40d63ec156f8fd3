package session

import "errors"

// RejectCode is the machine-readable admission rejection code. Codes are a
// client contract; keep them stable.
type RejectCode string

const (
	RejectSelfCall            RejectCode = "SELF_CALL"
	RejectCallingSuspended    RejectCode = "CALLING_SUSPENDED"
	RejectCallerBusy          RejectCode = "CALLER_BUSY"
	RejectUserUnavailable     RejectCode = "USER_UNAVAILABLE"
	RejectUserOffline         RejectCode = "USER_OFFLINE"
	RejectUserBusy            RejectCode = "USER_BUSY"
	RejectCallTypeDisabled    RejectCode = "CALL_TYPE_DISABLED"
	RejectInsufficientBalance RejectCode = "INSUFFICIENT_BALANCE"
)

// AdmissionError is a typed initiation rejection. Message is deliberately
// vague for privacy-sensitive causes: a blocked caller sees the same
// "unavailable" text as one calling a deleted account.
type AdmissionError struct {
	Code    RejectCode
	Message string
}

func (e *AdmissionError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func admissionErr(code RejectCode, msg string) *AdmissionError {
	return &AdmissionError{Code: code, Message: msg}
}

// AsAdmissionError unwraps err into an AdmissionError, if it is one.
func AsAdmissionError(err error) (*AdmissionError, bool) {
	var ae *AdmissionError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

var (
	// ErrNotFound: the session id does not resolve.
	ErrNotFound = errors.New("call session not found")
	// ErrCallerNotFound / ErrReceiverNotFound: malformed initiation input.
	ErrCallerNotFound   = errors.New("caller not found")
	ErrReceiverNotFound = errors.New("receiver not found")
	// ErrInvalidArgument: malformed input (bad media type, bad rating, ...).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict: the transition is illegal from the session's current
	// state, or another transition already won. Safe to resolve by
	// re-fetching the session.
	ErrConflict = errors.New("conflicting call transition")
	// ErrUnauthorizedActor: the actor is not the party this transition
	// belongs to.
	ErrUnauthorizedActor = errors.New("actor not authorized for this call")
	// ErrBackendUnavailable: the credential issuer did not answer in time.
	// The session stays RINGING; Accept may be retried.
	ErrBackendUnavailable = errors.New("credential issuer unavailable")
)
