package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"callpay-platform/internal/account"
	"callpay-platform/internal/billing"
	"callpay-platform/internal/rtctoken"
	"callpay-platform/pkg/logger"
	"callpay-platform/pkg/utils"

	"github.com/google/uuid"
)

// PresenceReader is the slice of the presence tracker admission needs.
type PresenceReader interface {
	IsOnline(ctx context.Context, accountID string) (bool, error)
}

// Service owns the authoritative call lifecycle.
//
// Concurrency model:
// - Admission and every transition touching busy/balance run as a single
//   transaction, with account rows locked in ascending-id order and the
//   session row locked FOR UPDATE. Concurrent initiations against the same
//   receiver serialize on the receiver's row; at most one passes the busy
//   check.
// - No lock is ever held across an external call. Accept validates, issues
//   the credential unlocked, then wins or loses a RINGING->ONGOING CAS.
// - Billing is posted in the same transaction that marks the session ENDED,
//   which makes it at-most-once: if billing fails the whole transition
//   rolls back and busy stays held (fail-closed).
type Service struct {
	db       *sql.DB
	presence PresenceReader
	issuer   rtctoken.Issuer
	engine   *billing.Engine

	issueTimeout time.Duration

	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(db *sql.DB, presence PresenceReader, issuer rtctoken.Issuer, engine *billing.Engine, issueTimeout time.Duration) *Service {
	if issueTimeout <= 0 {
		issueTimeout = 3 * time.Second
	}
	return &Service{
		db:           db,
		presence:     presence,
		issuer:       issuer,
		engine:       engine,
		issueTimeout: issueTimeout,
		clock:        time.Now,
	}
}

/* ===================== INITIATE ===================== */

// Initiate runs the admission pipeline and, on success, atomically marks
// both parties busy and creates the session in RINGING. Failure leaves no
// state behind.
func (s *Service) Initiate(ctx context.Context, callerID, receiverID string, media MediaType) (Session, error) {
	if callerID == "" {
		return Session{}, fmt.Errorf("%w: caller id required", ErrInvalidArgument)
	}
	if receiverID == "" {
		return Session{}, fmt.Errorf("%w: receiver id required", ErrInvalidArgument)
	}
	if !ValidMediaType(media) {
		return Session{}, fmt.Errorf("%w: media type must be audio or video", ErrInvalidArgument)
	}

	// The online flag lives in Redis and cannot join the Postgres
	// transaction; it is read here, just before the atomic unit. Busy is
	// the authoritative double-booking guard and stays inside.
	online, err := s.presence.IsOnline(ctx, receiverID)
	if err != nil {
		return Session{}, fmt.Errorf("presence check failed: %w", err)
	}

	now := s.clock().UTC()
	sess := Session{
		ID:         uuid.NewString(),
		CallerID:   callerID,
		ReceiverID: receiverID,
		MediaType:  media,
		Status:     StatusRinging,
		ChannelID:  uuid.NewString(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		caller, callerFound, receiver, receiverFound, err := account.LockPair(ctx, tx, callerID, receiverID)
		if err != nil {
			return err
		}

		blocked := false
		if callerFound && receiverFound && callerID != receiverID {
			blocked, err = account.Blocked(ctx, tx, callerID, receiverID)
			if err != nil {
				return err
			}
		}

		if err := checkAdmission(admissionInput{
			CallerID:       callerID,
			ReceiverID:     receiverID,
			Media:          media,
			Caller:         caller,
			CallerFound:    callerFound,
			Receiver:       receiver,
			ReceiverFound:  receiverFound,
			Blocked:        blocked,
			ReceiverOnline: online,
		}); err != nil {
			return err
		}

		if err := account.SetBusyPair(ctx, tx, callerID, receiverID, true, now); err != nil {
			return err
		}

		sess.RatePerMin = RateFor(receiver, media)
		return insertSession(ctx, tx, sess)
	})
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

/* ===================== ACCEPT ===================== */

// Accept moves RINGING -> ONGOING and returns the join credential.
//
// The credential is issued between two status checks so no database lock
// spans the issuer call: validate, issue with a bounded timeout, then CAS.
// An issuer failure leaves the session RINGING and is retryable; a lost CAS
// is a conflict.
func (s *Service) Accept(ctx context.Context, actorID, sessionID string) (Session, rtctoken.Credential, error) {
	if actorID == "" || sessionID == "" {
		return Session{}, rtctoken.Credential{}, ErrInvalidArgument
	}

	sess, err := getSession(ctx, s.db, sessionID)
	if err != nil {
		return Session{}, rtctoken.Credential{}, err
	}
	if err := authorizeActor(sess, ActionAccept, actorID); err != nil {
		return Session{}, rtctoken.Credential{}, err
	}
	if err := canTransition(sess.Status, ActionAccept); err != nil {
		return Session{}, rtctoken.Credential{}, err
	}

	issueCtx, cancel := context.WithTimeout(ctx, s.issueTimeout)
	defer cancel()
	cred, err := s.issuer.Issue(issueCtx, sess.ChannelID)
	if err != nil {
		return Session{}, rtctoken.Credential{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	now := s.clock().UTC()
	err = utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		won, err := acceptSession(ctx, tx, sessionID, now)
		if err != nil {
			return err
		}
		if !won {
			return ErrConflict
		}
		return nil
	})
	if err != nil {
		return Session{}, rtctoken.Credential{}, err
	}

	sess.Status = StatusOngoing
	sess.StartedAt = &now
	sess.ReceiverJoinedAt = &now
	sess.UpdatedAt = now
	return sess, cred, nil
}

/* ===================== REJECT / CANCEL ===================== */

// Reject moves RINGING -> REJECTED: busy released on both, no billing.
func (s *Service) Reject(ctx context.Context, actorID, sessionID string) (Session, error) {
	return s.terminateUnbilled(ctx, actorID, sessionID, ActionReject, StatusRejected, EndReasonRejected, EndedByReceiver)
}

// Cancel is the caller-initiated abort before the receiver joins:
// RINGING (or, defensively, ONGOING without a receiver join) -> CANCELLED.
// Once the receiver has joined, aborting goes through End and is billed.
func (s *Service) Cancel(ctx context.Context, actorID, sessionID string) (Session, error) {
	return s.terminateUnbilled(ctx, actorID, sessionID, ActionCancel, StatusCancelled, EndReasonCancelled, EndedByCaller)
}

func (s *Service) terminateUnbilled(ctx context.Context, actorID, sessionID string, action Action, to Status, reason EndReason, endedBy string) (Session, error) {
	if actorID == "" || sessionID == "" {
		return Session{}, ErrInvalidArgument
	}

	var out Session
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		sess, err := lockSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if err := authorizeActor(sess, action, actorID); err != nil {
			return err
		}
		if err := canTransition(sess.Status, action); err != nil {
			return err
		}
		if action == ActionCancel && sess.Status == StatusOngoing && sess.ReceiverJoinedAt != nil {
			// The conversation started; a cancel would dodge billing.
			return ErrConflict
		}

		now := s.clock().UTC()
		if _, _, _, _, err := account.LockPair(ctx, tx, sess.CallerID, sess.ReceiverID); err != nil {
			return err
		}
		if err := account.SetBusyPair(ctx, tx, sess.CallerID, sess.ReceiverID, false, now); err != nil {
			return err
		}

		sess.Status = to
		sess.EndedAt = &now
		sess.EndReason = reason
		sess.EndedBy = endedBy
		sess.UpdatedAt = now
		if err := finalizeSession(ctx, tx, sess); err != nil {
			return err
		}
		out = sess
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	return out, nil
}

/* ===================== END ===================== */

// End terminates a call and bills it.
//
// Idempotency: End on an already-ENDED session returns the stored result
// without touching balances. End on REJECTED/CANCELLED is a conflict.
//
// reportedDuration is what the client measured; it is persisted for anomaly
// detection but the authoritative duration is always server-computed.
func (s *Service) End(ctx context.Context, actorID, sessionID string, reportedDuration *int) (Session, error) {
	if actorID == "" || sessionID == "" {
		return Session{}, ErrInvalidArgument
	}

	var out Session
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		sess, err := lockSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if err := authorizeActor(sess, ActionEnd, actorID); err != nil {
			return err
		}
		if endIsReplay(sess.Status) {
			// Replayed End: hand back the original result, bill nothing.
			out = sess
			return nil
		}
		if err := canTransition(sess.Status, ActionEnd); err != nil {
			return err
		}

		endedBy := EndedByCaller
		if actorID == sess.ReceiverID {
			endedBy = EndedByReceiver
		}
		out, err = s.billAndFinalize(ctx, tx, sess, EndReasonHangup, endedBy, reportedDuration)
		return err
	})
	if err != nil {
		return Session{}, err
	}
	return out, nil
}

// ForceTerminate pushes a stale or administratively killed session through
// the same transitions a client would have triggered, with identical
// billing and busy-release guarantees. RINGING sessions are cancelled and
// never billed; ONGOING sessions are ended and billed from the receiver
// join to the forced end time. Terminal sessions are returned unchanged.
func (s *Service) ForceTerminate(ctx context.Context, sessionID string, reason EndReason, endedBy string) (Session, error) {
	if sessionID == "" {
		return Session{}, ErrInvalidArgument
	}
	if endedBy == "" {
		endedBy = EndedByReaper
	}

	var out Session
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		sess, err := lockSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if sess.Status.IsTerminal() {
			// Lost the race against a client transition; nothing to do.
			out = sess
			return nil
		}

		now := s.clock().UTC()
		if sess.Status == StatusRinging {
			// Never answered, never billed.
			if _, _, _, _, err := account.LockPair(ctx, tx, sess.CallerID, sess.ReceiverID); err != nil {
				return err
			}
			if err := account.SetBusyPair(ctx, tx, sess.CallerID, sess.ReceiverID, false, now); err != nil {
				return err
			}
			sess.Status = StatusCancelled
			sess.EndedAt = &now
			sess.EndReason = reason
			sess.EndedBy = endedBy
			sess.UpdatedAt = now
			if err := finalizeSession(ctx, tx, sess); err != nil {
				return err
			}
			out = sess
			return nil
		}

		out, err = s.billAndFinalize(ctx, tx, sess, reason, endedBy, nil)
		return err
	})
	if err != nil {
		return Session{}, err
	}
	return out, nil
}

// billAndFinalize performs the billed half of an End inside the caller's
// transaction. Ordering inside the atomic unit: post billing, release busy,
// mark ENDED. A failure at any step rolls back all of it, so a charge can
// never land while the parties still look free, and vice versa.
func (s *Service) billAndFinalize(ctx context.Context, tx *sql.Tx, sess Session, reason EndReason, endedBy string, reportedDuration *int) (Session, error) {
	now := s.clock().UTC()

	caller, _, _, _, err := account.LockPair(ctx, tx, sess.CallerID, sess.ReceiverID)
	if err != nil {
		return Session{}, err
	}

	quote := billing.QuoteFor(sess.ReceiverJoinedAt, now, sess.RatePerMin)
	res, err := s.engine.Post(ctx, tx, sess.ID, sess.CallerID, sess.ReceiverID, quote, caller.CoinBalance, now)
	if err != nil {
		return Session{}, err
	}

	if err := account.SetBusyPair(ctx, tx, sess.CallerID, sess.ReceiverID, false, now); err != nil {
		return Session{}, err
	}

	sess.Status = StatusEnded
	sess.EndedAt = &now
	sess.DurationSeconds = quote.ChargeableSeconds
	sess.CoinsCharged = res.CoinsCharged
	sess.CoinsCredited = res.CoinsCredited
	sess.ReportedDurationSeconds = reportedDuration
	sess.EndReason = reason
	sess.EndedBy = endedBy
	sess.UpdatedAt = now
	if err := finalizeSession(ctx, tx, sess); err != nil {
		return Session{}, err
	}

	if reportedDuration != nil {
		drift := *reportedDuration - quote.ChargeableSeconds
		if drift < -60 || drift > 60 {
			logger.From(ctx).Warn("client duration drift",
				"session_id", sess.ID,
				"reported_seconds", *reportedDuration,
				"computed_seconds", quote.ChargeableSeconds,
			)
		}
	}

	return sess, nil
}

/* ===================== RATE / READ ===================== */

// Rate records the caller's one-shot 1-5 rating of an ended call.
func (s *Service) Rate(ctx context.Context, actorID, sessionID string, rating int, feedback string) (Session, error) {
	if actorID == "" || sessionID == "" {
		return Session{}, ErrInvalidArgument
	}
	if rating < 1 || rating > 5 {
		return Session{}, fmt.Errorf("%w: rating must be 1-5", ErrInvalidArgument)
	}

	var out Session
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		sess, err := lockSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if err := authorizeActor(sess, ActionRate, actorID); err != nil {
			return err
		}
		if err := canTransition(sess.Status, ActionRate); err != nil {
			return err
		}
		if sess.Rating != nil {
			return ErrConflict
		}

		now := s.clock().UTC()
		ok, err := setRating(ctx, tx, sessionID, rating, feedback, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConflict
		}
		sess.Rating = &rating
		sess.Feedback = feedback
		sess.UpdatedAt = now
		out = sess
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	return out, nil
}

// Get returns a session visible to one of its parties.
func (s *Service) Get(ctx context.Context, actorID, sessionID string) (Session, error) {
	if actorID == "" || sessionID == "" {
		return Session{}, ErrInvalidArgument
	}
	sess, err := getSession(ctx, s.db, sessionID)
	if err != nil {
		return Session{}, err
	}
	if actorID != sess.CallerID && actorID != sess.ReceiverID {
		return Session{}, ErrUnauthorizedActor
	}
	return sess, nil
}

// ListStale returns candidates for the reaper sweep.
func (s *Service) ListStale(ctx context.Context, ringTimeout, maxOngoing time.Duration, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 100
	}
	now := s.clock().UTC()
	return listStale(ctx, s.db, now.Add(-ringTimeout), now.Add(-maxOngoing), limit)
}

// IsNotFound helps callers fold repository sentinel checks.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
