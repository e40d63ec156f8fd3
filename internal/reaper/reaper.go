package reaper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"callpay-platform/internal/audit"
	"callpay-platform/internal/session"
)

// Reaper is the correctness backstop for abandoned sessions: crashed
// clients and lost events used to strand busy flags and call rows until an
// operator bulk-reset them. The reaper replaces that with periodic,
// invariant-preserving force-termination through the normal transitions.
type Reaper struct {
	sessions *session.Service
	audit    *audit.Service
	log      *slog.Logger

	interval    time.Duration
	ringTimeout time.Duration
	maxOngoing  time.Duration
	batchSize   int

	clock func() time.Time
}

func New(sessions *session.Service, auditSvc *audit.Service, log *slog.Logger, interval, ringTimeout, maxOngoing time.Duration) *Reaper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if ringTimeout <= 0 {
		ringTimeout = 50 * time.Second
	}
	if maxOngoing <= 0 {
		maxOngoing = 6 * time.Hour
	}
	return &Reaper{
		sessions:    sessions,
		audit:       auditSvc,
		log:         log,
		interval:    interval,
		ringTimeout: ringTimeout,
		maxOngoing:  maxOngoing,
		batchSize:   100,
		clock:       time.Now,
	}
}

// Run sweeps until ctx is cancelled. Meant to be launched as a goroutine
// from main; it never panics the process over a failed sweep.
func (r *Reaper) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	r.log.Info("reaper started",
		"interval", r.interval.String(),
		"ring_timeout", r.ringTimeout.String(),
		"max_ongoing", r.maxOngoing.String(),
	)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("reaper stopped")
			return
		case <-t.C:
			if n, err := r.Sweep(ctx); err != nil {
				r.log.Error("reaper sweep failed", "err", err)
			} else if n > 0 {
				r.log.Info("reaper sweep", "terminated", n)
			}
		}
	}
}

// Sweep force-terminates one batch of stale sessions and returns how many
// it terminated. Per-session failures are logged and skipped; the next
// sweep retries them.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	stale, err := r.sessions.ListStale(ctx, r.ringTimeout, r.maxOngoing, r.batchSize)
	if err != nil {
		return 0, err
	}

	terminated := 0
	for _, s := range stale {
		reason := ReasonFor(s.Status)
		out, err := r.sessions.ForceTerminate(ctx, s.ID, reason, session.EndedByReaper)
		if err != nil {
			// A conflict means a client transition won meanwhile; that is
			// the reaper losing a race it is happy to lose.
			if errors.Is(err, session.ErrConflict) {
				continue
			}
			r.log.Error("force terminate failed", "session_id", s.ID, "err", err)
			continue
		}
		if !out.Status.IsTerminal() {
			continue
		}
		terminated++

		if err := r.audit.LogForcedTermination(ctx, s.ID, string(reason), out.CoinsCharged); err != nil {
			// Audit is best-effort; the termination itself already committed.
			r.log.Warn("audit append failed", "session_id", s.ID, "err", err)
		}
	}
	return terminated, nil
}

// ReasonFor maps the stale session's state to the recorded end reason.
func ReasonFor(st session.Status) session.EndReason {
	if st == session.StatusRinging {
		return session.EndReasonRingTimeout
	}
	return session.EndReasonStaleForceEnd
}

// IsStale classifies a session against the reaper's cutoffs. The SQL sweep
// uses the same predicate; this form exists so the contract is unit-testable.
func IsStale(s session.Session, now time.Time, ringTimeout, maxOngoing time.Duration) bool {
	switch s.Status {
	case session.StatusRinging:
		return now.Sub(s.CreatedAt) > ringTimeout
	case session.StatusOngoing:
		if s.ReceiverJoinedAt == nil {
			return false
		}
		return now.Sub(*s.ReceiverJoinedAt) > maxOngoing
	default:
		return false
	}
}
