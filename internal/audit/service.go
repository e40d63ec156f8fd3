package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to end users.
// - Callers should treat audit logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogForcedTermination records a reaper intervention on a stale session.
func (s *Service) LogForcedTermination(ctx context.Context, sessionID, reason string, coinsCharged int64) error {
	return s.Append(ctx, Event{
		Type:        EventTypeForcedTermination,
		SessionID:   sessionID,
		AmountCoins: coinsCharged,
		Message:     reason,
	})
}

// LogAdminAction records a privileged manual action (force-end, manual
// credit) together with who performed it.
func (s *Service) LogAdminAction(ctx context.Context, actorUserID, actorRole, message, sessionID, accountID string, amountCoins int64) error {
	return s.Append(ctx, Event{
		Type:        EventTypeAdminAction,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		SessionID:   sessionID,
		AccountID:   accountID,
		AmountCoins: amountCoins,
		Message:     message,
	})
}
