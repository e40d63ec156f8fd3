package rates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"callpay-platform/internal/account"
	"callpay-platform/pkg/utils"
)

// Service lets a receiver configure what their time costs.
//
// Rates are a property of the callee, not a platform constant; bounds exist
// so a typo cannot set a million-coin minute. Rate changes never affect
// in-flight calls: the session snapshots the rate at admission.
type Service struct {
	db    *sql.DB
	clock func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, clock: time.Now}
}

const (
	MinRatePerMin = 1
	MaxRatePerMin = 10000
)

var (
	ErrNotFound        = errors.New("account not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

type UpdateRequest struct {
	AudioRatePerMin int64 `json:"audio_rate_per_min"`
	VideoRatePerMin int64 `json:"video_rate_per_min"`
	AudioEnabled    bool  `json:"audio_enabled"`
	VideoEnabled    bool  `json:"video_enabled"`
}

type Settings struct {
	AccountID       string `json:"account_id"`
	AudioRatePerMin int64  `json:"audio_rate_per_min"`
	VideoRatePerMin int64  `json:"video_rate_per_min"`
	AudioEnabled    bool   `json:"audio_enabled"`
	VideoEnabled    bool   `json:"video_enabled"`
}

func validateRate(kind string, rate int64) error {
	if rate < MinRatePerMin || rate > MaxRatePerMin {
		return fmt.Errorf("%w: %s rate must be between %d and %d", ErrInvalidArgument, kind, MinRatePerMin, MaxRatePerMin)
	}
	return nil
}

func (s *Service) Update(ctx context.Context, accountID string, req UpdateRequest) (Settings, error) {
	if accountID == "" {
		return Settings{}, ErrInvalidArgument
	}
	if err := validateRate("audio", req.AudioRatePerMin); err != nil {
		return Settings{}, err
	}
	if err := validateRate("video", req.VideoRatePerMin); err != nil {
		return Settings{}, err
	}

	now := s.clock().UTC()
	var out Settings

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		a, err := account.LockForUpdate(ctx, tx, accountID)
		if err != nil {
			if errors.Is(err, account.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if a.Status != account.StatusActive {
			return ErrNotFound
		}
		if err := account.UpdateCallSettings(ctx, tx, accountID, req.AudioRatePerMin, req.VideoRatePerMin, req.AudioEnabled, req.VideoEnabled, now); err != nil {
			return err
		}
		out = Settings{
			AccountID:       accountID,
			AudioRatePerMin: req.AudioRatePerMin,
			VideoRatePerMin: req.VideoRatePerMin,
			AudioEnabled:    req.AudioEnabled,
			VideoEnabled:    req.VideoEnabled,
		}
		return nil
	})
	if err != nil {
		return Settings{}, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, accountID string) (Settings, error) {
	if accountID == "" {
		return Settings{}, ErrInvalidArgument
	}
	a, err := account.Get(ctx, s.db, accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return Settings{}, ErrNotFound
		}
		return Settings{}, err
	}
	return Settings{
		AccountID:       a.ID,
		AudioRatePerMin: a.AudioRatePerMin,
		VideoRatePerMin: a.VideoRatePerMin,
		AudioEnabled:    a.AudioEnabled,
		VideoEnabled:    a.VideoEnabled,
	}, nil
}
