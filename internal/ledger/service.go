package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"callpay-platform/internal/account"
	"callpay-platform/pkg/utils"

	"github.com/google/uuid"
)

// Service provides read access to the ledger plus the admin correction path.
//
// Money invariants:
// - No balance updates without a ledger entry
// - Ledger is append-only (immutable)
// - All money operations must be executed in a DB transaction
//
// Call billing does NOT go through this service; it is posted by the billing
// engine inside the End transaction so that charge, busy release and status
// change commit together.
type Service struct {
	db *sql.DB
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, clock: time.Now}
}

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

type Balance struct {
	AccountID   string    `json:"account_id"`
	CoinBalance int64     `json:"coin_balance"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AdminCreditRequest struct {
	AmountCoins    int64  `json:"amount_coins"`
	Reason         string `json:"reason"`
	IdempotencyKey string `json:"idempotency_key"`
	Metadata       string `json:"metadata,omitempty"`
}

func (s *Service) GetBalance(ctx context.Context, accountID string) (Balance, error) {
	if accountID == "" {
		return Balance{}, ErrInvalidArgument
	}
	a, err := account.Get(ctx, s.db, accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return Balance{}, ErrNotFound
		}
		return Balance{}, err
	}
	return Balance{AccountID: a.ID, CoinBalance: a.CoinBalance, UpdatedAt: a.UpdatedAt}, nil
}

func (s *Service) ListEntries(ctx context.Context, accountID string, limit int) ([]Entry, error) {
	if accountID == "" {
		return nil, ErrInvalidArgument
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return ListByAccount(ctx, s.db, accountID, limit)
}

// AdminManualCredit posts an ops correction to an account.
// Idempotent on (account_id, idempotency_key): a retry returns the original
// entry and the current balance without posting again.
func (s *Service) AdminManualCredit(ctx context.Context, accountID string, req AdminCreditRequest) (Entry, Balance, error) {
	if accountID == "" || req.IdempotencyKey == "" || req.Reason == "" {
		return Entry{}, Balance{}, ErrInvalidArgument
	}
	// Amount may be negative (clawback) but never zero.
	if req.AmountCoins == 0 {
		return Entry{}, Balance{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	entryID := uuid.NewString()

	var outEntry Entry
	var outBal Balance

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		a, err := account.LockForUpdate(ctx, tx, accountID)
		if err != nil {
			if errors.Is(err, account.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		if existing, ok, err := FindByIdempotency(ctx, tx, accountID, req.IdempotencyKey); err != nil {
			return err
		} else if ok {
			outEntry = existing
			outBal = Balance{AccountID: a.ID, CoinBalance: a.CoinBalance, UpdatedAt: a.UpdatedAt}
			return nil
		}

		// A clawback must not drive the balance negative.
		if req.AmountCoins < 0 && a.CoinBalance+req.AmountCoins < 0 {
			return ErrInvalidArgument
		}

		entry := Entry{
			ID:             entryID,
			AccountID:      accountID,
			AmountCoins:    req.AmountCoins,
			Type:           EntryTypeAdminAdjust,
			IdempotencyKey: req.IdempotencyKey,
			Metadata:       req.Metadata,
			CreatedAt:      now,
		}
		if err := Insert(ctx, tx, entry); err != nil {
			return err
		}

		bal, err := account.ApplyBalanceDelta(ctx, tx, accountID, req.AmountCoins, now)
		if err != nil {
			return err
		}

		outEntry = entry
		outBal = Balance{AccountID: accountID, CoinBalance: bal, UpdatedAt: now}
		return nil
	})

	return outEntry, outBal, err
}
