package account

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// NOTE: This repository assumes the following tables exist:
// - accounts (coin_balance BIGINT CHECK (coin_balance >= 0))
// - account_blocks (UNIQUE (blocker_id, blocked_id))
//
// Functions taking *sql.Tx are building blocks for the session and billing
// transactions; they never begin or commit transactions themselves.

var ErrNotFound = errors.New("account not found")

const accountColumns = `
id, status, busy, coin_balance,
audio_rate_per_min, video_rate_per_min, audio_enabled, video_enabled,
created_at, updated_at`

func scanAccount(row *sql.Row) (Account, error) {
	var a Account
	if err := row.Scan(
		&a.ID,
		&a.Status,
		&a.Busy,
		&a.CoinBalance,
		&a.AudioRatePerMin,
		&a.VideoRatePerMin,
		&a.AudioEnabled,
		&a.VideoEnabled,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}

// Get reads an account without locking it.
func Get(ctx context.Context, db *sql.DB, id string) (Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(db.QueryRowContext(ctx, q, id))
}

// LockForUpdate locks an account row to serialize busy/balance mutations on it.
func LockForUpdate(ctx context.Context, tx *sql.Tx, id string) (Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return scanAccount(tx.QueryRowContext(ctx, q, id))
}

// LockPair locks two account rows in ascending-id order so that concurrent
// transactions touching the same pair cannot deadlock. Results come back in
// the order requested, not the order locked. A missing row is reported via
// its found flag rather than an error: the admission pipeline needs to know
// which side failed to resolve.
func LockPair(ctx context.Context, tx *sql.Tx, firstID, secondID string) (first Account, firstFound bool, second Account, secondFound bool, err error) {
	if firstID == secondID {
		a, err := LockForUpdate(ctx, tx, firstID)
		if errors.Is(err, ErrNotFound) {
			return Account{}, false, Account{}, false, nil
		}
		if err != nil {
			return Account{}, false, Account{}, false, err
		}
		return a, true, a, true, nil
	}

	lo, hi := firstID, secondID
	if hi < lo {
		lo, hi = hi, lo
	}

	lockMaybe := func(id string) (Account, bool, error) {
		a, err := LockForUpdate(ctx, tx, id)
		if errors.Is(err, ErrNotFound) {
			return Account{}, false, nil
		}
		if err != nil {
			return Account{}, false, err
		}
		return a, true, nil
	}

	loAcc, loFound, err := lockMaybe(lo)
	if err != nil {
		return Account{}, false, Account{}, false, err
	}
	hiAcc, hiFound, err := lockMaybe(hi)
	if err != nil {
		return Account{}, false, Account{}, false, err
	}

	if firstID == lo {
		return loAcc, loFound, hiAcc, hiFound, nil
	}
	return hiAcc, hiFound, loAcc, loFound, nil
}

// SetBusyPair flips the busy flag on both parties of a session.
// Callers must hold FOR UPDATE locks on both rows (see LockPair).
func SetBusyPair(ctx context.Context, tx *sql.Tx, idA, idB string, busy bool, now time.Time) error {
	const q = `UPDATE accounts SET busy = $1, updated_at = $2 WHERE id IN ($3, $4)`
	res, err := tx.ExecContext(ctx, q, busy, now, idA, idB)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	want := int64(2)
	if idA == idB {
		want = 1
	}
	if n != want {
		return ErrNotFound
	}
	return nil
}

// ApplyBalanceDelta adjusts the coin balance and returns the new value.
// The CHECK constraint backstops the clamp logic in billing; hitting it
// indicates a bug, not user error.
func ApplyBalanceDelta(ctx context.Context, tx *sql.Tx, id string, delta int64, now time.Time) (int64, error) {
	const q = `
UPDATE accounts SET coin_balance = coin_balance + $1, updated_at = $2
WHERE id = $3
RETURNING coin_balance`
	var bal int64
	if err := tx.QueryRowContext(ctx, q, delta, now, id).Scan(&bal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return bal, nil
}

// Blocked reports whether either party has blocked the other.
func Blocked(ctx context.Context, tx *sql.Tx, idA, idB string) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1 FROM account_blocks
  WHERE (blocker_id = $1 AND blocked_id = $2)
     OR (blocker_id = $2 AND blocked_id = $1)
)`
	var blocked bool
	if err := tx.QueryRowContext(ctx, q, idA, idB).Scan(&blocked); err != nil {
		return false, err
	}
	return blocked, nil
}

// UpdateCallSettings persists receiver-configured rates and media toggles.
// Callers must hold a FOR UPDATE lock on the row.
func UpdateCallSettings(ctx context.Context, tx *sql.Tx, id string, audioRate, videoRate int64, audioEnabled, videoEnabled bool, now time.Time) error {
	const q = `
UPDATE accounts
SET audio_rate_per_min = $1, video_rate_per_min = $2,
    audio_enabled = $3, video_enabled = $4, updated_at = $5
WHERE id = $6`
	res, err := tx.ExecContext(ctx, q, audioRate, videoRate, audioEnabled, videoEnabled, now, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
