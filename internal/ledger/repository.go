package ledger

import (
	"context"
	"database/sql"
	"errors"
)

// NOTE: This repository assumes a ledger_entries table with an INSERT-only
// policy and UNIQUE (account_id, idempotency_key).

const entryColumns = `
id, account_id, amount_coins, type, session_id, idempotency_key, metadata, created_at`

// Insert appends an entry. The unique idempotency constraint is the last
// line of defense against double-posting; callers should still check
// FindByIdempotency first to make retries return the original row.
func Insert(ctx context.Context, tx *sql.Tx, e Entry) error {
	const q = `
INSERT INTO ledger_entries (
  id, account_id, amount_coins, type, session_id, idempotency_key, metadata, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8
)`
	_, err := tx.ExecContext(ctx, q,
		e.ID,
		e.AccountID,
		e.AmountCoins,
		e.Type,
		e.SessionID,
		e.IdempotencyKey,
		e.Metadata,
		e.CreatedAt,
	)
	return err
}

// FindByIdempotency looks up an existing entry for a retry-safe operation.
func FindByIdempotency(ctx context.Context, tx *sql.Tx, accountID, key string) (Entry, bool, error) {
	const q = `
SELECT ` + entryColumns + `
FROM ledger_entries
WHERE account_id = $1 AND idempotency_key = $2
LIMIT 1`
	var e Entry
	err := tx.QueryRowContext(ctx, q, accountID, key).Scan(
		&e.ID,
		&e.AccountID,
		&e.AmountCoins,
		&e.Type,
		&e.SessionID,
		&e.IdempotencyKey,
		&e.Metadata,
		&e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	return e, true, nil
}

// ListByAccount returns the most recent entries for an account.
func ListByAccount(ctx context.Context, db *sql.DB, accountID string, limit int) ([]Entry, error) {
	const q = `
SELECT ` + entryColumns + `
FROM ledger_entries
WHERE account_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`
	rows, err := db.QueryContext(ctx, q, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID,
			&e.AccountID,
			&e.AmountCoins,
			&e.Type,
			&e.SessionID,
			&e.IdempotencyKey,
			&e.Metadata,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
