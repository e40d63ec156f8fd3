package reporting

import (
	"context"
	"database/sql"
	"time"

	"callpay-platform/internal/ledger"
	"callpay-platform/internal/session"
)

// SQLRepository reads summaries straight from Postgres.
//
// The queries deliberately hit terminal sessions and ledger rows only; both
// are immutable once written, so summaries are stable under retries.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) ListEndedSessions(ctx context.Context, accountID string, from, to time.Time) ([]session.Session, error) {
	const q = `
SELECT id, caller_id, receiver_id, media_type, status, duration_seconds,
       coins_charged, coins_credited, ended_at
FROM call_sessions
WHERE (caller_id = $1 OR receiver_id = $1)
  AND status = $2
  AND ended_at >= $3 AND ended_at < $4
ORDER BY ended_at`
	rows, err := r.db.QueryContext(ctx, q, accountID, session.StatusEnded, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []session.Session
	for rows.Next() {
		var s session.Session
		var endedAt sql.NullTime
		if err := rows.Scan(
			&s.ID,
			&s.CallerID,
			&s.ReceiverID,
			&s.MediaType,
			&s.Status,
			&s.DurationSeconds,
			&s.CoinsCharged,
			&s.CoinsCredited,
			&endedAt,
		); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			t := endedAt.Time
			s.EndedAt = &t
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLRepository) ListLedgerEntries(ctx context.Context, accountID string, from, to time.Time) ([]ledger.Entry, error) {
	const q = `
SELECT id, account_id, amount_coins, type, session_id, created_at
FROM ledger_entries
WHERE account_id = $1
  AND created_at >= $2 AND created_at < $3
ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q, accountID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		var sessionID sql.NullString
		if err := rows.Scan(
			&e.ID,
			&e.AccountID,
			&e.AmountCoins,
			&e.Type,
			&sessionID,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if sessionID.Valid {
			e.SessionID = sessionID.String
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
