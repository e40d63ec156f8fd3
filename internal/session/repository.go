package session

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// NOTE: This repository assumes a call_sessions table with:
// - status constrained to the Status enum values
// - nullable started_at, receiver_joined_at, ended_at, rating,
//   reported_duration_seconds
// Terminal rows are only ever touched again by setRating.

const sessionColumns = `
id, caller_id, receiver_id, media_type, status, channel_id, rate_per_min,
created_at, started_at, receiver_joined_at, ended_at,
duration_seconds, coins_charged, coins_credited, reported_duration_seconds,
end_reason, ended_by, rating, feedback, updated_at`

type sessionScanner interface {
	Scan(dest ...any) error
}

func scanSession(row sessionScanner) (Session, error) {
	var s Session
	var startedAt, joinedAt, endedAt sql.NullTime
	var reported, rating sql.NullInt64
	var endReason, endedBy, feedback sql.NullString

	if err := row.Scan(
		&s.ID,
		&s.CallerID,
		&s.ReceiverID,
		&s.MediaType,
		&s.Status,
		&s.ChannelID,
		&s.RatePerMin,
		&s.CreatedAt,
		&startedAt,
		&joinedAt,
		&endedAt,
		&s.DurationSeconds,
		&s.CoinsCharged,
		&s.CoinsCredited,
		&reported,
		&endReason,
		&endedBy,
		&rating,
		&feedback,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}

	if startedAt.Valid {
		t := startedAt.Time
		s.StartedAt = &t
	}
	if joinedAt.Valid {
		t := joinedAt.Time
		s.ReceiverJoinedAt = &t
	}
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}
	if reported.Valid {
		n := int(reported.Int64)
		s.ReportedDurationSeconds = &n
	}
	if rating.Valid {
		n := int(rating.Int64)
		s.Rating = &n
	}
	if endReason.Valid {
		s.EndReason = EndReason(endReason.String)
	}
	if endedBy.Valid {
		s.EndedBy = endedBy.String
	}
	if feedback.Valid {
		s.Feedback = feedback.String
	}
	return s, nil
}

func insertSession(ctx context.Context, tx *sql.Tx, s Session) error {
	const q = `
INSERT INTO call_sessions (
  id, caller_id, receiver_id, media_type, status, channel_id, rate_per_min,
  created_at, duration_seconds, coins_charged, coins_credited, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,0,0,0,$8
)`
	_, err := tx.ExecContext(ctx, q,
		s.ID,
		s.CallerID,
		s.ReceiverID,
		s.MediaType,
		s.Status,
		s.ChannelID,
		s.RatePerMin,
		s.CreatedAt,
	)
	return err
}

func getSession(ctx context.Context, db *sql.DB, id string) (Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM call_sessions WHERE id = $1`
	return scanSession(db.QueryRowContext(ctx, q, id))
}

// lockSession serializes concurrent transitions on one session.
func lockSession(ctx context.Context, tx *sql.Tx, id string) (Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM call_sessions WHERE id = $1 FOR UPDATE`
	return scanSession(tx.QueryRowContext(ctx, q, id))
}

// acceptSession is a compare-and-set RINGING -> ONGOING. Zero rows affected
// means another transition won in between; the caller maps that to a
// conflict.
func acceptSession(ctx context.Context, tx *sql.Tx, id string, now time.Time) (bool, error) {
	const q = `
UPDATE call_sessions
SET status = $1, started_at = $2, receiver_joined_at = $2, updated_at = $2
WHERE id = $3 AND status = $4`
	res, err := tx.ExecContext(ctx, q, StatusOngoing, now, id, StatusRinging)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// finalizeSession writes the terminal fields. The status guard is a
// belt-and-braces CAS under the row lock: a terminal row can never be
// finalized twice.
func finalizeSession(ctx context.Context, tx *sql.Tx, s Session) error {
	const q = `
UPDATE call_sessions
SET status = $1, ended_at = $2, duration_seconds = $3,
    coins_charged = $4, coins_credited = $5,
    reported_duration_seconds = $6, end_reason = $7, ended_by = $8,
    updated_at = $2
WHERE id = $9 AND status IN ($10, $11)`
	var reported any
	if s.ReportedDurationSeconds != nil {
		reported = *s.ReportedDurationSeconds
	}
	res, err := tx.ExecContext(ctx, q,
		s.Status,
		s.EndedAt,
		s.DurationSeconds,
		s.CoinsCharged,
		s.CoinsCredited,
		reported,
		string(s.EndReason),
		s.EndedBy,
		s.ID,
		StatusRinging,
		StatusOngoing,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// setRating stores the caller's one-shot rating on an ended session.
func setRating(ctx context.Context, tx *sql.Tx, id string, rating int, feedback string, now time.Time) (bool, error) {
	const q = `
UPDATE call_sessions
SET rating = $1, feedback = $2, updated_at = $3
WHERE id = $4 AND status = $5 AND rating IS NULL`
	res, err := tx.ExecContext(ctx, q, rating, feedback, now, id, StatusEnded)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// listStale returns sessions the reaper should force-terminate: RINGING
// past the ring timeout, or ONGOING past the hard ceiling.
func listStale(ctx context.Context, db *sql.DB, ringingBefore, ongoingBefore time.Time, limit int) ([]Session, error) {
	const q = `
SELECT ` + sessionColumns + `
FROM call_sessions
WHERE (status = $1 AND created_at < $2)
   OR (status = $3 AND receiver_joined_at < $4)
ORDER BY created_at
LIMIT $5`
	rows, err := db.QueryContext(ctx, q, StatusRinging, ringingBefore, StatusOngoing, ongoingBefore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
