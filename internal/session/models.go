package session

import "time"

// Session is one attempted-or-completed call between a caller and a receiver.
//
// Invariants:
// - ReceiverJoinedAt, if set, is >= StartedAt; EndedAt, if set, is >=
//   ReceiverJoinedAt.
// - CoinsCharged/CoinsCredited are written exactly once, at termination.
// - A terminal session (ENDED, REJECTED, CANCELLED) is immutable except for
//   the caller's post-call rating.
//
// RatePerMin snapshots the receiver's per-minute rate for the requested
// media type at admission time, so a mid-call rate change cannot alter what
// an in-flight call costs.
type Session struct {
	ID         string    `json:"id" db:"id"`
	CallerID   string    `json:"caller_id" db:"caller_id"`
	ReceiverID string    `json:"receiver_id" db:"receiver_id"`
	MediaType  MediaType `json:"media_type" db:"media_type"`
	Status     Status    `json:"status" db:"status"`

	// ChannelID names the media channel at the RTC provider; join
	// credentials are issued against it.
	ChannelID string `json:"channel_id" db:"channel_id"`

	RatePerMin int64 `json:"rate_per_min" db:"rate_per_min"`

	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	StartedAt        *time.Time `json:"started_at,omitempty" db:"started_at"`
	ReceiverJoinedAt *time.Time `json:"receiver_joined_at,omitempty" db:"receiver_joined_at"`
	EndedAt          *time.Time `json:"ended_at,omitempty" db:"ended_at"`

	// DurationSeconds is the server-computed chargeable duration.
	DurationSeconds int   `json:"duration_seconds" db:"duration_seconds"`
	CoinsCharged    int64 `json:"coins_charged" db:"coins_charged"`
	CoinsCredited   int64 `json:"coins_credited" db:"coins_credited"`

	// ReportedDurationSeconds is what the client claimed at end time. Kept
	// for anomaly telemetry only; billing never reads it.
	ReportedDurationSeconds *int `json:"reported_duration_seconds,omitempty" db:"reported_duration_seconds"`

	EndReason EndReason `json:"end_reason,omitempty" db:"end_reason"`
	EndedBy   string    `json:"ended_by,omitempty" db:"ended_by"`

	Rating   *int   `json:"rating,omitempty" db:"rating"`
	Feedback string `json:"feedback,omitempty" db:"feedback"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type MediaType string

const (
	MediaAudio MediaType = "audio"
	MediaVideo MediaType = "video"
)

func ValidMediaType(m MediaType) bool {
	return m == MediaAudio || m == MediaVideo
}

type Status string

const (
	StatusRinging   Status = "ringing"
	StatusOngoing   Status = "ongoing"
	StatusEnded     Status = "ended"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether a status admits no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusEnded, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

type EndReason string

const (
	EndReasonHangup        EndReason = "hangup"
	EndReasonRejected      EndReason = "rejected_by_receiver"
	EndReasonCancelled     EndReason = "cancelled_by_caller"
	EndReasonRingTimeout   EndReason = "ring_timeout"
	EndReasonStaleForceEnd EndReason = "stale_force_end"
	EndReasonAdminForceEnd EndReason = "admin_force_end"
)

// Actors recorded in EndedBy. "reaper" and "admin" mark terminations no
// client triggered.
const (
	EndedByCaller   = "caller"
	EndedByReceiver = "receiver"
	EndedByReaper   = "reaper"
	EndedByAdmin    = "admin"
)

// View is the single session representation returned by every transition
// endpoint. One shape, always fully populated; response fields are never
// bolted on per-endpoint.
type View struct {
	ID         string    `json:"call_id"`
	CallerID   string    `json:"caller_id"`
	ReceiverID string    `json:"receiver_id"`
	MediaType  MediaType `json:"media_type"`
	Status     Status    `json:"status"`
	ChannelID  string    `json:"channel_id"`

	CreatedAt        time.Time  `json:"created_at"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	ReceiverJoinedAt *time.Time `json:"receiver_joined_at,omitempty"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`

	DurationSeconds int   `json:"duration_seconds"`
	CoinsCharged    int64 `json:"coins_charged"`
	CoinsEarned     int64 `json:"coins_earned"`

	Rating *int `json:"rating,omitempty"`
}

func (s Session) View() View {
	return View{
		ID:               s.ID,
		CallerID:         s.CallerID,
		ReceiverID:       s.ReceiverID,
		MediaType:        s.MediaType,
		Status:           s.Status,
		ChannelID:        s.ChannelID,
		CreatedAt:        s.CreatedAt,
		StartedAt:        s.StartedAt,
		ReceiverJoinedAt: s.ReceiverJoinedAt,
		EndedAt:          s.EndedAt,
		DurationSeconds:  s.DurationSeconds,
		CoinsCharged:     s.CoinsCharged,
		CoinsEarned:      s.CoinsCredited,
		Rating:           s.Rating,
	}
}
