package api

import (
	"time"

	"github.com/elguiriashing/amsterdam/internal/biz/domain"
)

// WipeRun is the JSON form of a journal entry
type WipeRun struct {
	ID             string    `json:"id"`
	ChatID         int64     `json:"chat_id"`
	Reason         string    `json:"reason"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	DurationMs     int64     `json:"duration_ms"`
	PinnedID       int64     `json:"pinned_id,omitempty"`
	Attempted      int       `json:"attempted"`
	Deleted        int       `json:"deleted"`
	Failed         int       `json:"failed"`
	Drained        int       `json:"drained"`
	ConfirmationID int64     `json:"confirmation_id,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// ToWipeRun converts a journal entry to its JSON form
func ToWipeRun(r *domain.WipeRun) *WipeRun {
	if r == nil {
		return nil
	}
	return &WipeRun{
		ID:             r.ID,
		ChatID:         r.ChatID,
		Reason:         r.Reason,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		DurationMs:     r.Duration().Milliseconds(),
		PinnedID:       r.PinnedID,
		Attempted:      r.Attempted,
		Deleted:        r.Deleted,
		Failed:         r.Failed,
		Drained:        r.Drained,
		ConfirmationID: r.ConfirmationID,
		Error:          r.Error,
	}
}

// Schedule is the JSON form of the auto-wipe schedule
type Schedule struct {
	Hours   int        `json:"hours"`
	Time    string     `json:"time"`
	Rule    string     `json:"rule,omitempty"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

// StatusResponse is returned by GET /api/status
type StatusResponse struct {
	ChatID          int64    `json:"chat_id"`
	Uptime          string   `json:"uptime"`
	UptimeSec       int64    `json:"uptime_sec"`
	Tracked         int      `json:"tracked"`
	Cursor          int64    `json:"cursor"`
	Running         bool     `json:"running"`
	PollingInFlight bool     `json:"polling_in_flight"`
	WipeInFlight    bool     `json:"wipe_in_flight"`
	WipePending     bool     `json:"wipe_pending"`
	Schedule        Schedule `json:"schedule"`
	LastWipe        *WipeRun `json:"last_wipe,omitempty"`
}

// NotifyRequest is the body of POST /api/notify
type NotifyRequest struct {
	Text string `json:"text"`
}

// NotifyResponse is returned by POST /api/notify
type NotifyResponse struct {
	MessageID int64 `json:"message_id"`
}

// ScheduleRequest is the body of PUT /api/schedule
type ScheduleRequest struct {
	Hours int    `json:"hours"`
	Time  string `json:"time"`
}

// WipesResponse is returned by GET /api/wipes
type WipesResponse struct {
	Wipes []*WipeRun `json:"wipes"`
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error string `json:"error"`
}
