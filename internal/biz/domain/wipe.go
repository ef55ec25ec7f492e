package domain

import "time"

// Wipe trigger reasons
const (
	WipeReasonSchedule = "schedule"
	WipeReasonCommand  = "command"
	WipeReasonAPI      = "api"
)

// WipeRun is the journal record of one bulk delete
type WipeRun struct {
	ID             string
	ChatID         int64
	Reason         string
	StartedAt      time.Time
	FinishedAt     time.Time
	PinnedID       int64 // 0 when the chat had no pinned message
	Attempted      int   // ids in the snapshot, pinned excluded
	Deleted        int
	Failed         int
	Drained        int // updates consumed by the post-wipe drain pass
	ConfirmationID int64
	Error          string // non-empty when the wipe was aborted
}

// Duration returns how long the run took
func (w *WipeRun) Duration() time.Duration {
	if w.FinishedAt.IsZero() {
		return 0
	}
	return w.FinishedAt.Sub(w.StartedAt)
}

// Aborted reports whether the run stopped before deleting anything
func (w *WipeRun) Aborted() bool {
	return w.Error != ""
}
