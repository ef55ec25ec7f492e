package repo

import (
	"context"

	"github.com/elguiriashing/amsterdam/internal/biz/domain"
)

// WipeJournalRepo is the wipe history repository interface
// Responsible for recording completed wipe runs (SQLite)
type WipeJournalRepo interface {
	// Record stores a run, assigning an ID when it has none
	Record(ctx context.Context, run *domain.WipeRun) error

	// Latest returns the most recent run for a chat, nil when there is none
	Latest(ctx context.Context, chatID int64) (*domain.WipeRun, error)

	// List returns the most recent runs, newest first
	List(ctx context.Context, limit int) ([]*domain.WipeRun, error)

	Close() error
}
