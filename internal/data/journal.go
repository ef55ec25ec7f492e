package data

import (
	"context"
	"crypto/rand"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"github.com/elguiriashing/amsterdam/internal/biz/domain"
	"github.com/elguiriashing/amsterdam/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// journalRepo implements the wipe journal repository
type journalRepo struct {
	db *sql.DB
}

// NewJournalRepo creates a new wipe journal repository
func NewJournalRepo(dbPath string) (repo.WipeJournalRepo, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create db directory")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS wipe_runs (
			id TEXT PRIMARY KEY,
			chat_id INTEGER NOT NULL,
			reason TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			pinned_id INTEGER NOT NULL DEFAULT 0,
			attempted INTEGER NOT NULL DEFAULT 0,
			deleted INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			drained INTEGER NOT NULL DEFAULT 0,
			confirmation_id INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create table")
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_wipe_runs_chat_started ON wipe_runs(chat_id, started_at)
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create index")
	}

	return &journalRepo{db: db}, nil
}

func newRunID(at time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(at), entropy).String()
}

// Record stores a run
func (r *journalRepo) Record(ctx context.Context, run *domain.WipeRun) error {
	if run.ID == "" {
		run.ID = newRunID(run.StartedAt)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO wipe_runs
			(id, chat_id, reason, started_at, finished_at, pinned_id, attempted, deleted, failed, drained, confirmation_id, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.ChatID,
		run.Reason,
		run.StartedAt.UnixMilli(),
		run.FinishedAt.UnixMilli(),
		run.PinnedID,
		run.Attempted,
		run.Deleted,
		run.Failed,
		run.Drained,
		run.ConfirmationID,
		run.Error,
	)
	if err != nil {
		return errors.Wrap(err, "failed to record wipe run")
	}
	return nil
}

const selectRuns = `
	SELECT id, chat_id, reason, started_at, finished_at, pinned_id, attempted, deleted, failed, drained, confirmation_id, error
	FROM wipe_runs
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*domain.WipeRun, error) {
	var run domain.WipeRun
	var startedAt, finishedAt int64
	err := s.Scan(
		&run.ID, &run.ChatID, &run.Reason, &startedAt, &finishedAt, &run.PinnedID,
		&run.Attempted, &run.Deleted, &run.Failed, &run.Drained, &run.ConfirmationID, &run.Error,
	)
	if err != nil {
		return nil, err
	}
	run.StartedAt = time.UnixMilli(startedAt)
	run.FinishedAt = time.UnixMilli(finishedAt)
	return &run, nil
}

// Latest returns the most recent run for a chat
func (r *journalRepo) Latest(ctx context.Context, chatID int64) (*domain.WipeRun, error) {
	row := r.db.QueryRowContext(ctx, selectRuns+`
		WHERE chat_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`, chatID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query wipe run")
	}
	return run, nil
}

// List returns the most recent runs, newest first
func (r *journalRepo) List(ctx context.Context, limit int) ([]*domain.WipeRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, selectRuns+`
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query wipe runs")
	}
	defer rows.Close()

	var runs []*domain.WipeRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan wipe run")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the database connection
func (r *journalRepo) Close() error {
	return r.db.Close()
}
