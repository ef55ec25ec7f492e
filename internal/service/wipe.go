package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/elguiriashing/amsterdam/internal/biz/domain"
	"github.com/elguiriashing/amsterdam/internal/biz/usecase"
)

// TriggerWipe runs a wipe and returns its journal record.
// A second request while one is pending or running is rejected with ErrWipeInProgress.
func (e *Engine) TriggerWipe(reason string) (*domain.WipeRun, error) {
	if err := e.reserveWipe(); err != nil {
		if errors.Is(err, ErrWipeInProgress) {
			fmt.Printf("[Wipe] %s wipe ignored: already in progress\n", reason)
		}
		return nil, err
	}
	return e.runReservedWipe(reason)
}

// reserveWipe claims the single wipe slot and cancels the pending poll timer.
// The wipe itself waits on opMu for a poll tick already in flight.
func (e *Engine) reserveWipe() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return ErrEngineStopped
	}
	if e.wipePending || e.wipeInFlight {
		return ErrWipeInProgress
	}
	e.wipePending = true
	e.cancelPollLocked()
	return nil
}

func (e *Engine) runReservedWipe(reason string) (*domain.WipeRun, error) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	e.wipePending = false
	if !e.running {
		e.mu.Unlock()
		return nil, ErrEngineStopped
	}
	e.wipeInFlight = true
	ctx := e.ctx
	e.mu.Unlock()

	run := e.wipe(ctx, reason)

	e.mu.Lock()
	e.wipeInFlight = false
	e.lastRun = run
	e.mu.Unlock()

	e.schedulePoll(e.cfg.ResumeGrace)
	return run, nil
}

// wipe deletes every tracked message except the current pin, then resets the index to the pin
func (e *Engine) wipe(ctx context.Context, reason string) *domain.WipeRun {
	chatID := e.cfg.ChatID
	run := &domain.WipeRun{ChatID: chatID, Reason: reason, StartedAt: e.clock.Now()}
	fmt.Printf("[Wipe] Starting %s wipe for chat %d\n", reason, chatID)

	// Without a fresh pin we cannot tell which message to keep
	pinnedID, err := e.platform.GetPinnedMessage(ctx, chatID)
	if err != nil {
		run.Error = err.Error()
		run.FinishedAt = e.clock.Now()
		fmt.Printf("[Wipe] Aborted: %v\n", err)
		e.record(run)
		return run
	}
	run.PinnedID = pinnedID
	e.index.MarkPinned(chatID, pinnedID)

	for _, id := range e.index.SnapshotUnique(chatID) {
		if id == pinnedID {
			continue
		}
		run.Attempted++
		if err := e.platform.DeleteMessage(ctx, chatID, id); err != nil {
			run.Failed++
			fmt.Printf("[Wipe] Failed to delete message %d: %v\n", id, err)
			continue
		}
		run.Deleted++
		e.index.Untrack(chatID, id)
	}

	e.index.ResetTo(chatID, pinnedID)

	text := usecase.Render(e.cfg.Texts.WipeDone, map[string]string{
		"deleted": strconv.Itoa(run.Deleted),
		"failed":  strconv.Itoa(run.Failed),
	})
	if msgID, err := e.platform.SendMessage(ctx, chatID, text); err != nil {
		fmt.Printf("[Wipe] Failed to send confirmation: %v\n", err)
	} else {
		// Left for the next wipe
		e.index.Track(chatID, msgID)
		run.ConfirmationID = msgID
	}

	run.Drained = e.drain(ctx)
	run.FinishedAt = e.clock.Now()
	e.record(run)

	fmt.Printf("[Wipe] Done in %v: %d deleted, %d failed, pinned %d, drained %d\n",
		run.Duration(), run.Deleted, run.Failed, pinnedID, run.Drained)
	return run
}

// drain consumes updates that arrived during the wipe. Their messages are tracked,
// commands among them are dropped, and the cursor is reset past them.
func (e *Engine) drain(ctx context.Context) int {
	drained := 0
	for i := 0; i < maxDrainBatches; i++ {
		e.mu.Lock()
		offset := e.cursor.Value()
		e.mu.Unlock()

		events, err := e.platform.GetUpdates(ctx, offset, e.cfg.PollBatchSize)
		if err != nil {
			fmt.Printf("[Wipe] Drain stopped: %v\n", err)
			break
		}
		if len(events) == 0 {
			break
		}

		for j := range events {
			e.trackEvent(&events[j])
		}
		drained += len(events)

		e.mu.Lock()
		e.cursor.Reset(domain.LastSeq(events) + 1)
		e.mu.Unlock()

		if len(events) < e.cfg.PollBatchSize {
			break
		}
	}
	return drained
}

func (e *Engine) record(run *domain.WipeRun) {
	if e.journal == nil {
		return
	}
	if err := e.journal.Record(context.Background(), run); err != nil {
		fmt.Printf("[Journal] Failed to record wipe: %v\n", err)
	}
}
