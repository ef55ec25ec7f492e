package service

import (
	"fmt"
	"time"

	"github.com/elguiriashing/amsterdam/internal/biz/domain"
	"github.com/elguiriashing/amsterdam/internal/biz/usecase"
)

// schedulePoll arms the next poll tick after delay.
// Nothing is armed while a wipe is pending or running; the wipe re-arms on completion.
func (e *Engine) schedulePoll(delay time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running || e.wipePending || e.wipeInFlight {
		return
	}
	e.cancelPollLocked()
	gen := e.pollGen
	e.pollTask = e.clock.AfterFunc(delay, func() { e.pollTick(gen) })
}

// cancelPollLocked drops the pending poll timer and invalidates any tick already firing
func (e *Engine) cancelPollLocked() {
	if e.pollTask != nil {
		e.pollTask.Cancel()
		e.pollTask = nil
	}
	e.pollGen++
}

// pollTick fetches one batch, advances the cursor past it, dispatches it and re-arms
func (e *Engine) pollTick(gen uint64) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	if gen != e.pollGen || !e.running || e.wipePending || e.wipeInFlight {
		e.mu.Unlock()
		return
	}
	e.pollTask = nil
	e.pollingInFlight = true
	offset := e.cursor.Value()
	ctx := e.ctx
	e.mu.Unlock()

	events, err := e.platform.GetUpdates(ctx, offset, e.cfg.PollBatchSize)
	if err != nil {
		fmt.Printf("[Poll] Failed to fetch updates: %v\n", err)
	} else if len(events) > 0 {
		// Advance before dispatching: a crash mid-dispatch skips the batch rather than replaying it
		e.mu.Lock()
		e.cursor.Advance(domain.LastSeq(events) + 1)
		e.mu.Unlock()

		e.debugf("[Poll] %d updates from offset %d\n", len(events), offset)
		e.dispatch(events)
	}

	e.mu.Lock()
	e.pollingInFlight = false
	e.mu.Unlock()

	e.schedulePoll(e.cfg.PollInterval)
}

// dispatch tracks every event of the managed chat and routes commands
func (e *Engine) dispatch(events []domain.ChatEvent) {
	botName := e.username()
	for i := range events {
		ev := &events[i]
		if !e.trackEvent(ev) || ev.Kind == domain.EventPinNotice {
			continue
		}
		if cmd, ok := usecase.ParseCommand(ev.Text, botName); ok {
			e.handleCommand(ev, cmd)
		}
	}
}

// trackEvent records the event's message id. A pin notice also tracks the newly
// pinned id and protects it from capacity trimming until the next wipe's lookup.
// Returns false for events outside the managed chat.
func (e *Engine) trackEvent(ev *domain.ChatEvent) bool {
	if ev.Kind == domain.EventOther || ev.ChatID != e.cfg.ChatID {
		return false
	}
	e.index.Track(ev.ChatID, ev.MessageID)
	if ev.Kind == domain.EventPinNotice && ev.PinnedMessageID != 0 {
		e.index.MarkPinned(ev.ChatID, ev.PinnedMessageID)
		e.index.Track(ev.ChatID, ev.PinnedMessageID)
	}
	return true
}
