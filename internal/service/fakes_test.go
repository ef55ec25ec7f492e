package service

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/elguiriashing/amsterdam/internal/biz/domain"
	"github.com/elguiriashing/amsterdam/internal/biz/repo"
)

// fakeClock fires tasks only when advanced

type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	tasks []*fakeTask
}

type fakeTask struct {
	clock *fakeClock
	at    time.Time
	f     func()
	done  bool
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (t *fakeTask) Cancel() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTask{clock: c, at: c.now.Add(d), f: f}
	c.tasks = append(c.tasks, t)
	return t
}

// Advance moves time forward, running due tasks in deadline order on the caller's goroutine
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTask
		live := c.tasks[:0]
		for _, t := range c.tasks {
			if t.done {
				continue
			}
			live = append(live, t)
			if t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		c.tasks = live
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.done = true
		if next.at.After(c.now) {
			c.now = next.at
		}
		c.mu.Unlock()

		next.f()
	}
}

// Pending returns the number of armed tasks
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tasks {
		if !t.done {
			n++
		}
	}
	return n
}

// fakePlatform is an in-memory chat

type sentMessage struct {
	ChatID int64
	ID     int64
	Text   string
}

type fakePlatform struct {
	mu sync.Mutex

	events   []domain.ChatEvent
	fetchErr error
	pinned   int64
	pinErr   error
	pinBlock chan struct{}
	username string

	nextMsgID   int64
	sent        []sentMessage
	sendErr     map[int64]error
	deleteErr   map[int64]error
	deleteCalls map[int64]int
	deleted     []int64
	fetches     int

	state      func() EngineState
	violations int
}

var _ repo.PlatformRepo = (*fakePlatform)(nil)

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		username:    "wipebot",
		nextMsgID:   1000,
		sendErr:     make(map[int64]error),
		deleteErr:   make(map[int64]error),
		deleteCalls: make(map[int64]int),
	}
}

// observe records a violation when polling and wiping are seen in flight together
func (f *fakePlatform) observe() {
	if f.state == nil {
		return
	}
	s := f.state()
	if s.PollingInFlight && s.WipeInFlight {
		f.mu.Lock()
		f.violations++
		f.mu.Unlock()
	}
}

func (f *fakePlatform) push(events ...domain.ChatEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
}

func (f *fakePlatform) GetUpdates(ctx context.Context, offset int64, limit int) ([]domain.ChatEvent, error) {
	f.observe()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	if offset == repo.LatestOffset {
		if len(f.events) == 0 {
			return nil, nil
		}
		return []domain.ChatEvent{f.events[len(f.events)-1]}, nil
	}

	var out []domain.ChatEvent
	for _, ev := range f.events {
		if ev.Seq >= offset && len(out) < limit {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakePlatform) SendMessage(ctx context.Context, chatID int64, text string) (int64, error) {
	f.observe()
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.sendErr[chatID]; err != nil {
		return 0, err
	}
	f.nextMsgID++
	f.sent = append(f.sent, sentMessage{ChatID: chatID, ID: f.nextMsgID, Text: text})
	return f.nextMsgID, nil
}

// DeleteMessage treats unknown and already deleted ids as success, like the data layer
func (f *fakePlatform) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	f.observe()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls[messageID]++
	if err := f.deleteErr[messageID]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakePlatform) GetPinnedMessage(ctx context.Context, chatID int64) (int64, error) {
	f.observe()
	f.mu.Lock()
	block := f.pinBlock
	f.mu.Unlock()
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pinned, f.pinErr
}

func (f *fakePlatform) BotUsername(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.username == "" {
		return "", errors.New("getMe failed")
	}
	return f.username, nil
}

func (f *fakePlatform) sentTo(chatID int64) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakePlatform) deletedIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.deleted...)
}

func (f *fakePlatform) deleteCount(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteCalls[id]
}

func (f *fakePlatform) violationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.violations
}

// fakeJournal keeps runs in memory

type fakeJournal struct {
	mu   sync.Mutex
	runs []*domain.WipeRun
}

func (j *fakeJournal) Record(ctx context.Context, run *domain.WipeRun) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if run.ID == "" {
		run.ID = "run"
	}
	j.runs = append(j.runs, run)
	return nil
}

func (j *fakeJournal) Latest(ctx context.Context, chatID int64) (*domain.WipeRun, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := len(j.runs) - 1; i >= 0; i-- {
		if j.runs[i].ChatID == chatID {
			return j.runs[i], nil
		}
	}
	return nil, nil
}

func (j *fakeJournal) List(ctx context.Context, limit int) ([]*domain.WipeRun, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []*domain.WipeRun
	for i := len(j.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, j.runs[i])
	}
	return out, nil
}

func (j *fakeJournal) Close() error { return nil }

func (j *fakeJournal) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.runs)
}
