package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/elguiriashing/amsterdam/internal/biz/domain"
	"github.com/elguiriashing/amsterdam/internal/biz/repo"
	"github.com/elguiriashing/amsterdam/internal/biz/usecase"
)

var (
	// ErrWipeInProgress is returned when a wipe is requested while one is pending or running
	ErrWipeInProgress = errors.New("wipe already in progress")

	// ErrEngineStopped is returned for operations issued before Start or after Stop
	ErrEngineStopped = errors.New("engine not running")
)

// Engine defaults
const (
	DefaultPollInterval   = 3 * time.Second
	DefaultPollBatchSize  = 100
	DefaultResumeGrace    = time.Second
	DefaultCommandCleanup = 2 * time.Second
	DefaultSecretTTL      = 60 * time.Second
	DefaultReplyTTL       = 30 * time.Second
	DefaultNotifyTTL      = 48 * time.Hour

	maxDrainBatches = 10
)

// EngineConfig contains engine configuration
type EngineConfig struct {
	ChatID      int64
	BotUsername string // resolved through the platform when empty
	Secret      string

	PollInterval   time.Duration
	PollBatchSize  int
	ResumeGrace    time.Duration
	IndexCapacity  int
	CommandCleanup time.Duration
	SecretTTL      time.Duration
	ReplyTTL       time.Duration
	NotifyTTL      time.Duration

	Texts usecase.Texts
	Debug bool
}

func (c *EngineConfig) fillDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.PollBatchSize <= 0 {
		c.PollBatchSize = DefaultPollBatchSize
	}
	if c.ResumeGrace <= 0 {
		c.ResumeGrace = DefaultResumeGrace
	}
	if c.CommandCleanup <= 0 {
		c.CommandCleanup = DefaultCommandCleanup
	}
	if c.SecretTTL <= 0 {
		c.SecretTTL = DefaultSecretTTL
	}
	if c.ReplyTTL <= 0 {
		c.ReplyTTL = DefaultReplyTTL
	}
	if c.NotifyTTL <= 0 {
		c.NotifyTTL = DefaultNotifyTTL
	}
}

// ScheduleController is the recurring wipe job as seen by the engine
type ScheduleController interface {
	Reconfigure(schedule domain.WipeSchedule) error
	Schedule() domain.WipeSchedule
	NextRun() time.Time
}

// EngineState is a snapshot of the engine's shared state
type EngineState struct {
	Running         bool
	PollingInFlight bool
	WipeInFlight    bool
	WipePending     bool
	Cursor          int64
	Tracked         int
}

// Engine owns the cursor, the message index and the poll/wipe flags for one chat.
//
// Poll ticks and wipes are serialised by opMu. mu guards the cursor, the flags and
// the poll timer; it is never held across a platform call, so State can always be
// observed. The index locks internally because ephemeral expiry runs on its own timers.
type Engine struct {
	cfg      EngineConfig
	platform repo.PlatformRepo
	journal  repo.WipeJournalRepo
	clock    Clock
	index    *domain.MessageIndex
	commands map[string]commandEntry

	scheduler ScheduleController

	opMu sync.Mutex

	mu              sync.Mutex
	cursor          *domain.Cursor
	botUsername     string
	running         bool
	pollingInFlight bool
	wipeInFlight    bool
	wipePending     bool
	pollTask        Task
	pollGen         uint64
	startedAt       time.Time
	lastRun         *domain.WipeRun
	ctx             context.Context
	cancel          context.CancelFunc

	wg sync.WaitGroup
}

// NewEngine creates a new engine. journal may be nil.
func NewEngine(cfg EngineConfig, platform repo.PlatformRepo, journal repo.WipeJournalRepo, clock Clock) *Engine {
	cfg.fillDefaults()
	if clock == nil {
		clock = RealClock
	}

	e := &Engine{
		cfg:         cfg,
		platform:    platform,
		journal:     journal,
		clock:       clock,
		index:       domain.NewMessageIndex(cfg.IndexCapacity),
		cursor:      domain.NewCursor(0),
		botUsername: cfg.BotUsername,
	}
	e.commands = e.commandTable()
	return e
}

// SetScheduler attaches the recurring job reported by status and changed by setautowipe
func (e *Engine) SetScheduler(s ScheduleController) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scheduler = s
}

// Start resolves the bot name, primes the cursor and schedules the first poll
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.startedAt = e.clock.Now()
	needName := e.botUsername == ""
	e.mu.Unlock()

	if needName {
		name, err := e.platform.BotUsername(e.ctx)
		if err != nil {
			fmt.Printf("[Engine] Failed to resolve bot username, accepting any command suffix: %v\n", err)
		} else {
			e.mu.Lock()
			e.botUsername = name
			e.mu.Unlock()
			fmt.Printf("[Engine] Bot username: @%s\n", name)
		}
	}

	e.primeCursor()

	e.mu.Lock()
	e.running = true
	cursor := e.cursor.Value()
	e.mu.Unlock()

	e.schedulePoll(0)
	fmt.Printf("[Engine] Started for chat %d (cursor %d)\n", e.cfg.ChatID, cursor)
}

// primeCursor positions the cursor one past the newest pending update so history is skipped
func (e *Engine) primeCursor() {
	events, err := e.platform.GetUpdates(e.ctx, repo.LatestOffset, 1)
	if err != nil {
		fmt.Printf("[Engine] Failed to prime cursor, starting from earliest unconfirmed update: %v\n", err)
		return
	}
	if last := domain.LastSeq(events); last > 0 {
		e.mu.Lock()
		e.cursor.Reset(last + 1)
		e.mu.Unlock()
	}
}

// Stop cancels the poll timer and waits for the in-flight poll or wipe to finish
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.cancelPollLocked()
	cancel := e.cancel
	e.mu.Unlock()

	cancel()

	e.opMu.Lock()
	e.opMu.Unlock()
	e.wg.Wait()

	fmt.Println("[Engine] Stopped")
}

// State returns a snapshot of the shared state
func (e *Engine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EngineState{
		Running:         e.running,
		PollingInFlight: e.pollingInFlight,
		WipeInFlight:    e.wipeInFlight,
		WipePending:     e.wipePending,
		Cursor:          e.cursor.Value(),
		Tracked:         e.index.Count(e.cfg.ChatID),
	}
}

// ChatID returns the chat the engine manages
func (e *Engine) ChatID() int64 {
	return e.cfg.ChatID
}

// Status collects the data shown by the status command
func (e *Engine) Status(ctx context.Context) usecase.StatusView {
	e.mu.Lock()
	view := usecase.StatusView{
		Uptime:   e.clock.Now().Sub(e.startedAt),
		Tracked:  e.index.Count(e.cfg.ChatID),
		LastWipe: e.lastRun,
	}
	if e.startedAt.IsZero() {
		view.Uptime = 0
	}
	sched := e.scheduler
	e.mu.Unlock()

	if sched != nil {
		view.Schedule = sched.Schedule()
		view.NextRun = sched.NextRun()
	}
	if view.LastWipe == nil && e.journal != nil {
		run, err := e.journal.Latest(ctx, e.cfg.ChatID)
		if err != nil {
			fmt.Printf("[Journal] Failed to load last wipe: %v\n", err)
		}
		view.LastWipe = run
	}
	return view
}

// Notify posts text to the chat and deletes it after the notification retention window
func (e *Engine) Notify(ctx context.Context, text string) (int64, error) {
	if !e.State().Running {
		return 0, ErrEngineStopped
	}
	return e.SendEphemeral(ctx, e.cfg.ChatID, text, e.cfg.NotifyTTL)
}

func (e *Engine) context() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

func (e *Engine) username() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.botUsername
}

func (e *Engine) debugf(format string, args ...interface{}) {
	if e.cfg.Debug {
		fmt.Printf(format, args...)
	}
}
