package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/elguiriashing/amsterdam/internal/biz/domain"
)

// WipeScheduler holds the single recurring wipe job
type WipeScheduler struct {
	clock   Clock
	trigger func()

	mu       sync.Mutex
	schedule domain.WipeSchedule
	job      *scheduledJob // nil while stopped
	running  bool
}

type scheduledJob struct {
	rule    domain.Rule
	anchor  time.Time
	next    time.Time
	task    Task
	stopped bool
}

// NewWipeScheduler creates a new scheduler; trigger runs on every occurrence
func NewWipeScheduler(clock Clock, schedule domain.WipeSchedule, trigger func()) *WipeScheduler {
	if clock == nil {
		clock = RealClock
	}
	return &WipeScheduler{
		clock:    clock,
		trigger:  trigger,
		schedule: schedule,
	}
}

// Start starts the scheduler
func (s *WipeScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.job = s.startJob(s.schedule)
	fmt.Printf("[Scheduler] Started: %s, next run %s\n", s.job.rule, s.job.next.Format(time.RFC3339))
}

// Stop stops the scheduler
func (s *WipeScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	s.stopJob()
	fmt.Println("[Scheduler] Stopped")
}

// Reconfigure validates schedule, stops the current job and starts one from the new definition.
// On validation failure the current job keeps running.
func (s *WipeScheduler) Reconfigure(schedule domain.WipeSchedule) error {
	validated, err := domain.NewWipeSchedule(schedule.IntervalHours, schedule.TimeOfDay())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopJob()
	s.schedule = validated
	if !s.running {
		fmt.Printf("[Scheduler] Schedule set to %s (not running)\n", validated.Rule())
		return nil
	}
	s.job = s.startJob(validated)
	fmt.Printf("[Scheduler] Reconfigured: %s, next run %s\n", s.job.rule, s.job.next.Format(time.RFC3339))
	return nil
}

// Schedule returns the active definition
func (s *WipeScheduler) Schedule() domain.WipeSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule
}

// NextRun returns the next occurrence, zero when stopped
func (s *WipeScheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return time.Time{}
	}
	return s.job.next
}

// Active reports whether a job is armed
func (s *WipeScheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job != nil
}

func (s *WipeScheduler) startJob(schedule domain.WipeSchedule) *scheduledJob {
	now := s.clock.Now()
	job := &scheduledJob{rule: schedule.Rule(), anchor: now}
	s.arm(job, now)
	return job
}

func (s *WipeScheduler) stopJob() {
	if s.job == nil {
		return
	}
	s.job.stopped = true
	s.job.task.Cancel()
	s.job = nil
}

func (s *WipeScheduler) arm(job *scheduledJob, after time.Time) {
	now := s.clock.Now()
	job.next = job.rule.Next(job.anchor, after)
	job.task = s.clock.AfterFunc(job.next.Sub(now), func() { s.fire(job) })
}

func (s *WipeScheduler) fire(job *scheduledJob) {
	s.mu.Lock()
	if job.stopped || s.job != job {
		s.mu.Unlock()
		return
	}
	after := s.clock.Now()
	if job.next.After(after) {
		after = job.next
	}
	s.arm(job, after)
	s.mu.Unlock()

	fmt.Printf("[Scheduler] Running scheduled wipe (%s)\n", job.rule)
	s.trigger()
}
