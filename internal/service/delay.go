package service

import "time"

// Task is a pending delayed call
type Task interface {
	// Cancel prevents the call from running. Returns false if it already ran or was cancelled.
	Cancel() bool
}

// Clock schedules delayed calls. Poll rescheduling, ephemeral expiry and
// scheduler jobs all go through it so tests can substitute a manual clock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Task
}

// RealClock is the wall clock backed by time.AfterFunc
var RealClock Clock = realClock{}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Task {
	return timerTask{time.AfterFunc(d, f)}
}

type timerTask struct {
	t *time.Timer
}

func (t timerTask) Cancel() bool {
	return t.t.Stop()
}
