package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elguiriashing/amsterdam/internal/biz/domain"
)

func TestWipeScheduler_DefaultFiresEveryOtherDay(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	var fired int32
	s := NewWipeScheduler(clock, domain.DefaultSchedule, func() { atomic.AddInt32(&fired, 1) })
	s.Start()
	defer s.Stop()

	assert.Equal(t, time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC), s.NextRun())

	clock.Advance(3 * time.Hour)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
	assert.Equal(t, time.Date(2024, 5, 3, 3, 0, 0, 0, time.UTC), s.NextRun())

	clock.Advance(24 * time.Hour)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))

	clock.Advance(24 * time.Hour)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fired))
}

func TestWipeScheduler_ReconfigureReplacesJob(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	var fired int32
	s := NewWipeScheduler(clock, domain.DefaultSchedule, func() { atomic.AddInt32(&fired, 1) })
	s.Start()
	defer s.Stop()

	schedule, err := domain.NewWipeSchedule(24, "09:15")
	require.NoError(t, err)
	require.NoError(t, s.Reconfigure(schedule))

	assert.Equal(t, schedule, s.Schedule())
	assert.Equal(t, time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC), s.NextRun())

	// The previous 48h job was due at 03:00 and must not fire
	clock.Advance(4 * time.Hour)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(5*time.Hour + 15*time.Minute)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))

	clock.Advance(24 * time.Hour)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fired))
}

func TestWipeScheduler_ReconfigureRejectsInvalid(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	s := NewWipeScheduler(clock, domain.DefaultSchedule, func() {})
	s.Start()
	defer s.Stop()
	next := s.NextRun()

	err := s.Reconfigure(domain.WipeSchedule{IntervalHours: 200, Hour: 3})
	var se *domain.ScheduleError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "hours", se.Field)

	assert.Equal(t, domain.DefaultSchedule, s.Schedule())
	assert.Equal(t, next, s.NextRun())
	assert.Equal(t, 1, clock.Pending())
}

func TestWipeScheduler_HourlyGrid(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	var fired int32
	s := NewWipeScheduler(clock, domain.WipeSchedule{IntervalHours: 6, Hour: 3, Minute: 0}, func() { atomic.AddInt32(&fired, 1) })
	s.Start()
	defer s.Stop()

	assert.Equal(t, time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC), s.NextRun())

	clock.Advance(11 * time.Hour)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fired))
	assert.Equal(t, time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC), s.NextRun())
}

func TestWipeScheduler_StopCancelsJob(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	var fired int32
	s := NewWipeScheduler(clock, domain.DefaultSchedule, func() { atomic.AddInt32(&fired, 1) })
	s.Start()
	assert.True(t, s.Active())

	s.Stop()
	assert.False(t, s.Active())
	assert.True(t, s.NextRun().IsZero())

	clock.Advance(72 * time.Hour)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))

	// Reconfiguring while stopped only updates the definition
	require.NoError(t, s.Reconfigure(domain.WipeSchedule{IntervalHours: 24, Hour: 1}))
	assert.False(t, s.Active())
	assert.Equal(t, 24, s.Schedule().IntervalHours)
}

func TestWipeScheduler_TriggersEngineWipe(t *testing.T) {
	f := newEngineFixture(t, nil)
	f.start(t)
	f.platform.push(msg(1, 1, "a"))
	f.clock.Advance(0)

	s := NewWipeScheduler(f.clock, domain.WipeSchedule{IntervalHours: 24, Hour: 3}, func() {
		f.engine.TriggerWipe(domain.WipeReasonSchedule)
	})
	f.engine.SetScheduler(s)
	s.Start()
	defer s.Stop()

	f.clock.Advance(3 * time.Hour)
	require.Equal(t, 1, f.journal.count())
	run, err := f.journal.Latest(context.Background(), testChat)
	require.NoError(t, err)
	assert.Equal(t, domain.WipeReasonSchedule, run.Reason)
	assert.Equal(t, []int64{1}, f.platform.deletedIDs())
}
