package service

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elguiriashing/amsterdam/internal/biz/domain"
)

func TestCommand_HelpRepliesAndSelfCleans(t *testing.T) {
	f := newEngineFixture(t, nil)
	f.start(t)

	f.platform.push(msg(1, 10, "/help"))
	f.clock.Advance(0)

	sent := f.platform.sentTo(testChat)
	require.Len(t, sent, 1)
	assert.Equal(t, "help text", sent[0].Text)
	assert.True(t, f.engine.index.Contains(testChat, sent[0].ID))

	f.clock.Advance(DefaultCommandCleanup)
	assert.Equal(t, 1, f.platform.deleteCount(10))
	assert.False(t, f.engine.index.Contains(testChat, 10))
	assert.Equal(t, 0, f.platform.deleteCount(sent[0].ID))

	f.clock.Advance(DefaultReplyTTL)
	assert.Equal(t, 1, f.platform.deleteCount(sent[0].ID))
}

func TestCommand_IgnoresOtherBotsAndUnknownCommands(t *testing.T) {
	f := newEngineFixture(t, nil)
	f.start(t)

	f.platform.push(msg(1, 10, "/help@otherbot"), msg(2, 11, "/unknown"), msg(3, 12, "just text"))
	f.clock.Advance(0)
	f.clock.Advance(DefaultCommandCleanup)

	assert.Empty(t, f.platform.sentTo(testChat))
	assert.Empty(t, f.platform.deletedIDs())
	assert.Equal(t, 3, f.engine.State().Tracked)
}

func TestCommand_Status(t *testing.T) {
	f := newEngineFixture(t, nil)
	f.engine.SetScheduler(NewWipeScheduler(f.clock, domain.DefaultSchedule, func() {}))
	f.start(t)

	f.platform.push(msg(1, 10, "/status@WipeBot"))
	f.clock.Advance(0)

	sent := f.platform.sentTo(testChat)
	require.Len(t, sent, 1)
	assert.Equal(t, "tracked 1 | every other day at 03:00", sent[0].Text)
}

func TestCommand_PasswordGoesToSenderPrivately(t *testing.T) {
	f := newEngineFixture(t, nil)
	f.start(t)

	f.platform.push(msg(1, 10, "/password"))
	f.clock.Advance(0)

	assert.Empty(t, f.platform.sentTo(testChat))
	dm := f.platform.sentTo(testSender)
	require.Len(t, dm, 1)
	assert.Equal(t, "password: s3cr&lt;et&gt;", dm[0].Text)

	f.clock.Advance(DefaultSecretTTL - time.Second)
	assert.Equal(t, 0, f.platform.deleteCount(dm[0].ID))
	f.clock.Advance(time.Second)
	assert.Equal(t, 1, f.platform.deleteCount(dm[0].ID))
}

func TestCommand_PasswordDMFailureHintsInChat(t *testing.T) {
	f := newEngineFixture(t, nil)
	f.start(t)
	f.platform.sendErr[testSender] = errors.New("Forbidden: bot can't initiate conversation with a user")

	f.platform.push(msg(1, 10, "/password"))
	f.clock.Advance(0)

	sent := f.platform.sentTo(testChat)
	require.Len(t, sent, 1)
	assert.Equal(t, "open a private chat first", sent[0].Text)
}

func TestCommand_PasswordMissing(t *testing.T) {
	f := newEngineFixture(t, func(cfg *EngineConfig) { cfg.Secret = "" })
	f.start(t)

	f.platform.push(msg(1, 10, "/password"))
	f.clock.Advance(0)

	sent := f.platform.sentTo(testChat)
	require.Len(t, sent, 1)
	assert.Equal(t, "no password configured", sent[0].Text)
	assert.Empty(t, f.platform.sentTo(testSender))
}

func TestCommand_SetAutoWipe(t *testing.T) {
	f := newEngineFixture(t, nil)
	sched := NewWipeScheduler(f.clock, domain.DefaultSchedule, func() {})
	sched.Start()
	t.Cleanup(sched.Stop)
	f.engine.SetScheduler(sched)
	f.start(t)

	f.platform.push(msg(1, 10, "/setautowipe 24 09:15"))
	f.clock.Advance(0)

	assert.Equal(t, domain.WipeSchedule{IntervalHours: 24, Hour: 9, Minute: 15}, sched.Schedule())
	sent := f.platform.sentTo(testChat)
	require.Len(t, sent, 1)
	assert.Equal(t, "auto-wipe daily at 09:15", sent[0].Text)
}

func TestCommand_SetAutoWipeWithStoppedSchedulerReportsNotScheduled(t *testing.T) {
	f := newEngineFixture(t, func(cfg *EngineConfig) {
		cfg.Texts.ScheduleUpdated = "auto-wipe {{schedule}}, next {{next_run}}"
	})
	sched := NewWipeScheduler(f.clock, domain.DefaultSchedule, func() {})
	f.engine.SetScheduler(sched)
	f.start(t)

	f.platform.push(msg(1, 10, "/setautowipe 24 09:15"))
	f.clock.Advance(0)

	sent := f.platform.sentTo(testChat)
	require.Len(t, sent, 1)
	assert.Equal(t, "auto-wipe daily at 09:15, next not scheduled", sent[0].Text)
}

func TestCommand_SetAutoWipeRejectsInvalidInput(t *testing.T) {
	f := newEngineFixture(t, nil)
	sched := NewWipeScheduler(f.clock, domain.DefaultSchedule, func() {})
	sched.Start()
	t.Cleanup(sched.Stop)
	f.engine.SetScheduler(sched)
	f.start(t)
	next := sched.NextRun()

	f.platform.push(
		msg(1, 10, "/setautowipe 200 03:00"),
		msg(2, 11, "/setautowipe 24 25:00"),
		msg(3, 12, "/setautowipe"),
	)
	f.clock.Advance(0)

	assert.Equal(t, domain.DefaultSchedule, sched.Schedule())
	assert.Equal(t, next, sched.NextRun())

	sent := f.platform.sentTo(testChat)
	require.Len(t, sent, 3)
	for _, m := range sent {
		assert.Contains(t, m.Text, "usage: /setautowipe")
		assert.True(t, f.engine.index.Contains(testChat, m.ID))
	}

	f.clock.Advance(DefaultReplyTTL)
	for _, m := range sent {
		assert.Equal(t, 1, f.platform.deleteCount(m.ID))
	}
}
