package service

import (
	"fmt"
	"html"
	"time"

	"github.com/pkg/errors"

	"github.com/elguiriashing/amsterdam/internal/biz/domain"
	"github.com/elguiriashing/amsterdam/internal/biz/usecase"
)

type commandHandler func(e *Engine, ev *domain.ChatEvent, args []string)

// commandEntry binds a command to its action and to the delay after which
// the triggering message is removed from the chat
type commandEntry struct {
	run     commandHandler
	cleanup time.Duration
}

func (e *Engine) commandTable() map[string]commandEntry {
	cleanup := e.cfg.CommandCleanup
	return map[string]commandEntry{
		usecase.CmdWipe:        {run: (*Engine).cmdWipe, cleanup: cleanup},
		usecase.CmdPassword:    {run: (*Engine).cmdPassword, cleanup: cleanup},
		usecase.CmdStatus:      {run: (*Engine).cmdStatus, cleanup: cleanup},
		usecase.CmdHelp:        {run: (*Engine).cmdHelp, cleanup: cleanup},
		usecase.CmdSetAutoWipe: {run: (*Engine).cmdSetAutoWipe, cleanup: cleanup},
	}
}

// handleCommand runs a recognised command. Unknown commands are left untouched.
func (e *Engine) handleCommand(ev *domain.ChatEvent, cmd usecase.Command) {
	entry, ok := e.commands[cmd.Name]
	if !ok {
		return
	}

	fmt.Printf("[Command] /%s from %d\n", cmd.Name, ev.SenderID)
	if entry.cleanup > 0 {
		e.deleteLater(ev.ChatID, ev.MessageID, entry.cleanup)
	}
	entry.run(e, ev, cmd.Args)
}

// cmdWipe reserves the wipe now and runs it once the current poll tick releases the engine
func (e *Engine) cmdWipe(ev *domain.ChatEvent, args []string) {
	if err := e.reserveWipe(); err != nil {
		fmt.Printf("[Command] Wipe ignored: %v\n", err)
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if _, err := e.runReservedWipe(domain.WipeReasonCommand); err != nil {
			fmt.Printf("[Command] Wipe not run: %v\n", err)
		}
	}()
}

// cmdPassword sends the secret privately to the requester
func (e *Engine) cmdPassword(ev *domain.ChatEvent, args []string) {
	texts := e.cfg.Texts
	if e.cfg.Secret == "" {
		e.reply(ev.ChatID, texts.PasswordMissing)
		return
	}
	if !ev.HasSender() {
		e.reply(ev.ChatID, texts.PasswordDMFailed)
		return
	}

	text := usecase.Render(texts.Password, map[string]string{"password": html.EscapeString(e.cfg.Secret)})
	if _, err := e.SendEphemeral(e.context(), ev.SenderID, text, e.cfg.SecretTTL); err != nil {
		fmt.Printf("[Command] Failed to deliver password to %d: %v\n", ev.SenderID, err)
		e.reply(ev.ChatID, texts.PasswordDMFailed)
	}
}

func (e *Engine) cmdStatus(ev *domain.ChatEvent, args []string) {
	view := e.Status(e.context())
	e.reply(ev.ChatID, usecase.RenderStatus(e.cfg.Texts.Status, view))
}

func (e *Engine) cmdHelp(ev *domain.ChatEvent, args []string) {
	e.reply(ev.ChatID, e.cfg.Texts.Help)
}

// cmdSetAutoWipe replaces the recurring job. Invalid input changes nothing.
func (e *Engine) cmdSetAutoWipe(ev *domain.ChatEvent, args []string) {
	e.mu.Lock()
	sched := e.scheduler
	e.mu.Unlock()

	schedule, err := usecase.ParseScheduleArgs(args)
	if err == nil && sched == nil {
		err = errors.New("auto-wipe is not available")
	}
	if err == nil {
		err = sched.Reconfigure(schedule)
	}
	if err != nil {
		fmt.Printf("[Command] setautowipe rejected: %v\n", err)
		e.reply(ev.ChatID, usecase.Render(e.cfg.Texts.ScheduleUsage, map[string]string{
			"error": html.EscapeString(err.Error()),
		}))
		return
	}

	e.reply(ev.ChatID, usecase.Render(e.cfg.Texts.ScheduleUpdated, map[string]string{
		"schedule": schedule.Rule().String(),
		"next_run": usecase.FormatNextRun(sched.NextRun()),
	}))
}
