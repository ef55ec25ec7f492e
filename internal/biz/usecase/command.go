package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elguiriashing/amsterdam/internal/biz/domain"
)

// Command tokens recognised in chat
const (
	CmdWipe        = "wipe"
	CmdPassword    = "password"
	CmdStatus      = "status"
	CmdHelp        = "help"
	CmdSetAutoWipe = "setautowipe"
)

// Command is a parsed chat command
type Command struct {
	Name string   // token without the leading slash or bot suffix
	Args []string // whitespace-separated arguments
}

// ParseCommand extracts a command from message text.
// "/name" and "/name@bot" are accepted; a suffix naming a different bot is ignored.
// botUsername may be empty, in which case any suffix is accepted.
func ParseCommand(text, botUsername string) (Command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return Command{}, false
	}

	token := fields[0][1:]
	if at := strings.IndexByte(token, '@'); at >= 0 {
		suffix := token[at+1:]
		token = token[:at]
		if botUsername != "" && !strings.EqualFold(suffix, strings.TrimPrefix(botUsername, "@")) {
			return Command{}, false
		}
	}
	if token == "" {
		return Command{}, false
	}

	return Command{Name: token, Args: fields[1:]}, true
}

// ParseScheduleArgs validates "<hours> <HH:MM>" arguments
func ParseScheduleArgs(args []string) (domain.WipeSchedule, error) {
	if len(args) != 2 {
		return domain.WipeSchedule{}, &domain.ScheduleError{
			Field:   "args",
			Message: fmt.Sprintf("expected 2 arguments, got %d", len(args)),
		}
	}
	hours, err := strconv.Atoi(args[0])
	if err != nil {
		return domain.WipeSchedule{}, &domain.ScheduleError{
			Field:   "hours",
			Message: fmt.Sprintf("not a number: %q", args[0]),
		}
	}
	return domain.NewWipeSchedule(hours, args[1])
}

// Texts contains the user-facing message templates.
// Placeholders use the {{name}} form.
type Texts struct {
	Help             string
	WipeDone         string // {{deleted}} {{failed}}
	Status           string // {{uptime}} {{tracked}} {{schedule}} {{next_run}} {{last_wipe}}
	Password         string // {{password}}
	PasswordMissing  string
	PasswordDMFailed string
	ScheduleUpdated  string // {{schedule}} {{next_run}}
	ScheduleUsage    string // {{error}}
}

// Render substitutes {{key}} placeholders
func Render(template string, values map[string]string) string {
	result := template
	for k, v := range values {
		result = strings.ReplaceAll(result, "{{"+k+"}}", v)
	}
	return strings.TrimSpace(result)
}

// StatusView is the data rendered by the status command
type StatusView struct {
	Uptime   time.Duration
	Tracked  int
	Schedule domain.WipeSchedule
	NextRun  time.Time
	LastWipe *domain.WipeRun
}

// RenderStatus renders the status template
func RenderStatus(template string, v StatusView) string {
	return Render(template, map[string]string{
		"uptime":    FormatUptime(v.Uptime),
		"tracked":   strconv.Itoa(v.Tracked),
		"schedule":  v.Schedule.Rule().String(),
		"next_run":  FormatNextRun(v.NextRun),
		"last_wipe": FormatLastWipe(v.LastWipe),
	})
}

// FormatNextRun renders the next scheduled wipe, "not scheduled" for the zero time
func FormatNextRun(t time.Time) string {
	if t.IsZero() {
		return "not scheduled"
	}
	return t.Format("2006-01-02 15:04")
}

// FormatUptime renders a duration as "1d 2h 3m"
func FormatUptime(d time.Duration) string {
	d = d.Truncate(time.Minute)
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	minutes := int((d - time.Duration(hours)*time.Hour) / time.Minute)

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatLastWipe summarises a journal entry
func FormatLastWipe(run *domain.WipeRun) string {
	if run == nil {
		return "never"
	}
	at := run.StartedAt.Format("2006-01-02 15:04")
	if run.Aborted() {
		return fmt.Sprintf("%s (%s, aborted)", at, run.Reason)
	}
	return fmt.Sprintf("%s (%s, %d deleted, %d failed)", at, run.Reason, run.Deleted, run.Failed)
}
