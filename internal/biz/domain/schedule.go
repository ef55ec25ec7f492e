package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	MinIntervalHours = 1
	MaxIntervalHours = 168
)

// DefaultSchedule is active when nothing else is configured: every 48 hours at 03:00
var DefaultSchedule = WipeSchedule{IntervalHours: 48, Hour: 3, Minute: 0}

var timeOfDayPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// ScheduleError is returned for malformed schedule input
type ScheduleError struct {
	Field   string
	Message string
}

func (e *ScheduleError) Error() string {
	return e.Field + ": " + e.Message
}

// WipeSchedule is the cadence of the recurring wipe
type WipeSchedule struct {
	IntervalHours int
	Hour          int
	Minute        int
}

// NewWipeSchedule validates hours ∈ [1,168] and an HH:MM time of day
func NewWipeSchedule(hours int, timeOfDay string) (WipeSchedule, error) {
	if hours < MinIntervalHours || hours > MaxIntervalHours {
		return WipeSchedule{}, &ScheduleError{
			Field:   "hours",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinIntervalHours, MaxIntervalHours, hours),
		}
	}
	hour, minute, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return WipeSchedule{}, err
	}
	return WipeSchedule{IntervalHours: hours, Hour: hour, Minute: minute}, nil
}

// ParseTimeOfDay parses a 24-hour HH:MM string
func ParseTimeOfDay(s string) (int, int, error) {
	m := timeOfDayPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, &ScheduleError{Field: "time", Message: fmt.Sprintf("expected HH:MM (24h), got %q", s)}
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return hour, minute, nil
}

// TimeOfDay formats the schedule's time as HH:MM
func (s WipeSchedule) TimeOfDay() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

func (s WipeSchedule) String() string {
	return fmt.Sprintf("every %dh at %s", s.IntervalHours, s.TimeOfDay())
}

// RuleKind is the recurrence shape derived from a schedule
type RuleKind int

const (
	RuleDaily      RuleKind = iota // every day at HH:MM
	RuleEveryNDays                 // every N days at HH:MM
	RuleHourly                     // every N hours on a grid anchored at HH:MM (approximate)
)

// Rule is a concrete recurrence derived from a WipeSchedule
type Rule struct {
	Kind   RuleKind
	Days   int // RuleEveryNDays
	Hours  int // RuleHourly
	Hour   int
	Minute int
}

// Rule derives the recurrence. 24, 48 and 72 hours map to exact day-based rules;
// every other interval becomes an hour grid through HH:MM, which only lines up with
// the wall clock when the interval divides 24.
func (s WipeSchedule) Rule() Rule {
	switch s.IntervalHours {
	case 24:
		return Rule{Kind: RuleDaily, Days: 1, Hour: s.Hour, Minute: s.Minute}
	case 48:
		return Rule{Kind: RuleEveryNDays, Days: 2, Hour: s.Hour, Minute: s.Minute}
	case 72:
		return Rule{Kind: RuleEveryNDays, Days: 3, Hour: s.Hour, Minute: s.Minute}
	default:
		return Rule{Kind: RuleHourly, Hours: s.IntervalHours, Hour: s.Hour, Minute: s.Minute}
	}
}

func (r Rule) String() string {
	at := fmt.Sprintf("%02d:%02d", r.Hour, r.Minute)
	switch r.Kind {
	case RuleDaily:
		return "daily at " + at
	case RuleEveryNDays:
		if r.Days == 2 {
			return "every other day at " + at
		}
		return fmt.Sprintf("every %d days at %s", r.Days, at)
	default:
		return fmt.Sprintf("every %dh from %s (approximate)", r.Hours, at)
	}
}

// Next returns the first occurrence strictly after now for a job started at anchor.
// Day-based rules count from the first HH:MM at or after anchor.
func (r Rule) Next(anchor, now time.Time) time.Time {
	base := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), r.Hour, r.Minute, 0, 0, anchor.Location())

	if r.Kind == RuleHourly {
		step := time.Duration(r.Hours) * time.Hour
		t := base.Add(now.Sub(base) / step * step)
		for !t.After(now) {
			t = t.Add(step)
		}
		for t.Add(-step).After(now) {
			t = t.Add(-step)
		}
		return t
	}

	days := r.Days
	if days <= 0 {
		days = 1
	}
	if base.Before(anchor) {
		base = base.AddDate(0, 0, 1)
	}
	t := base
	for !t.After(now) {
		t = t.AddDate(0, 0, days)
	}
	return t
}
