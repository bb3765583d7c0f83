package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/hearthplan/homeplan-backend/internal/apperr"
	"github.com/hearthplan/homeplan-backend/internal/types"
)

const defaultMaxOccurrences = 366

// Occurrence is one concrete instance derived from an ImportedEvent. Times
// are already converted into the display timezone.
type Occurrence struct {
	EventID  uuid.UUID
	Summary  string
	Location string
	Start    time.Time
	End      time.Time
}

// DayOfWeek reports the occurrence's weekday as 1 (Monday) through 7 (Sunday).
func (o Occurrence) DayOfWeek() int {
	wd := int(o.Start.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd
}

// StartMinute is the occurrence start as minutes from midnight in display time.
func (o Occurrence) StartMinute() int {
	return o.Start.Hour()*60 + o.Start.Minute()
}

// EndMinute is the occurrence end as minutes from midnight in display time.
// An occurrence running to midnight reports 1440 rather than 0.
func (o Occurrence) EndMinute() int {
	m := o.End.Hour()*60 + o.End.Minute()
	if m == 0 && o.End.After(o.Start) {
		return 24 * 60
	}
	return m
}

// ExpandConfig controls how recurrence expansion is performed.
type ExpandConfig struct {
	// DisplayLocation is the timezone all occurrences are converted into.
	// If nil, UTC is used.
	DisplayLocation *time.Location

	// MaxOccurrences caps open-ended rules so expansion always terminates.
	// If zero, defaultMaxOccurrences (366, roughly two years of weekly
	// repetition) is used.
	MaxOccurrences int
}

// ExpandResult wraps the expanded occurrences plus the non-fatal signals the
// caller needs: whether an open-ended rule hit the cap, and whether the rule
// degraded to a single-occurrence fallback.
type ExpandResult struct {
	Occurrences []Occurrence
	Truncated   bool
	Warning     *apperr.MalformedRecurrenceError
}

// Expand turns one ImportedEvent into its finite list of occurrences.
//
// Only WEEKLY frequency is supported. No frequency means a single occurrence.
// COUNT stops after exactly COUNT occurrences; UNTIL is an inclusive boundary
// (an occurrence starting exactly at UNTIL is kept). A rule that cannot be
// honored degrades to a single DTSTART/DTEND occurrence with a
// MalformedRecurrenceError recorded in the result.
func Expand(ev *types.ImportedEvent, cfg ExpandConfig) ExpandResult {
	var result ExpandResult
	if ev == nil {
		return result
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.UTC
	}
	if cfg.MaxOccurrences <= 0 {
		cfg.MaxOccurrences = defaultMaxOccurrences
	}

	loc, err := time.LoadLocation(ev.Timezone)
	if err != nil {
		loc = time.UTC
		result.Warning = &apperr.MalformedRecurrenceError{
			EventID: ev.ID,
			Reason:  fmt.Sprintf("unknown timezone %q, using UTC", ev.Timezone),
		}
	}

	start := ev.DTStart.In(loc)
	duration := ev.DTEnd.Sub(ev.DTStart)
	if duration <= 0 {
		result.Warning = &apperr.MalformedRecurrenceError{
			EventID: ev.ID,
			Reason:  "dtend not after dtstart",
		}
		return result
	}

	freq := strings.ToUpper(strings.TrimSpace(ev.Frequency))
	if freq == "" {
		result.Occurrences = []Occurrence{makeOccurrence(ev, start, duration, cfg.DisplayLocation)}
		return result
	}
	if freq != "WEEKLY" {
		result.Warning = &apperr.MalformedRecurrenceError{
			EventID: ev.ID,
			Reason:  fmt.Sprintf("unsupported frequency %q", ev.Frequency),
		}
		result.Occurrences = []Occurrence{makeOccurrence(ev, start, duration, cfg.DisplayLocation)}
		return result
	}

	opt := rrule.ROption{
		Freq:    rrule.WEEKLY,
		Dtstart: start,
	}
	if ev.RepeatCount != nil && *ev.RepeatCount > 0 {
		opt.Count = *ev.RepeatCount
	}
	if ev.RepeatUntil != nil {
		opt.Until = ev.RepeatUntil.In(loc)
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		result.Warning = &apperr.MalformedRecurrenceError{
			EventID: ev.ID,
			Reason:  fmt.Sprintf("rrule rejected: %v", err),
		}
		result.Occurrences = []Occurrence{makeOccurrence(ev, start, duration, cfg.DisplayLocation)}
		return result
	}

	out := make([]Occurrence, 0, 8)
	next := rule.Iterator()
	for {
		occStart, ok := next()
		if !ok {
			break
		}
		// rrule-go treats UNTIL as inclusive, matching RFC 5545; the guard
		// below only protects against drift in the library's boundary.
		if ev.RepeatUntil != nil && occStart.After(ev.RepeatUntil.In(loc)) {
			break
		}
		if len(out) >= cfg.MaxOccurrences {
			result.Truncated = true
			break
		}
		out = append(out, makeOccurrence(ev, occStart, duration, cfg.DisplayLocation))
	}

	result.Occurrences = out
	return result
}

// ExpandAll expands a set of events, concatenating occurrences and collecting
// per-event warnings/truncations.
type ExpandAllResult struct {
	Occurrences []Occurrence
	Truncated   []uuid.UUID
	Warnings    []*apperr.MalformedRecurrenceError
}

func ExpandAll(events []*types.ImportedEvent, cfg ExpandConfig) ExpandAllResult {
	var all ExpandAllResult
	for _, ev := range events {
		res := Expand(ev, cfg)
		all.Occurrences = append(all.Occurrences, res.Occurrences...)
		if res.Truncated {
			all.Truncated = append(all.Truncated, ev.ID)
		}
		if res.Warning != nil {
			all.Warnings = append(all.Warnings, res.Warning)
		}
	}
	return all
}

func makeOccurrence(ev *types.ImportedEvent, start time.Time, duration time.Duration, displayLoc *time.Location) Occurrence {
	return Occurrence{
		EventID:  ev.ID,
		Summary:  ev.Summary,
		Location: ev.Location,
		Start:    start.In(displayLoc),
		End:      start.Add(duration).In(displayLoc),
	}
}
