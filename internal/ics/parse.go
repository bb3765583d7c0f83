package ics

import (
	"bytes"
	"errors"
	"strings"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/hearthplan/homeplan-backend/internal/logger"
	"github.com/hearthplan/homeplan-backend/internal/types"
)

// Parse reads a calendar-file payload and normalizes each VEVENT into an
// ImportedEvent for the given child. Recurrence fields are extracted here;
// expansion happens in internal/recurrence.
//
// A VEVENT that cannot be normalized (missing DTSTART/DTEND) is skipped with
// a warning so one bad event does not fail the whole import. A recurrence
// rule with an unsupported frequency is kept as-is; the expander degrades it
// to a single occurrence and records the warning against the event.
func Parse(childID uuid.UUID, body []byte, log *logger.Logger) ([]*types.ImportedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty calendar payload")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]*types.ImportedEvent, 0)
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(childID, ve)
		if perr != nil {
			if log != nil {
				log.Warn("skipping unparseable vevent", "child_id", childID, "error", perr)
			}
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseVEvent(childID uuid.UUID, ve *ical.VEvent) (*types.ImportedEvent, error) {
	out := &types.ImportedEvent{ChildID: childID, Timezone: "UTC"}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return nil, errors.New("missing or invalid DTSTART")
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return nil, errors.New("missing or invalid DTEND")
	}
	out.DTStart = start
	out.DTEnd = end

	// TZID rides on the DTSTART parameters when the event is zone-local.
	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		if params := p.ICalParameters; params != nil {
			if tzs, ok := params["TZID"]; ok && len(tzs) > 0 {
				out.Timezone = tzs[0]
			}
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil && p.Value != "" {
		applyRRule(out, p.Value)
	}

	return out, nil
}

// applyRRule maps the raw RRULE onto the ImportedEvent's recurrence fields.
// When the rule cannot be parsed at all, the raw FREQ token is still carried
// through so the expander can report the malformation against the event.
func applyRRule(out *types.ImportedEvent, raw string) {
	opt, err := rrule.StrToROption(raw)
	if err != nil {
		out.Frequency = rawFreq(raw)
		return
	}
	out.Frequency = freqName(opt.Freq)
	if opt.Count > 0 {
		c := opt.Count
		out.RepeatCount = &c
	}
	if !opt.Until.IsZero() {
		u := opt.Until
		out.RepeatUntil = &u
	}
}

func freqName(f rrule.Frequency) string {
	switch f {
	case rrule.YEARLY:
		return "YEARLY"
	case rrule.MONTHLY:
		return "MONTHLY"
	case rrule.WEEKLY:
		return "WEEKLY"
	case rrule.DAILY:
		return "DAILY"
	case rrule.HOURLY:
		return "HOURLY"
	case rrule.MINUTELY:
		return "MINUTELY"
	case rrule.SECONDLY:
		return "SECONDLY"
	}
	return "UNKNOWN"
}

func rawFreq(raw string) string {
	for _, part := range strings.Split(raw, ";") {
		if k, v, ok := strings.Cut(part, "="); ok && strings.EqualFold(strings.TrimSpace(k), "FREQ") {
			return strings.ToUpper(strings.TrimSpace(v))
		}
	}
	return "UNKNOWN"
}
