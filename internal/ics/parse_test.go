package ics

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

const weeklyPianoICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//hearthplan//test//EN
BEGIN:VEVENT
UID:piano-1@example.com
DTSTART:20240902T150000Z
DTEND:20240902T154500Z
RRULE:FREQ=WEEKLY;COUNT=10
SUMMARY:Piano
LOCATION:Community hall
END:VEVENT
BEGIN:VEVENT
UID:dentist-1@example.com
DTSTART:20241001T133000Z
DTEND:20241001T140000Z
SUMMARY:Dentist
END:VEVENT
END:VCALENDAR
`

func TestParseWeeklyCalendar(t *testing.T) {
	childID := uuid.New()
	events, err := Parse(childID, []byte(weeklyPianoICS), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	piano := events[0]
	if piano.Summary != "Piano" {
		t.Fatalf("summary %q, want Piano", piano.Summary)
	}
	if piano.ChildID != childID {
		t.Fatalf("child id %s, want %s", piano.ChildID, childID)
	}
	if piano.Frequency != "WEEKLY" {
		t.Fatalf("frequency %q, want WEEKLY", piano.Frequency)
	}
	if piano.RepeatCount == nil || *piano.RepeatCount != 10 {
		t.Fatalf("repeat count %v, want 10", piano.RepeatCount)
	}
	wantStart := time.Date(2024, 9, 2, 15, 0, 0, 0, time.UTC)
	if !piano.DTStart.Equal(wantStart) {
		t.Fatalf("dtstart %s, want %s", piano.DTStart, wantStart)
	}
	if got := piano.DTEnd.Sub(piano.DTStart); got != 45*time.Minute {
		t.Fatalf("duration %s, want 45m", got)
	}

	dentist := events[1]
	if dentist.Frequency != "" {
		t.Fatalf("non-recurring event got frequency %q", dentist.Frequency)
	}
	if dentist.RepeatCount != nil || dentist.RepeatUntil != nil {
		t.Fatal("non-recurring event should have no repeat bounds")
	}
}

func TestParseKeepsUnsupportedFrequency(t *testing.T) {
	payload := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//hearthplan//test//EN
BEGIN:VEVENT
UID:drills@example.com
DTSTART:20240902T090000Z
DTEND:20240902T093000Z
RRULE:FREQ=DAILY;COUNT=5
SUMMARY:Drills
END:VEVENT
END:VCALENDAR
`
	events, err := Parse(uuid.New(), []byte(payload), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Frequency != "DAILY" {
		t.Fatalf("frequency %q, want DAILY carried through for the expander", events[0].Frequency)
	}
}

func TestParseEmptyPayload(t *testing.T) {
	if _, err := Parse(uuid.New(), nil, nil); err == nil {
		t.Fatal("empty payload should error")
	}
}
