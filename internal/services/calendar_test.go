package services

import (
	"context"
	"errors"
	"testing"

	"github.com/hearthplan/homeplan-backend/internal/apperr"
)

const weeklySwimICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//hearthplan//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:swim-1\r\n" +
	"SUMMARY:Swim practice\r\n" +
	"DTSTART:20260302T090000Z\r\n" +
	"DTEND:20260302T100000Z\r\n" +
	"RRULE:FREQ=WEEKLY;COUNT=8\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestCreateTimeBlockValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	child := env.mustChild(t, 700)

	cases := []struct {
		name string
		in   TimeBlockInput
	}{
		{"bad_day", TimeBlockInput{DayOfWeek: 0, StartMinute: 540, EndMinute: 600, Label: "x"}},
		{"inverted", TimeBlockInput{DayOfWeek: 1, StartMinute: 600, EndMinute: 540, Label: "x"}},
		{"missing_label", TimeBlockInput{DayOfWeek: 1, StartMinute: 540, EndMinute: 600}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.calendar.CreateTimeBlock(ctx, child.ID, tc.in); !errors.As(err, new(*apperr.ValidationError)) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestCreateTimeBlockAcceptsClockStrings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	child := env.mustChild(t, 700)

	block, err := env.calendar.CreateTimeBlock(ctx, child.ID, TimeBlockInput{
		DayOfWeek: 1,
		StartTime: "09:00",
		EndTime:   "10:30",
		Label:     "Piano",
	})
	if err != nil {
		t.Fatalf("create block: %v", err)
	}
	if block.StartMinute != 540 || block.EndMinute != 630 {
		t.Fatalf("block = %d-%d, want 540-630", block.StartMinute, block.EndMinute)
	}

	if _, err := env.calendar.CreateTimeBlock(ctx, child.ID, TimeBlockInput{
		DayOfWeek: 1,
		StartTime: "9am",
		EndTime:   "10:00",
		Label:     "Piano",
	}); err == nil {
		t.Fatalf("want error for a malformed clock string")
	}
}

func TestImportICSAndOccurrences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	child := env.mustChild(t, 700)

	report, err := env.calendar.ImportICS(ctx, child.ID, []byte(weeklySwimICS))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(report.Events) != 1 {
		t.Fatalf("events = %d, want 1", len(report.Events))
	}
	ev := report.Events[0]
	if ev.Summary != "Swim practice" || ev.Frequency != "WEEKLY" {
		t.Fatalf("event = %+v", ev)
	}

	listing, err := env.calendar.Occurrences(ctx, child.ID)
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if len(listing.Occurrences) != 8 {
		t.Fatalf("occurrences = %d, want COUNT=8", len(listing.Occurrences))
	}
	first := listing.Occurrences[0]
	if first.DayOfWeek() != 1 {
		t.Fatalf("first occurrence day = %d, want Monday", first.DayOfWeek())
	}
	if first.StartMinute() != 9*60 {
		t.Fatalf("first occurrence start = %d, want 540", first.StartMinute())
	}
}

const dailyDrillsICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//hearthplan//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:drills-1\r\n" +
	"SUMMARY:Math drills\r\n" +
	"DTSTART:20260302T090000Z\r\n" +
	"DTEND:20260302T091500Z\r\n" +
	"RRULE:FREQ=DAILY;COUNT=30\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestImportICSRecordsRecurrenceWarning(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	child := env.mustChild(t, 700)

	report, err := env.calendar.ImportICS(ctx, child.ID, []byte(dailyDrillsICS))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one for the unsupported frequency", report.Warnings)
	}

	events, err := env.calendar.ListImportedEvents(ctx, child.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].RecurrenceWarning == nil {
		t.Fatalf("warning must be persisted on the event")
	}

	// The degraded rule still yields its single fallback occurrence.
	listing, err := env.calendar.Occurrences(ctx, child.ID)
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if len(listing.Occurrences) != 1 {
		t.Fatalf("occurrences = %d, want the single fallback", len(listing.Occurrences))
	}
}

func TestDeleteTimeBlockFreesSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	child := env.mustChild(t, 700)
	block := env.mustBlock(t, child, 1, 540, 600, "Piano")

	cand := SlotCandidate{DayOfWeek: 1, StartMinute: 540, EndMinute: 600}
	if err := env.conflicts.Check(ctx, nil, child, cand); !errors.As(err, new(*apperr.ConflictError)) {
		t.Fatalf("err = %v, want ConflictError before delete", err)
	}

	if err := env.calendar.DeleteTimeBlock(ctx, block.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := env.conflicts.Check(ctx, nil, child, cand); err != nil {
		t.Fatalf("slot should be free after delete: %v", err)
	}
}
