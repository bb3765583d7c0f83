package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hearthplan/homeplan-backend/internal/apperr"
	"github.com/hearthplan/homeplan-backend/internal/types"
)

func TestCheckAgainstTimeBlocks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	child := env.mustChild(t, 700)
	env.mustBlock(t, child, 1, 540, 600, "Piano")

	cases := []struct {
		name     string
		cand     SlotCandidate
		conflict bool
	}{
		{"overlapping_start", SlotCandidate{DayOfWeek: 1, StartMinute: 570, EndMinute: 615}, true},
		{"contained", SlotCandidate{DayOfWeek: 1, StartMinute: 550, EndMinute: 590}, true},
		{"touching_end_is_free", SlotCandidate{DayOfWeek: 1, StartMinute: 600, EndMinute: 660}, false},
		{"touching_start_is_free", SlotCandidate{DayOfWeek: 1, StartMinute: 480, EndMinute: 540}, false},
		{"other_day", SlotCandidate{DayOfWeek: 2, StartMinute: 540, EndMinute: 600}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := env.conflicts.Check(ctx, nil, child, tc.cand)
			if tc.conflict {
				var conflict *apperr.ConflictError
				if !errors.As(err, &conflict) {
					t.Fatalf("err = %v, want ConflictError", err)
				}
				if conflict.Label != "Piano" {
					t.Fatalf("label = %q, want Piano", conflict.Label)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCheckValidatesCandidate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	child := env.mustChild(t, 700)

	cases := []struct {
		name string
		cand SlotCandidate
	}{
		{"day_too_small", SlotCandidate{DayOfWeek: 0, StartMinute: 540, EndMinute: 600}},
		{"day_too_large", SlotCandidate{DayOfWeek: 8, StartMinute: 540, EndMinute: 600}},
		{"negative_start", SlotCandidate{DayOfWeek: 1, StartMinute: -10, EndMinute: 60}},
		{"past_midnight", SlotCandidate{DayOfWeek: 1, StartMinute: 1400, EndMinute: 1500}},
		{"end_before_start", SlotCandidate{DayOfWeek: 1, StartMinute: 600, EndMinute: 540}},
		{"zero_length", SlotCandidate{DayOfWeek: 1, StartMinute: 600, EndMinute: 600}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := env.conflicts.Check(ctx, nil, child, tc.cand)
			if !errors.As(err, new(*apperr.ValidationError)) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestCheckDateMustMatchWeekday(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	child := env.mustChild(t, 700)

	tuesday := nextWeekday(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 2)

	err := env.conflicts.Check(ctx, nil, child, SlotCandidate{
		DayOfWeek: 1, StartMinute: 540, EndMinute: 600, Date: &tuesday,
	})
	if !errors.As(err, new(*apperr.ValidationError)) {
		t.Fatalf("err = %v, want ValidationError for mismatched date", err)
	}

	err = env.conflicts.Check(ctx, nil, child, SlotCandidate{
		DayOfWeek: 2, StartMinute: 540, EndMinute: 600, Date: &tuesday,
	})
	if err != nil {
		t.Fatalf("consistent pair rejected: %v", err)
	}
}

func TestCheckAgainstSiblingSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	child := env.mustChild(t, 700)
	topic := env.mustTopic(t, "Writing", "english", 60)
	sess := env.mustScheduled(t, child, topic, 2, 540, 600)

	err := env.conflicts.Check(ctx, nil, child, SlotCandidate{DayOfWeek: 2, StartMinute: 570, EndMinute: 630})
	var conflict *apperr.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if conflict.EntityKind != "session" {
		t.Fatalf("kind = %q, want session", conflict.EntityKind)
	}

	// A session never conflicts with its own current slot.
	err = env.conflicts.Check(ctx, nil, child, SlotCandidate{
		DayOfWeek: 2, StartMinute: 570, EndMinute: 630, ExcludeSessionID: sess.ID,
	})
	if err != nil {
		t.Fatalf("self-overlap excluded: %v", err)
	}
}

func TestCheckSkippedOccupiesOnlyItsDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	child := env.mustChild(t, 700)
	topic := env.mustTopic(t, "Music", "arts", 60)

	sess := env.mustScheduled(t, child, topic, 3, 540, 600)
	skipDate := nextWeekday(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 3)
	if _, err := env.sessions.Skip(ctx, sess.ID, skipDate, "field trip"); err != nil {
		t.Fatalf("skip: %v", err)
	}

	// The weekly pattern slot is free again.
	if err := env.conflicts.Check(ctx, nil, child, SlotCandidate{DayOfWeek: 3, StartMinute: 540, EndMinute: 600}); err != nil {
		t.Fatalf("pattern slot should be free after skip: %v", err)
	}

	// The historical date itself still reflects the skipped session.
	err := env.conflicts.Check(ctx, nil, child, SlotCandidate{
		DayOfWeek: 3, StartMinute: 540, EndMinute: 600, Date: &skipDate,
	})
	if !errors.As(err, new(*apperr.ConflictError)) {
		t.Fatalf("err = %v, want ConflictError on the skip date", err)
	}
}

func TestCheckAgainstImportedOccurrences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	child := env.mustChild(t, 700)

	count := 10
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) // a Monday
	_, err := env.eventRepo.Create(ctx, nil, []*types.ImportedEvent{{
		ChildID:     child.ID,
		Summary:     "Swim practice",
		DTStart:     start,
		DTEnd:       start.Add(time.Hour),
		Frequency:   "WEEKLY",
		RepeatCount: &count,
		Timezone:    "UTC",
	}})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	err = env.conflicts.Check(ctx, nil, child, SlotCandidate{DayOfWeek: 1, StartMinute: 570, EndMinute: 630})
	var conflict *apperr.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if conflict.Label != "Swim practice" {
		t.Fatalf("label = %q, want Swim practice", conflict.Label)
	}
}
