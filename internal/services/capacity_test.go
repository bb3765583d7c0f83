package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestRemainingFullBudgetWhenEmpty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	child := env.mustChild(t, 700)

	monday := nextWeekday(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 1)
	day, err := env.capacity.Remaining(ctx, nil, child, monday)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if day.BudgetMinutes != 100 {
		t.Fatalf("budget = %d, want 700/7 = 100", day.BudgetMinutes)
	}
	if day.CommittedMinutes != 0 {
		t.Fatalf("committed = %d, want 0", day.CommittedMinutes)
	}
	if day.RemainingMinutes != 100 {
		t.Fatalf("remaining = %d, want 100", day.RemainingMinutes)
	}
}

func TestRemainingSubtractsCommitmentsAndSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	child := env.mustChild(t, 700)
	topic := env.mustTopic(t, "Algebra", "math", 30)

	env.mustBlock(t, child, 1, 540, 600, "Piano")
	env.mustScheduled(t, child, topic, 1, 660, 690)

	monday := nextWeekday(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 1)
	day, err := env.capacity.Remaining(ctx, nil, child, monday)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if day.CommittedMinutes != 90 {
		t.Fatalf("committed = %d, want 60 block + 30 session = 90", day.CommittedMinutes)
	}
	if day.RemainingMinutes != 10 {
		t.Fatalf("remaining = %d, want 10", day.RemainingMinutes)
	}
}

func TestRemainingClampsAtZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	child := env.mustChild(t, 70)

	env.mustBlock(t, child, 2, 540, 720, "Co-op morning")

	tuesday := nextWeekday(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 2)
	day, err := env.capacity.Remaining(ctx, nil, child, tuesday)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if day.RemainingMinutes != 0 {
		t.Fatalf("remaining = %d, want clamp at 0", day.RemainingMinutes)
	}
	if day.CommittedMinutes != 180 {
		t.Fatalf("committed = %d, want the real 180", day.CommittedMinutes)
	}
}

func TestDayBudgetOverrides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	child := env.mustChild(t, 700)

	raw, err := json.Marshal(map[string]int{"6": 0, "7": 30})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	child.DayBudgetOverrides = datatypes.JSON(raw)
	if err := env.childRepo.Update(ctx, nil, child); err != nil {
		t.Fatalf("update child: %v", err)
	}

	if got := env.capacity.DayBudget(child, 6); got != 0 {
		t.Fatalf("saturday budget = %d, want override 0", got)
	}
	if got := env.capacity.DayBudget(child, 7); got != 30 {
		t.Fatalf("sunday budget = %d, want override 30", got)
	}
	if got := env.capacity.DayBudget(child, 1); got != 100 {
		t.Fatalf("monday budget = %d, want weekly fallback 100", got)
	}
}

func TestDoubleBookedCommitmentsCountOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	child := env.mustChild(t, 700)

	env.mustBlock(t, child, 3, 540, 600, "Piano")
	env.mustBlock(t, child, 3, 570, 630, "Tutoring")

	wednesday := nextWeekday(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 3)
	day, err := env.capacity.Remaining(ctx, nil, child, wednesday)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if day.CommittedMinutes != 90 {
		t.Fatalf("committed = %d, want union 90 not sum 120", day.CommittedMinutes)
	}
}
