package services

import (
	"context"
	"testing"
	"time"
)

func TestWeekAdvisoriesCleanPlan(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustChild(t, 700)
	topic := env.mustTopic(t, "Fractions", "math", 30)
	env.mustScheduled(t, child, topic, 1, 540, 570)

	monday := nextWeekday(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 1)
	advisories, err := env.advisor.WeekAdvisories(context.Background(), child.ID, monday)
	if err != nil {
		t.Fatalf("advisories: %v", err)
	}
	if len(advisories) != 0 {
		t.Fatalf("advisories = %+v, want none", advisories)
	}
}

func TestWeekAdvisoriesOverBudget(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustChild(t, 700) // 100 minutes per day
	env.mustBlock(t, child, 2, 540, 700, "Co-op") // 160 minutes

	monday := nextWeekday(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 1)
	advisories, err := env.advisor.WeekAdvisories(context.Background(), child.ID, monday)
	if err != nil {
		t.Fatalf("advisories: %v", err)
	}
	if len(advisories) != 1 {
		t.Fatalf("advisories = %+v, want exactly one", advisories)
	}
	adv := advisories[0]
	if adv.Kind != AdvisoryOverBudget {
		t.Fatalf("kind = %q, want %q", adv.Kind, AdvisoryOverBudget)
	}
	if adv.DayOfWeek != 2 {
		t.Fatalf("day = %d, want 2", adv.DayOfWeek)
	}
}

func TestWeekAdvisoriesSubjectConcentration(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustChild(t, 4200) // 600 minutes per day, budget never trips
	math := env.mustTopic(t, "Fractions", "math", 30)
	english := env.mustTopic(t, "Reading", "english", 30)

	// Three math sessions on Wednesday crosses the default threshold of two;
	// the lone english session does not.
	env.mustScheduled(t, child, math, 3, 540, 570)
	env.mustScheduled(t, child, math, 3, 580, 610)
	env.mustScheduled(t, child, math, 3, 620, 650)
	env.mustScheduled(t, child, english, 3, 660, 690)

	monday := nextWeekday(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 1)
	advisories, err := env.advisor.WeekAdvisories(context.Background(), child.ID, monday)
	if err != nil {
		t.Fatalf("advisories: %v", err)
	}
	if len(advisories) != 1 {
		t.Fatalf("advisories = %+v, want exactly one", advisories)
	}
	adv := advisories[0]
	if adv.Kind != AdvisorySubjectConcentration {
		t.Fatalf("kind = %q, want %q", adv.Kind, AdvisorySubjectConcentration)
	}
	if adv.DayOfWeek != 3 {
		t.Fatalf("day = %d, want 3", adv.DayOfWeek)
	}
}
