package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearthplan/homeplan-backend/internal/apperr"
	"github.com/hearthplan/homeplan-backend/internal/logger"
	"github.com/hearthplan/homeplan-backend/internal/repos"
	"github.com/hearthplan/homeplan-backend/internal/types"
)

// SlotCandidate is a proposed occupancy for a child: a weekly day-of-week
// slot, optionally pinned to an absolute date (redistribution placements).
type SlotCandidate struct {
	DayOfWeek   int
	StartMinute int
	EndMinute   int
	// Date, when set, is the concrete day the slot lands on; skipped sessions
	// only collide on their historical absolute date.
	Date *time.Time
	// ExcludeSessionID skips the session being moved when re-checking its own
	// child's sessions.
	ExcludeSessionID uuid.UUID
}

// ConflictDetector answers whether a candidate slot overlaps any fixed
// commitment or occupying session of the same child. It is a pure check over
// the persisted state plus its inputs; it mutates nothing.
type ConflictDetector interface {
	Check(ctx context.Context, tx *gorm.DB, child *types.Child, cand SlotCandidate) error
}

type conflictDetector struct {
	log         *logger.Logger
	index       CommitmentIndex
	sessionRepo repos.StudySessionRepo
}

func NewConflictDetector(baseLog *logger.Logger, index CommitmentIndex, sessionRepo repos.StudySessionRepo) ConflictDetector {
	return &conflictDetector{
		log:         baseLog.With("service", "ConflictDetector"),
		index:       index,
		sessionRepo: sessionRepo,
	}
}

// Check reports the first collision found: fixed commitments first, then the
// child's other scheduled/skipped sessions on the same day.
func (s *conflictDetector) Check(ctx context.Context, tx *gorm.DB, child *types.Child, cand SlotCandidate) error {
	if err := validateCandidate(cand); err != nil {
		return err
	}
	// An absolute date and the weekly slot must describe the same day, or
	// the commitment check and the sibling check would look at different
	// days than the slot the write persists.
	if cand.Date != nil && isoWeekday(startOfDay(*cand.Date, child.Location())) != cand.DayOfWeek {
		return apperr.Validation("date", "does not fall on day_of_week")
	}

	var busy []BusyInterval
	var err error
	if cand.Date != nil {
		busy, err = s.index.DayIntervals(ctx, tx, child, *cand.Date)
	} else {
		busy, err = s.index.WeekdayIntervals(ctx, tx, child, cand.DayOfWeek)
	}
	if err != nil {
		return err
	}
	for _, b := range busy {
		if intervalsOverlap(cand.StartMinute, cand.EndMinute, b.Start, b.End) {
			return &apperr.ConflictError{EntityKind: b.SourceKind, EntityID: b.SourceID, Label: b.Label}
		}
	}

	siblings, err := s.sessionRepo.ListOccupyingOnDay(ctx, tx, child.ID, cand.DayOfWeek)
	if err != nil {
		return err
	}
	// A skipped session occupies only its historical absolute date, not the
	// weekly pattern going forward.
	if cand.Date != nil {
		dayStart := startOfDay(*cand.Date, child.Location())
		skipped, err := s.sessionRepo.ListSkippedOnDate(ctx, tx, child.ID, dayStart, dayStart.AddDate(0, 0, 1))
		if err != nil {
			return err
		}
		siblings = append(siblings, skipped...)
	}
	for _, other := range siblings {
		if other.ID == cand.ExcludeSessionID {
			continue
		}
		if other.StartMinute == nil || other.EndMinute == nil {
			continue
		}
		if intervalsOverlap(cand.StartMinute, cand.EndMinute, *other.StartMinute, *other.EndMinute) {
			return &apperr.ConflictError{EntityKind: "session", EntityID: other.ID}
		}
	}
	return nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func validateCandidate(cand SlotCandidate) error {
	if cand.DayOfWeek < 1 || cand.DayOfWeek > 7 {
		return apperr.Validation("day_of_week", "must be 1 through 7")
	}
	if cand.StartMinute < 0 || cand.EndMinute > 24*60 {
		return apperr.Validation("time", "slot must fall within the day")
	}
	if cand.EndMinute <= cand.StartMinute {
		return apperr.Validation("end_time", "must be after start_time")
	}
	return nil
}
