package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearthplan/homeplan-backend/internal/apperr"
	"github.com/hearthplan/homeplan-backend/internal/logger"
	"github.com/hearthplan/homeplan-backend/internal/repos"
	"github.com/hearthplan/homeplan-backend/internal/types"
)

// CatchUpConfig tunes redistribution. Zero values fall back to defaults via
// withDefaults so callers can set only what they care about.
type CatchUpConfig struct {
	// LookaheadDays bounds how far past `from` the planner searches.
	LookaheadDays int
	// MaxSessionsPerDay caps how many scheduled sessions a single day may hold.
	MaxSessionsPerDay int
	// DayStartMinute and DayEndMinute bound the placement window within a day.
	DayStartMinute int
	DayEndMinute   int
}

func (c CatchUpConfig) withDefaults() CatchUpConfig {
	if c.LookaheadDays <= 0 {
		c.LookaheadDays = 14
	}
	if c.MaxSessionsPerDay <= 0 {
		c.MaxSessionsPerDay = 8
	}
	if c.DayStartMinute <= 0 {
		c.DayStartMinute = 8 * 60
	}
	if c.DayEndMinute <= 0 || c.DayEndMinute > minutesPerDay {
		c.DayEndMinute = 20 * 60
	}
	return c
}

// Placement records one session the planner managed to reschedule.
type Placement struct {
	SessionID   uuid.UUID `json:"session_id"`
	Date        time.Time `json:"date"`
	DayOfWeek   int       `json:"day_of_week"`
	StartMinute int       `json:"start_minute"`
	EndMinute   int       `json:"end_minute"`
}

// PlacementReport is the full outcome of one redistribution run. Unplaced
// sessions stay skipped and keep their catch-up entries.
type PlacementReport struct {
	Placed   []Placement `json:"placed"`
	Unplaced []uuid.UUID `json:"unplaced"`
}

// CatchUpPlanner turns skipped sessions back into scheduled ones,
// oldest skip first, without ever double-booking a day.
type CatchUpPlanner interface {
	// Queue lists the child's pending catch-up entries, oldest skip first.
	Queue(ctx context.Context, childID uuid.UUID) ([]*types.CatchUpEntry, error)
	Redistribute(ctx context.Context, childID uuid.UUID, maxSessions int, from time.Time) (*PlacementReport, error)
}

type catchUpPlanner struct {
	db          *gorm.DB
	log         *logger.Logger
	cfg         CatchUpConfig
	childRepo   repos.ChildRepo
	sessionRepo repos.StudySessionRepo
	catchUpRepo repos.CatchUpEntryRepo
	index       CommitmentIndex
	capacity    CapacityService
	sessions    SessionService
}

func NewCatchUpPlanner(db *gorm.DB, baseLog *logger.Logger, cfg CatchUpConfig, childRepo repos.ChildRepo, sessionRepo repos.StudySessionRepo, catchUpRepo repos.CatchUpEntryRepo, index CommitmentIndex, capacity CapacityService, sessions SessionService) CatchUpPlanner {
	return &catchUpPlanner{
		db:          db,
		log:         baseLog.With("service", "CatchUpPlanner"),
		cfg:         cfg.withDefaults(),
		childRepo:   childRepo,
		sessionRepo: sessionRepo,
		catchUpRepo: catchUpRepo,
		index:       index,
		capacity:    capacity,
		sessions:    sessions,
	}
}

func (s *catchUpPlanner) Queue(ctx context.Context, childID uuid.UUID) ([]*types.CatchUpEntry, error) {
	if _, err := s.childRepo.GetByID(ctx, nil, childID); err != nil {
		return nil, err
	}
	return s.catchUpRepo.ListByChildOrdered(ctx, nil, childID)
}

func (s *catchUpPlanner) Redistribute(ctx context.Context, childID uuid.UUID, maxSessions int, from time.Time) (*PlacementReport, error) {
	if maxSessions <= 0 {
		return nil, apperr.Validation("max_sessions", "must be positive")
	}

	child, err := s.childRepo.GetByID(ctx, nil, childID)
	if err != nil {
		return nil, err
	}
	entries, err := s.catchUpRepo.ListByChildOrdered(ctx, nil, childID)
	if err != nil {
		return nil, err
	}
	from = startOfDay(from, child.Location())
	report := &PlacementReport{Placed: []Placement{}, Unplaced: []uuid.UUID{}}

	for _, entry := range entries {
		if len(report.Placed) >= maxSessions {
			report.Unplaced = append(report.Unplaced, entry.SessionID)
			continue
		}
		sess, err := s.sessionRepo.GetByID(ctx, nil, entry.SessionID)
		if err != nil {
			// The entry outlived its session; drop it and move on.
			if errors.As(err, new(*apperr.NotFoundError)) {
				s.log.Warn("catch-up entry without session, removing", "session_id", entry.SessionID)
				_ = s.catchUpRepo.FullDeleteBySessionID(ctx, nil, entry.SessionID)
				continue
			}
			return nil, err
		}
		if sess.Status != types.SessionSkipped {
			continue
		}

		placed, err := s.placeOne(ctx, child, sess, from)
		if err != nil {
			var cc *apperr.ConcurrencyConflictError
			if errors.As(err, &cc) {
				s.log.Warn("placement lost to a concurrent write", "session_id", sess.ID, "cause", cc.Cause)
				report.Unplaced = append(report.Unplaced, sess.ID)
				continue
			}
			return nil, err
		}
		if placed == nil {
			report.Unplaced = append(report.Unplaced, sess.ID)
			continue
		}
		report.Placed = append(report.Placed, *placed)
	}
	return report, nil
}

// placeOne scans days from `from` for the earliest slot that fits the session
// and applies the placement through the normal scheduling path. A nil, nil
// return means the lookahead window had no room.
func (s *catchUpPlanner) placeOne(ctx context.Context, child *types.Child, sess *types.StudySession, from time.Time) (*Placement, error) {
	need := sess.EstimatedMinutes
	if need <= 0 {
		return nil, apperr.Validation("estimated_minutes", "must be positive")
	}

	for offset := 0; offset < s.cfg.LookaheadDays; offset++ {
		date := from.AddDate(0, 0, offset)
		start, ok, err := s.openSlot(ctx, child, date, need)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		slot := ScheduleSlot{
			DayOfWeek:      isoWeekday(date),
			StartMinute:    start,
			EndMinute:      start + need,
			CommitmentType: types.CommitmentFlexible,
			Date:           &date,
		}
		if _, err := s.sessions.Schedule(ctx, sess.ID, slot, ScheduleOptions{}); err != nil {
			// Something claimed the slot between our scan and the write.
			var conflict *apperr.ConflictError
			if errors.As(err, &conflict) {
				return nil, &apperr.ConcurrencyConflictError{SessionID: sess.ID, Cause: err}
			}
			return nil, err
		}
		s.log.Info("placed catch-up session",
			"session_id", sess.ID,
			"date", date.Format("2006-01-02"),
			"start", FormatClock(slot.StartMinute),
			"end", FormatClock(slot.EndMinute),
		)
		return &Placement{
			SessionID:   sess.ID,
			Date:        date,
			DayOfWeek:   slot.DayOfWeek,
			StartMinute: slot.StartMinute,
			EndMinute:   slot.EndMinute,
		}, nil
	}
	return nil, nil
}

// openSlot finds the earliest start minute on date with `need` free minutes,
// respecting the day budget, the per-day session cap and every busy interval.
func (s *catchUpPlanner) openSlot(ctx context.Context, child *types.Child, date time.Time, need int) (int, bool, error) {
	day, err := s.capacity.Remaining(ctx, nil, child, date)
	if err != nil {
		return 0, false, err
	}
	if day.RemainingMinutes < need {
		return 0, false, nil
	}

	siblings, err := s.sessionRepo.ListOccupyingOnDay(ctx, nil, child.ID, isoWeekday(date))
	if err != nil {
		return 0, false, err
	}
	if len(siblings) >= s.cfg.MaxSessionsPerDay {
		return 0, false, nil
	}

	busy, err := s.index.DayIntervals(ctx, nil, child, date)
	if err != nil {
		return 0, false, err
	}
	taken := make([]Interval, 0, len(busy)+len(siblings))
	for _, b := range busy {
		taken = append(taken, b.Interval)
	}
	for _, sib := range siblings {
		if sib.StartMinute == nil || sib.EndMinute == nil {
			continue
		}
		taken = append(taken, Interval{Start: *sib.StartMinute, End: *sib.EndMinute})
	}
	taken = mergeIntervals(taken)

	cursor := s.cfg.DayStartMinute
	for _, iv := range taken {
		if iv.End <= cursor {
			continue
		}
		if iv.Start-cursor >= need {
			break
		}
		cursor = iv.End
	}
	if cursor+need > s.cfg.DayEndMinute {
		return 0, false, nil
	}
	return cursor, true, nil
}
