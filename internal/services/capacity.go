package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/hearthplan/homeplan-backend/internal/logger"
	"github.com/hearthplan/homeplan-backend/internal/repos"
	"github.com/hearthplan/homeplan-backend/internal/types"
)

// DayCapacity is one day's remaining learning minutes after fixed
// commitments and scheduled sessions are subtracted from the budget.
type DayCapacity struct {
	Date             time.Time `json:"date"`
	DayOfWeek        int       `json:"day_of_week"`
	BudgetMinutes    int       `json:"budget_minutes"`
	CommittedMinutes int       `json:"committed_minutes"`
	RemainingMinutes int       `json:"remaining_minutes"`
}

type CapacityService interface {
	// DayBudget resolves the configured budget for one weekday: the per-day
	// override when present, else the weekly budget split evenly.
	DayBudget(child *types.Child, dayOfWeek int) int
	// Remaining computes a single day's capacity against an explicit date.
	Remaining(ctx context.Context, tx *gorm.DB, child *types.Child, date time.Time) (DayCapacity, error)
	// Week computes capacity for the seven days starting at weekStart.
	Week(ctx context.Context, tx *gorm.DB, child *types.Child, weekStart time.Time) ([]DayCapacity, error)
}

type capacityService struct {
	log         *logger.Logger
	index       CommitmentIndex
	sessionRepo repos.StudySessionRepo
}

func NewCapacityService(baseLog *logger.Logger, index CommitmentIndex, sessionRepo repos.StudySessionRepo) CapacityService {
	return &capacityService{
		log:         baseLog.With("service", "CapacityService"),
		index:       index,
		sessionRepo: sessionRepo,
	}
}

func (s *capacityService) DayBudget(child *types.Child, dayOfWeek int) int {
	if child == nil {
		return 0
	}
	if len(child.DayBudgetOverrides) > 0 {
		var overrides map[string]int
		if err := json.Unmarshal(child.DayBudgetOverrides, &overrides); err == nil {
			if v, ok := overrides[strconv.Itoa(dayOfWeek)]; ok {
				return v
			}
		}
	}
	return child.WeeklyBudgetMinutes / 7
}

func (s *capacityService) Remaining(ctx context.Context, tx *gorm.DB, child *types.Child, date time.Time) (DayCapacity, error) {
	date = date.In(child.Location())
	day := isoWeekday(date)

	busyMinutes, err := s.index.BusyMinutes(ctx, tx, child, date)
	if err != nil {
		return DayCapacity{}, err
	}

	scheduled, err := s.sessionRepo.ListOccupyingOnDay(ctx, tx, child.ID, day)
	if err != nil {
		return DayCapacity{}, err
	}
	sessionMinutes := 0
	for _, sess := range scheduled {
		sessionMinutes += sess.SlotMinutes()
	}

	budget := s.DayBudget(child, day)
	committed := busyMinutes + sessionMinutes
	remaining := budget - committed
	if remaining < 0 {
		// Over-commitment is surfaced by the advisor, not here.
		remaining = 0
	}
	return DayCapacity{
		Date:             date,
		DayOfWeek:        day,
		BudgetMinutes:    budget,
		CommittedMinutes: committed,
		RemainingMinutes: remaining,
	}, nil
}

func (s *capacityService) Week(ctx context.Context, tx *gorm.DB, child *types.Child, weekStart time.Time) ([]DayCapacity, error) {
	out := make([]DayCapacity, 0, 7)
	for i := 0; i < 7; i++ {
		day, err := s.Remaining(ctx, tx, child, weekStart.AddDate(0, 0, i))
		if err != nil {
			return nil, err
		}
		out = append(out, day)
	}
	return out, nil
}
