package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/hearthplan/homeplan-backend/internal/apperr"
	"github.com/hearthplan/homeplan-backend/internal/logger"
	"github.com/hearthplan/homeplan-backend/internal/repos"
	"github.com/hearthplan/homeplan-backend/internal/types"
)

// ChildInput is the write shape for a child profile. DayBudgetOverrides is
// keyed by ISO weekday ("1" through "7"), values in minutes.
type ChildInput struct {
	Name                string         `json:"name"`
	WeeklyBudgetMinutes int            `json:"weekly_budget_minutes"`
	DayBudgetOverrides  map[string]int `json:"day_budget_overrides,omitempty"`
	Timezone            string         `json:"timezone"`
}

type ChildService interface {
	Create(ctx context.Context, in ChildInput) (*types.Child, error)
	Get(ctx context.Context, childID uuid.UUID) (*types.Child, error)
	Update(ctx context.Context, childID uuid.UUID, in ChildInput) (*types.Child, error)
	List(ctx context.Context) ([]*types.Child, error)
}

type childService struct {
	log       *logger.Logger
	childRepo repos.ChildRepo
	index     CommitmentIndex
}

func NewChildService(baseLog *logger.Logger, childRepo repos.ChildRepo, index CommitmentIndex) ChildService {
	return &childService{
		log:       baseLog.With("service", "ChildService"),
		childRepo: childRepo,
		index:     index,
	}
}

func validateChildInput(in ChildInput) error {
	if in.Name == "" {
		return apperr.Validation("name", "required")
	}
	if in.WeeklyBudgetMinutes <= 0 {
		return apperr.Validation("weekly_budget_minutes", "must be positive")
	}
	for day, minutes := range in.DayBudgetOverrides {
		if len(day) != 1 || day[0] < '1' || day[0] > '7' {
			return apperr.Validation("day_budget_overrides", "keys must be 1 through 7")
		}
		if minutes < 0 || minutes > minutesPerDay {
			return apperr.Validation("day_budget_overrides", "values must fit within a day")
		}
	}
	if in.Timezone != "" {
		if _, err := time.LoadLocation(in.Timezone); err != nil {
			return apperr.Validation("timezone", "unknown IANA zone "+in.Timezone)
		}
	}
	return nil
}

func overridesJSON(in map[string]int) (datatypes.JSON, error) {
	if len(in) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func (s *childService) Create(ctx context.Context, in ChildInput) (*types.Child, error) {
	if err := validateChildInput(in); err != nil {
		return nil, err
	}
	overrides, err := overridesJSON(in.DayBudgetOverrides)
	if err != nil {
		return nil, err
	}
	row := &types.Child{
		Name:                in.Name,
		WeeklyBudgetMinutes: in.WeeklyBudgetMinutes,
		DayBudgetOverrides:  overrides,
		Timezone:            in.Timezone,
	}
	return s.childRepo.Create(ctx, nil, row)
}

func (s *childService) Get(ctx context.Context, childID uuid.UUID) (*types.Child, error) {
	return s.childRepo.GetByID(ctx, nil, childID)
}

func (s *childService) Update(ctx context.Context, childID uuid.UUID, in ChildInput) (*types.Child, error) {
	if err := validateChildInput(in); err != nil {
		return nil, err
	}
	row, err := s.childRepo.GetByID(ctx, nil, childID)
	if err != nil {
		return nil, err
	}
	overrides, err := overridesJSON(in.DayBudgetOverrides)
	if err != nil {
		return nil, err
	}
	row.Name = in.Name
	row.WeeklyBudgetMinutes = in.WeeklyBudgetMinutes
	row.DayBudgetOverrides = overrides
	row.Timezone = in.Timezone
	if err := s.childRepo.Update(ctx, nil, row); err != nil {
		return nil, err
	}
	// Timezone changes shift where occurrence boundaries land.
	s.index.Invalidate(ctx, row.ID)
	return row, nil
}

func (s *childService) List(ctx context.Context) ([]*types.Child, error) {
	return s.childRepo.List(ctx, nil)
}
