package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hearthplan/homeplan-backend/internal/logger"
	"github.com/hearthplan/homeplan-backend/internal/repos"
	"github.com/hearthplan/homeplan-backend/internal/types"
)

const (
	AdvisoryOverBudget           = "over_budget"
	AdvisorySubjectConcentration = "subject_concentration"
)

// Advisory is a non-blocking quality signal about one day of the plan.
// Advisories never stop a write; they exist to be shown to the planner.
type Advisory struct {
	Kind      string    `json:"kind"`
	Date      time.Time `json:"date"`
	DayOfWeek int       `json:"day_of_week"`
	Message   string    `json:"message"`
}

// AdvisorConfig tunes the heuristics.
type AdvisorConfig struct {
	// MaxSameSubjectPerDay is the largest same-subject session count a day may
	// hold before a concentration advisory fires.
	MaxSameSubjectPerDay int
}

func (c AdvisorConfig) withDefaults() AdvisorConfig {
	if c.MaxSameSubjectPerDay <= 0 {
		c.MaxSameSubjectPerDay = 2
	}
	return c
}

type AdvisorService interface {
	WeekAdvisories(ctx context.Context, childID uuid.UUID, weekStart time.Time) ([]Advisory, error)
}

type advisorService struct {
	log         *logger.Logger
	cfg         AdvisorConfig
	childRepo   repos.ChildRepo
	topicRepo   repos.TopicRepo
	sessionRepo repos.StudySessionRepo
	capacity    CapacityService
}

func NewAdvisorService(baseLog *logger.Logger, cfg AdvisorConfig, childRepo repos.ChildRepo, topicRepo repos.TopicRepo, sessionRepo repos.StudySessionRepo, capacity CapacityService) AdvisorService {
	return &advisorService{
		log:         baseLog.With("service", "AdvisorService"),
		cfg:         cfg.withDefaults(),
		childRepo:   childRepo,
		topicRepo:   topicRepo,
		sessionRepo: sessionRepo,
		capacity:    capacity,
	}
}

func (s *advisorService) WeekAdvisories(ctx context.Context, childID uuid.UUID, weekStart time.Time) ([]Advisory, error) {
	child, err := s.childRepo.GetByID(ctx, nil, childID)
	if err != nil {
		return nil, err
	}
	weekStart = startOfDay(weekStart, child.Location())

	advisories := []Advisory{}

	week, err := s.capacity.Week(ctx, nil, child, weekStart)
	if err != nil {
		return nil, err
	}
	for _, day := range week {
		if day.CommittedMinutes <= day.BudgetMinutes {
			continue
		}
		advisories = append(advisories, Advisory{
			Kind:      AdvisoryOverBudget,
			Date:      day.Date,
			DayOfWeek: day.DayOfWeek,
			Message: fmt.Sprintf("%d committed minutes exceed the %d minute budget",
				day.CommittedMinutes, day.BudgetMinutes),
		})
	}

	concentration, err := s.subjectConcentration(ctx, child, weekStart)
	if err != nil {
		return nil, err
	}
	advisories = append(advisories, concentration...)

	return advisories, nil
}

// subjectConcentration flags days where too many scheduled sessions share one
// subject, which tends to produce diminishing returns for younger learners.
func (s *advisorService) subjectConcentration(ctx context.Context, child *types.Child, weekStart time.Time) ([]Advisory, error) {
	sessions, err := s.sessionRepo.ListByChildStatuses(ctx, nil, child.ID, []types.SessionStatus{types.SessionScheduled})
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	topicIDs := make([]uuid.UUID, 0, len(sessions))
	seen := map[uuid.UUID]bool{}
	for _, sess := range sessions {
		if !seen[sess.TopicID] {
			seen[sess.TopicID] = true
			topicIDs = append(topicIDs, sess.TopicID)
		}
	}
	topics, err := s.topicRepo.GetByIDs(ctx, nil, topicIDs)
	if err != nil {
		return nil, err
	}
	subjectOf := make(map[uuid.UUID]string, len(topics))
	for _, t := range topics {
		subjectOf[t.ID] = t.Subject
	}

	// day -> subject -> count
	counts := map[int]map[string]int{}
	for _, sess := range sessions {
		if sess.DayOfWeek == nil {
			continue
		}
		subject := subjectOf[sess.TopicID]
		if subject == "" {
			continue
		}
		if counts[*sess.DayOfWeek] == nil {
			counts[*sess.DayOfWeek] = map[string]int{}
		}
		counts[*sess.DayOfWeek][subject]++
	}

	advisories := []Advisory{}
	for day := 1; day <= 7; day++ {
		for subject, n := range counts[day] {
			if n <= s.cfg.MaxSameSubjectPerDay {
				continue
			}
			offset := (day - isoWeekday(weekStart) + 7) % 7
			advisories = append(advisories, Advisory{
				Kind:      AdvisorySubjectConcentration,
				Date:      weekStart.AddDate(0, 0, offset),
				DayOfWeek: day,
				Message:   fmt.Sprintf("%d %s sessions on one day", n, subject),
			})
		}
	}
	return advisories, nil
}
