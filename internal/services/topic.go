package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/hearthplan/homeplan-backend/internal/apperr"
	"github.com/hearthplan/homeplan-backend/internal/logger"
	"github.com/hearthplan/homeplan-backend/internal/repos"
	"github.com/hearthplan/homeplan-backend/internal/types"
)

type TopicInput struct {
	Name             string `json:"name"`
	Subject          string `json:"subject"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

type TopicService interface {
	Create(ctx context.Context, in TopicInput) (*types.Topic, error)
	Get(ctx context.Context, topicID uuid.UUID) (*types.Topic, error)
	List(ctx context.Context) ([]*types.Topic, error)
}

type topicService struct {
	log       *logger.Logger
	topicRepo repos.TopicRepo
}

func NewTopicService(baseLog *logger.Logger, topicRepo repos.TopicRepo) TopicService {
	return &topicService{
		log:       baseLog.With("service", "TopicService"),
		topicRepo: topicRepo,
	}
}

func (s *topicService) Create(ctx context.Context, in TopicInput) (*types.Topic, error) {
	if in.Name == "" {
		return nil, apperr.Validation("name", "required")
	}
	if in.Subject == "" {
		return nil, apperr.Validation("subject", "required")
	}
	if in.EstimatedMinutes <= 0 {
		return nil, apperr.Validation("estimated_minutes", "must be positive")
	}
	row := &types.Topic{
		Name:             in.Name,
		Subject:          in.Subject,
		EstimatedMinutes: in.EstimatedMinutes,
	}
	return s.topicRepo.Create(ctx, nil, row)
}

func (s *topicService) Get(ctx context.Context, topicID uuid.UUID) (*types.Topic, error) {
	return s.topicRepo.GetByID(ctx, nil, topicID)
}

func (s *topicService) List(ctx context.Context) ([]*types.Topic, error) {
	return s.topicRepo.List(ctx, nil)
}
