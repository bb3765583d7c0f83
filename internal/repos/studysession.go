package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearthplan/homeplan-backend/internal/apperr"
	"github.com/hearthplan/homeplan-backend/internal/logger"
	"github.com/hearthplan/homeplan-backend/internal/types"
)

type StudySessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.StudySession) (*types.StudySession, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StudySession, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.StudySession) error
	ListByChild(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.StudySession, error)
	ListByChildStatuses(ctx context.Context, tx *gorm.DB, childID uuid.UUID, statuses []types.SessionStatus) ([]*types.StudySession, error)
	ListOccupyingOnDay(ctx context.Context, tx *gorm.DB, childID uuid.UUID, dayOfWeek int) ([]*types.StudySession, error)
	ListSkippedOnDate(ctx context.Context, tx *gorm.DB, childID uuid.UUID, dayStart, dayEnd time.Time) ([]*types.StudySession, error)
	FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type studySessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudySessionRepo(db *gorm.DB, baseLog *logger.Logger) StudySessionRepo {
	repoLog := baseLog.With("repo", "StudySessionRepo")
	return &studySessionRepo{db: db, log: repoLog}
}

func (r *studySessionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.StudySession) (*types.StudySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *studySessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StudySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.StudySession
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("session", id)
		}
		return nil, err
	}
	return &row, nil
}

func (r *studySessionRepo) Save(ctx context.Context, tx *gorm.DB, row *types.StudySession) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *studySessionRepo) ListByChild(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.StudySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.StudySession
	if childID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *studySessionRepo) ListByChildStatuses(ctx context.Context, tx *gorm.DB, childID uuid.UUID, statuses []types.SessionStatus) ([]*types.StudySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.StudySession
	if childID == uuid.Nil || len(statuses) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("child_id = ? AND status IN ?", childID, statuses).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListOccupyingOnDay returns scheduled sessions whose day_of_week matches;
// these are the weekly-pattern occupants a candidate slot can collide with.
func (r *studySessionRepo) ListOccupyingOnDay(ctx context.Context, tx *gorm.DB, childID uuid.UUID, dayOfWeek int) ([]*types.StudySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.StudySession
	if childID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("child_id = ? AND status = ? AND day_of_week = ?", childID, types.SessionScheduled, dayOfWeek).
		Order("start_minute ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListSkippedOnDate returns skipped sessions whose skip_date falls on the
// given day; a skipped session occupies its historical absolute date only.
func (r *studySessionRepo) ListSkippedOnDate(ctx context.Context, tx *gorm.DB, childID uuid.UUID, dayStart, dayEnd time.Time) ([]*types.StudySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.StudySession
	if childID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("child_id = ? AND status = ? AND skip_date >= ? AND skip_date < ?", childID, types.SessionSkipped, dayStart, dayEnd).
		Order("start_minute ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *studySessionRepo) FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Unscoped().
		Where("id = ?", id).
		Delete(&types.StudySession{}).Error
}
