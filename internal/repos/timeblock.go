package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearthplan/homeplan-backend/internal/apperr"
	"github.com/hearthplan/homeplan-backend/internal/logger"
	"github.com/hearthplan/homeplan-backend/internal/types"
)

type TimeBlockRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.TimeBlock) (*types.TimeBlock, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TimeBlock, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.TimeBlock) error
	ListByChild(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.TimeBlock, error)
	ListByChildAndDay(ctx context.Context, tx *gorm.DB, childID uuid.UUID, dayOfWeek int) ([]*types.TimeBlock, error)
	SoftDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type timeBlockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTimeBlockRepo(db *gorm.DB, baseLog *logger.Logger) TimeBlockRepo {
	repoLog := baseLog.With("repo", "TimeBlockRepo")
	return &timeBlockRepo{db: db, log: repoLog}
}

func (r *timeBlockRepo) Create(ctx context.Context, tx *gorm.DB, row *types.TimeBlock) (*types.TimeBlock, error) {
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

func (r *timeBlockRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TimeBlock, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.TimeBlock
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("time_block", id)
		}
		return nil, err
	}
	return &row, nil
}

func (r *timeBlockRepo) Save(ctx context.Context, tx *gorm.DB, row *types.TimeBlock) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *timeBlockRepo) ListByChild(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.TimeBlock, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.TimeBlock
	if childID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("day_of_week ASC, start_minute ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *timeBlockRepo) ListByChildAndDay(ctx context.Context, tx *gorm.DB, childID uuid.UUID, dayOfWeek int) ([]*types.TimeBlock, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.TimeBlock
	if childID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("child_id = ? AND day_of_week = ?", childID, dayOfWeek).
		Order("start_minute ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *timeBlockRepo) SoftDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.TimeBlock{}).Error
}
