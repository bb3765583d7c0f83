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

type ChildRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Child) (*types.Child, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Child, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.Child) error
	List(ctx context.Context, tx *gorm.DB) ([]*types.Child, error)
}

type childRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChildRepo(db *gorm.DB, baseLog *logger.Logger) ChildRepo {
	repoLog := baseLog.With("repo", "ChildRepo")
	return &childRepo{db: db, log: repoLog}
}

func (r *childRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Child) (*types.Child, error) {
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

func (r *childRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Child, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Child
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("child", id)
		}
		return nil, err
	}
	return &row, nil
}

func (r *childRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Child) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *childRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Child, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Child
	if err := transaction.WithContext(ctx).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
