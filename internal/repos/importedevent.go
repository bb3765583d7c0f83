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

type ImportedEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ImportedEvent) ([]*types.ImportedEvent, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ImportedEvent, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.ImportedEvent) error
	ListByChild(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.ImportedEvent, error)
	SoftDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type importedEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewImportedEventRepo(db *gorm.DB, baseLog *logger.Logger) ImportedEventRepo {
	repoLog := baseLog.With("repo", "ImportedEventRepo")
	return &importedEventRepo{db: db, log: repoLog}
}

func (r *importedEventRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ImportedEvent) ([]*types.ImportedEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.ImportedEvent{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *importedEventRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ImportedEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.ImportedEvent
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("imported_event", id)
		}
		return nil, err
	}
	return &row, nil
}

func (r *importedEventRepo) Save(ctx context.Context, tx *gorm.DB, row *types.ImportedEvent) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *importedEventRepo) ListByChild(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.ImportedEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ImportedEvent
	if childID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("dtstart ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *importedEventRepo) SoftDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.ImportedEvent{}).Error
}
