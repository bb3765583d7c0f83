package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearthplan/homeplan-backend/internal/logger"
	"github.com/hearthplan/homeplan-backend/internal/types"
)

type CatchUpEntryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.CatchUpEntry) (*types.CatchUpEntry, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.CatchUpEntry, error)
	// ListByChildOrdered returns the catch-up queue oldest skip first, ties
	// broken by the session's original day and start time.
	ListByChildOrdered(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.CatchUpEntry, error)
	FullDeleteBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error
}

type catchUpEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCatchUpEntryRepo(db *gorm.DB, baseLog *logger.Logger) CatchUpEntryRepo {
	repoLog := baseLog.With("repo", "CatchUpEntryRepo")
	return &catchUpEntryRepo{db: db, log: repoLog}
}

func (r *catchUpEntryRepo) Create(ctx context.Context, tx *gorm.DB, row *types.CatchUpEntry) (*types.CatchUpEntry, error) {
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

func (r *catchUpEntryRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.CatchUpEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.CatchUpEntry
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *catchUpEntryRepo) ListByChildOrdered(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.CatchUpEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CatchUpEntry
	if childID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("skip_date ASC, original_day_of_week ASC, original_start_minute ASC, created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *catchUpEntryRepo) FullDeleteBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if sessionID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Unscoped().
		Where("session_id = ?", sessionID).
		Delete(&types.CatchUpEntry{}).Error
}
