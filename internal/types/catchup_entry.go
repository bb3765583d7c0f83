package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CatchUpEntry is created exactly once per skip transition and exists only
// while the referenced session stays skipped. The original day/time are kept
// for deterministic redistribution ordering.
type CatchUpEntry struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"child_id"`
	Child               *Child         `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChildID;references:ID" json:"child,omitempty"`
	SessionID           uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"session_id"`
	Session             *StudySession  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`
	SkipDate            time.Time      `gorm:"column:skip_date;not null;index" json:"skip_date"`
	SkipReason          string         `gorm:"column:skip_reason;not null" json:"skip_reason"`
	OriginalDayOfWeek   *int           `gorm:"column:original_day_of_week" json:"original_day_of_week,omitempty"`
	OriginalStartMinute *int           `gorm:"column:original_start_minute" json:"original_start_minute,omitempty"`
	Metadata            datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	CreatedAt           time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CatchUpEntry) TableName() string { return "catchup_entry" }

func (e *CatchUpEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
