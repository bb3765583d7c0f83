package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimeBlock is a manually-defined weekly fixed commitment. It recurs every
// week indefinitely; there is no COUNT/UNTIL on a block.
type TimeBlock struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"child_id"`
	Child       *Child         `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChildID;references:ID" json:"child,omitempty"`
	DayOfWeek   int            `gorm:"column:day_of_week;not null;index" json:"day_of_week"`
	StartMinute int            `gorm:"column:start_minute;not null" json:"start_minute"`
	EndMinute   int            `gorm:"column:end_minute;not null" json:"end_minute"`
	Label       string         `gorm:"column:label;not null" json:"label"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TimeBlock) TableName() string { return "time_block" }

func (b *TimeBlock) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
