package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImportedEvent is a recurrence definition sourced from an external calendar
// file. Occurrences are derived from it on demand, never persisted.
type ImportedEvent struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"child_id"`
	Child       *Child         `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChildID;references:ID" json:"child,omitempty"`
	Summary     string         `gorm:"column:summary;not null" json:"summary"`
	Location    string         `gorm:"column:location" json:"location,omitempty"`
	DTStart     time.Time      `gorm:"column:dtstart;not null" json:"dtstart"`
	DTEnd       time.Time      `gorm:"column:dtend;not null" json:"dtend"`
	Frequency   string         `gorm:"column:frequency" json:"frequency,omitempty"`
	RepeatCount *int           `gorm:"column:repeat_count" json:"repeat_count,omitempty"`
	RepeatUntil *time.Time     `gorm:"column:repeat_until" json:"repeat_until,omitempty"`
	Timezone    string         `gorm:"column:timezone;not null;default:'UTC'" json:"timezone"`
	// RecurrenceWarning records the last malformed-recurrence degradation for
	// caller visibility; expansion itself never hard-fails on it.
	RecurrenceWarning *string        `gorm:"column:recurrence_warning" json:"recurrence_warning,omitempty"`
	CreatedAt         time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ImportedEvent) TableName() string { return "imported_event" }

func (e *ImportedEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
