package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Topic is the curriculum unit a session is created from. The planner reads
// it only for defaults; curriculum management owns the rest of its lifecycle.
type Topic struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string         `gorm:"column:name;not null" json:"name"`
	Subject          string         `gorm:"column:subject;not null;index" json:"subject"`
	EstimatedMinutes int            `gorm:"column:estimated_minutes;not null;default:30" json:"estimated_minutes"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Topic) TableName() string { return "topic" }

func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
