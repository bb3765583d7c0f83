package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Child struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name                string         `gorm:"column:name;not null" json:"name"`
	WeeklyBudgetMinutes int            `gorm:"column:weekly_budget_minutes;not null;default:0" json:"weekly_budget_minutes"`
	DayBudgetOverrides  datatypes.JSON `gorm:"type:jsonb;column:day_budget_overrides" json:"day_budget_overrides,omitempty"`
	Timezone            string         `gorm:"column:timezone;not null;default:'UTC'" json:"timezone"`
	CreatedAt           time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Child) TableName() string { return "child" }

func (c *Child) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Location resolves the child's configured display timezone, falling back
// to UTC when the zone name is unknown.
func (c *Child) Location() *time.Location {
	if c == nil || c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
