package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionBacklog   SessionStatus = "backlog"
	SessionPlanned   SessionStatus = "planned"
	SessionScheduled SessionStatus = "scheduled"
	SessionDone      SessionStatus = "done"
	SessionSkipped   SessionStatus = "skipped"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionBacklog, SessionPlanned, SessionScheduled, SessionDone, SessionSkipped:
		return true
	}
	return false
}

type CommitmentType string

const (
	CommitmentFixed     CommitmentType = "fixed"
	CommitmentPreferred CommitmentType = "preferred"
	CommitmentFlexible  CommitmentType = "flexible"
)

func (c CommitmentType) Valid() bool {
	switch c {
	case CommitmentFixed, CommitmentPreferred, CommitmentFlexible:
		return true
	}
	return false
}

// StudySession is the central mutable entity of the planner. Day/time fields
// are minutes from midnight and are only populated while the session is
// scheduled (or skipped, where they remain as historical context).
type StudySession struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"child_id"`
	Child            *Child         `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChildID;references:ID" json:"child,omitempty"`
	TopicID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"topic_id"`
	Topic            *Topic         `gorm:"constraint:OnDelete:CASCADE;foreignKey:TopicID;references:ID" json:"topic,omitempty"`
	Status           SessionStatus  `gorm:"column:status;not null;default:'backlog';index" json:"status"`
	CommitmentType   *CommitmentType `gorm:"column:commitment_type" json:"commitment_type,omitempty"`
	DayOfWeek        *int           `gorm:"column:day_of_week;index" json:"day_of_week,omitempty"`
	StartMinute      *int           `gorm:"column:start_minute" json:"start_minute,omitempty"`
	EndMinute        *int           `gorm:"column:end_minute" json:"end_minute,omitempty"`
	EstimatedMinutes int            `gorm:"column:estimated_minutes;not null" json:"estimated_minutes"`
	EvidenceNotes    *string        `gorm:"column:evidence_notes" json:"evidence_notes,omitempty"`
	CompletedAt      *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	SkipReason       *string        `gorm:"column:skip_reason" json:"skip_reason,omitempty"`
	SkipDate         *time.Time     `gorm:"column:skip_date" json:"skip_date,omitempty"`
	Metadata         datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (StudySession) TableName() string { return "study_session" }

func (s *StudySession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SlotMinutes is the length of the scheduled slot, or the estimate when no
// slot is set.
func (s *StudySession) SlotMinutes() int {
	if s.StartMinute != nil && s.EndMinute != nil {
		return *s.EndMinute - *s.StartMinute
	}
	return s.EstimatedMinutes
}
