package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearthplan/homeplan-backend/internal/apperr"
	"github.com/hearthplan/homeplan-backend/internal/logger"
	"github.com/hearthplan/homeplan-backend/internal/repos"
	"github.com/hearthplan/homeplan-backend/internal/types"
)

// ScheduleSlot carries the inputs for any transition into scheduled.
type ScheduleSlot struct {
	DayOfWeek      int
	StartMinute    int
	EndMinute      int
	CommitmentType types.CommitmentType
	// Date pins the slot to a concrete day; redistribution placements set it.
	Date *time.Time
}

// ScheduleOptions tunes a schedule call. StrictCapacity turns the advisory
// over-budget signal into a blocking CapacityExceededError.
type ScheduleOptions struct {
	StrictCapacity bool
}

// SessionService owns the session lifecycle. Every transition that assigns a
// day/time runs the conflict detector inside the same transaction, and all
// writes for one child are serialized.
type SessionService interface {
	CreateFromTopic(ctx context.Context, childID, topicID uuid.UUID, estimatedOverride *int) (*types.StudySession, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*types.StudySession, error)
	ListByChild(ctx context.Context, childID uuid.UUID) ([]*types.StudySession, error)

	Plan(ctx context.Context, sessionID uuid.UUID) (*types.StudySession, error)
	Schedule(ctx context.Context, sessionID uuid.UUID, slot ScheduleSlot, opts ScheduleOptions) (*types.StudySession, error)
	Unschedule(ctx context.Context, sessionID uuid.UUID) (*types.StudySession, error)
	Skip(ctx context.Context, sessionID uuid.UUID, skipDate time.Time, reason string) (*types.StudySession, error)
	Complete(ctx context.Context, sessionID uuid.UUID, evidence *string, completedAt time.Time) (*types.StudySession, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

// validTransitions is the closed transition table; anything not listed is a
// ValidationError.
var validTransitions = map[types.SessionStatus][]types.SessionStatus{
	types.SessionBacklog:   {types.SessionPlanned},
	types.SessionPlanned:   {types.SessionScheduled},
	types.SessionScheduled: {types.SessionPlanned, types.SessionScheduled, types.SessionDone, types.SessionSkipped},
	types.SessionSkipped:   {types.SessionScheduled},
	types.SessionDone:      {},
}

func canTransition(from, to types.SessionStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type sessionService struct {
	db          *gorm.DB
	log         *logger.Logger
	childRepo   repos.ChildRepo
	topicRepo   repos.TopicRepo
	sessionRepo repos.StudySessionRepo
	catchUpRepo repos.CatchUpEntryRepo
	conflicts   ConflictDetector
	capacity    CapacityService
	notifier    CompletionNotifier
	locks       *childLocks
}

func NewSessionService(db *gorm.DB, baseLog *logger.Logger, childRepo repos.ChildRepo, topicRepo repos.TopicRepo, sessionRepo repos.StudySessionRepo, catchUpRepo repos.CatchUpEntryRepo, conflicts ConflictDetector, capacity CapacityService, notifier CompletionNotifier) SessionService {
	return &sessionService{
		db:          db,
		log:         baseLog.With("service", "SessionService"),
		childRepo:   childRepo,
		topicRepo:   topicRepo,
		sessionRepo: sessionRepo,
		catchUpRepo: catchUpRepo,
		conflicts:   conflicts,
		capacity:    capacity,
		notifier:    notifier,
		locks:       newChildLocks(),
	}
}

func (s *sessionService) CreateFromTopic(ctx context.Context, childID, topicID uuid.UUID, estimatedOverride *int) (*types.StudySession, error) {
	if _, err := s.childRepo.GetByID(ctx, nil, childID); err != nil {
		return nil, err
	}
	topic, err := s.topicRepo.GetByID(ctx, nil, topicID)
	if err != nil {
		return nil, err
	}

	estimated := topic.EstimatedMinutes
	if estimatedOverride != nil {
		if *estimatedOverride <= 0 {
			return nil, apperr.Validation("estimated_minutes", "must be positive")
		}
		estimated = *estimatedOverride
	}

	row := &types.StudySession{
		ChildID:          childID,
		TopicID:          topicID,
		Status:           types.SessionBacklog,
		EstimatedMinutes: estimated,
	}
	return s.sessionRepo.Create(ctx, nil, row)
}

func (s *sessionService) Get(ctx context.Context, sessionID uuid.UUID) (*types.StudySession, error) {
	return s.sessionRepo.GetByID(ctx, nil, sessionID)
}

func (s *sessionService) ListByChild(ctx context.Context, childID uuid.UUID) ([]*types.StudySession, error) {
	return s.sessionRepo.ListByChild(ctx, nil, childID)
}

func (s *sessionService) Plan(ctx context.Context, sessionID uuid.UUID) (*types.StudySession, error) {
	sess, err := s.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(sess.ChildID)
	defer unlock()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		sess, err = s.sessionRepo.GetByID(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if !canTransition(sess.Status, types.SessionPlanned) {
			return apperr.Validation("status", string(sess.Status)+" cannot move to planned")
		}
		sess.Status = types.SessionPlanned
		return s.sessionRepo.Save(ctx, tx, sess)
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *sessionService) Schedule(ctx context.Context, sessionID uuid.UUID, slot ScheduleSlot, opts ScheduleOptions) (*types.StudySession, error) {
	sess, err := s.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(sess.ChildID)
	defer unlock()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		sess, err = s.sessionRepo.GetByID(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if !canTransition(sess.Status, types.SessionScheduled) {
			return apperr.Validation("status", string(sess.Status)+" cannot move to scheduled")
		}
		if !slot.CommitmentType.Valid() {
			return apperr.Validation("commitment_type", "must be fixed, preferred or flexible")
		}

		child, err := s.childRepo.GetByID(ctx, tx, sess.ChildID)
		if err != nil {
			return err
		}

		cand := SlotCandidate{
			DayOfWeek:        slot.DayOfWeek,
			StartMinute:      slot.StartMinute,
			EndMinute:        slot.EndMinute,
			Date:             slot.Date,
			ExcludeSessionID: sess.ID,
		}
		if err := s.conflicts.Check(ctx, tx, child, cand); err != nil {
			return err
		}

		if opts.StrictCapacity && slot.Date != nil {
			day, err := s.capacity.Remaining(ctx, tx, child, *slot.Date)
			if err != nil {
				return err
			}
			need := slot.EndMinute - slot.StartMinute
			if day.RemainingMinutes < need {
				return &apperr.CapacityExceededError{
					Date:             *slot.Date,
					BudgetMinutes:    day.BudgetMinutes,
					CommittedMinutes: day.CommittedMinutes + need,
				}
			}
		}

		wasSkipped := sess.Status == types.SessionSkipped

		sess.Status = types.SessionScheduled
		sess.DayOfWeek = &slot.DayOfWeek
		sess.StartMinute = &slot.StartMinute
		sess.EndMinute = &slot.EndMinute
		ct := slot.CommitmentType
		sess.CommitmentType = &ct
		sess.SkipReason = nil
		sess.SkipDate = nil
		if err := s.sessionRepo.Save(ctx, tx, sess); err != nil {
			return err
		}
		if wasSkipped {
			return s.catchUpRepo.FullDeleteBySessionID(ctx, tx, sess.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *sessionService) Unschedule(ctx context.Context, sessionID uuid.UUID) (*types.StudySession, error) {
	sess, err := s.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(sess.ChildID)
	defer unlock()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		sess, err = s.sessionRepo.GetByID(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if sess.Status != types.SessionScheduled {
			return apperr.Validation("status", "only a scheduled session can be unscheduled")
		}
		sess.Status = types.SessionPlanned
		sess.DayOfWeek = nil
		sess.StartMinute = nil
		sess.EndMinute = nil
		sess.CommitmentType = nil
		return s.sessionRepo.Save(ctx, tx, sess)
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *sessionService) Skip(ctx context.Context, sessionID uuid.UUID, skipDate time.Time, reason string) (*types.StudySession, error) {
	if reason == "" {
		return nil, apperr.Validation("skip_reason", "required")
	}
	if skipDate.IsZero() {
		return nil, apperr.Validation("skip_date", "required")
	}

	sess, err := s.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(sess.ChildID)
	defer unlock()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		sess, err = s.sessionRepo.GetByID(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if !canTransition(sess.Status, types.SessionSkipped) {
			return apperr.Validation("status", string(sess.Status)+" cannot move to skipped")
		}

		// Day/time are retained as historical context.
		sess.Status = types.SessionSkipped
		sess.SkipDate = &skipDate
		sess.SkipReason = &reason
		if err := s.sessionRepo.Save(ctx, tx, sess); err != nil {
			return err
		}

		entry := &types.CatchUpEntry{
			ChildID:             sess.ChildID,
			SessionID:           sess.ID,
			SkipDate:            skipDate,
			SkipReason:          reason,
			OriginalDayOfWeek:   sess.DayOfWeek,
			OriginalStartMinute: sess.StartMinute,
		}
		_, err = s.catchUpRepo.Create(ctx, tx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *sessionService) Complete(ctx context.Context, sessionID uuid.UUID, evidence *string, completedAt time.Time) (*types.StudySession, error) {
	sess, err := s.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(sess.ChildID)
	defer unlock()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		sess, err = s.sessionRepo.GetByID(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if !canTransition(sess.Status, types.SessionDone) {
			return apperr.Validation("status", string(sess.Status)+" cannot move to done")
		}
		sess.Status = types.SessionDone
		sess.EvidenceNotes = evidence
		sess.CompletedAt = &completedAt
		return s.sessionRepo.Save(ctx, tx, sess)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SessionCompleted(ctx, SessionCompletedEvent{
		SessionID:   sess.ID,
		TopicID:     sess.TopicID,
		ChildID:     sess.ChildID,
		CompletedAt: completedAt,
	})
	return sess, nil
}

func (s *sessionService) Delete(ctx context.Context, sessionID uuid.UUID) error {
	sess, err := s.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(sess.ChildID)
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.catchUpRepo.FullDeleteBySessionID(ctx, tx, sessionID); err != nil {
			return err
		}
		return s.sessionRepo.FullDeleteByID(ctx, tx, sessionID)
	})
}
