package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/hearthplan/homeplan-backend/internal/apperr"
	"github.com/hearthplan/homeplan-backend/internal/ics"
	"github.com/hearthplan/homeplan-backend/internal/logger"
	"github.com/hearthplan/homeplan-backend/internal/recurrence"
	"github.com/hearthplan/homeplan-backend/internal/repos"
	"github.com/hearthplan/homeplan-backend/internal/types"
)

// TimeBlockInput is the write shape for recurring weekly blocks. Times can be
// given as minutes from midnight or as "HH:MM" clock strings; the clock form
// wins when both are present.
type TimeBlockInput struct {
	DayOfWeek   int    `json:"day_of_week"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	Label       string `json:"label"`
}

func (in *TimeBlockInput) normalize() error {
	if in.StartTime != "" {
		m, err := ParseClock(in.StartTime)
		if err != nil {
			return err
		}
		in.StartMinute = m
	}
	if in.EndTime != "" {
		m, err := ParseClock(in.EndTime)
		if err != nil {
			return err
		}
		in.EndMinute = m
	}
	return nil
}

// ImportReport summarizes one ICS upload.
type ImportReport struct {
	Events   []*types.ImportedEvent `json:"events"`
	Warnings []string               `json:"warnings"`
}

// OccurrenceListing is every concrete commitment instance for a child, with
// per-event truncation flags surfaced instead of silently dropped.
type OccurrenceListing struct {
	Occurrences []recurrence.Occurrence `json:"occurrences"`
	Truncated   []uuid.UUID             `json:"truncated,omitempty"`
	Warnings    []string                `json:"warnings,omitempty"`
}

// CalendarService manages the fixed-commitment surface: weekly time blocks
// and imported calendar events. Every write invalidates the commitment index
// so the next conflict check sees fresh data.
type CalendarService interface {
	CreateTimeBlock(ctx context.Context, childID uuid.UUID, in TimeBlockInput) (*types.TimeBlock, error)
	UpdateTimeBlock(ctx context.Context, blockID uuid.UUID, in TimeBlockInput) (*types.TimeBlock, error)
	DeleteTimeBlock(ctx context.Context, blockID uuid.UUID) error
	ListTimeBlocks(ctx context.Context, childID uuid.UUID) ([]*types.TimeBlock, error)

	ImportICS(ctx context.Context, childID uuid.UUID, body []byte) (*ImportReport, error)
	ListImportedEvents(ctx context.Context, childID uuid.UUID) ([]*types.ImportedEvent, error)
	DeleteImportedEvent(ctx context.Context, eventID uuid.UUID) error

	Occurrences(ctx context.Context, childID uuid.UUID) (*OccurrenceListing, error)
}

type calendarService struct {
	log       *logger.Logger
	childRepo repos.ChildRepo
	blockRepo repos.TimeBlockRepo
	eventRepo repos.ImportedEventRepo
	index     CommitmentIndex
	maxOccs   int
}

func NewCalendarService(baseLog *logger.Logger, childRepo repos.ChildRepo, blockRepo repos.TimeBlockRepo, eventRepo repos.ImportedEventRepo, index CommitmentIndex, maxOccurrences int) CalendarService {
	return &calendarService{
		log:       baseLog.With("service", "CalendarService"),
		childRepo: childRepo,
		blockRepo: blockRepo,
		eventRepo: eventRepo,
		index:     index,
		maxOccs:   maxOccurrences,
	}
}

func validateBlockInput(in *TimeBlockInput) error {
	if err := in.normalize(); err != nil {
		return err
	}
	if in.DayOfWeek < 1 || in.DayOfWeek > 7 {
		return apperr.Validation("day_of_week", "must be 1 through 7")
	}
	if in.StartMinute < 0 || in.EndMinute > minutesPerDay {
		return apperr.Validation("time", "block must fall within the day")
	}
	if in.EndMinute <= in.StartMinute {
		return apperr.Validation("end_time", "must be after start_time")
	}
	if in.Label == "" {
		return apperr.Validation("label", "required")
	}
	return nil
}

func (s *calendarService) CreateTimeBlock(ctx context.Context, childID uuid.UUID, in TimeBlockInput) (*types.TimeBlock, error) {
	if _, err := s.childRepo.GetByID(ctx, nil, childID); err != nil {
		return nil, err
	}
	if err := validateBlockInput(&in); err != nil {
		return nil, err
	}
	row := &types.TimeBlock{
		ChildID:     childID,
		DayOfWeek:   in.DayOfWeek,
		StartMinute: in.StartMinute,
		EndMinute:   in.EndMinute,
		Label:       in.Label,
	}
	created, err := s.blockRepo.Create(ctx, nil, row)
	if err != nil {
		return nil, err
	}
	s.index.Invalidate(ctx, childID)
	return created, nil
}

func (s *calendarService) UpdateTimeBlock(ctx context.Context, blockID uuid.UUID, in TimeBlockInput) (*types.TimeBlock, error) {
	if err := validateBlockInput(&in); err != nil {
		return nil, err
	}
	row, err := s.blockRepo.GetByID(ctx, nil, blockID)
	if err != nil {
		return nil, err
	}
	row.DayOfWeek = in.DayOfWeek
	row.StartMinute = in.StartMinute
	row.EndMinute = in.EndMinute
	row.Label = in.Label
	if err := s.blockRepo.Save(ctx, nil, row); err != nil {
		return nil, err
	}
	s.index.Invalidate(ctx, row.ChildID)
	return row, nil
}

func (s *calendarService) DeleteTimeBlock(ctx context.Context, blockID uuid.UUID) error {
	row, err := s.blockRepo.GetByID(ctx, nil, blockID)
	if err != nil {
		return err
	}
	if err := s.blockRepo.SoftDeleteByID(ctx, nil, blockID); err != nil {
		return err
	}
	s.index.Invalidate(ctx, row.ChildID)
	return nil
}

func (s *calendarService) ListTimeBlocks(ctx context.Context, childID uuid.UUID) ([]*types.TimeBlock, error) {
	return s.blockRepo.ListByChild(ctx, nil, childID)
}

func (s *calendarService) ImportICS(ctx context.Context, childID uuid.UUID, body []byte) (*ImportReport, error) {
	child, err := s.childRepo.GetByID(ctx, nil, childID)
	if err != nil {
		return nil, err
	}
	events, err := ics.Parse(childID, body, s.log)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return &ImportReport{Events: []*types.ImportedEvent{}}, nil
	}
	created, err := s.eventRepo.Create(ctx, nil, events)
	if err != nil {
		return nil, err
	}
	s.index.Invalidate(ctx, child.ID)

	report := &ImportReport{Events: created}
	for _, ev := range created {
		// A trial expansion surfaces rules the expander can only degrade
		// (unsupported frequency, unknown timezone, inverted times); the
		// reason is stored on the event so later reads see it too.
		res := recurrence.Expand(ev, recurrence.ExpandConfig{
			DisplayLocation: child.Location(),
			MaxOccurrences:  s.maxOccs,
		})
		if res.Warning != nil {
			reason := res.Warning.Reason
			ev.RecurrenceWarning = &reason
			if err := s.eventRepo.Save(ctx, nil, ev); err != nil {
				return nil, err
			}
		}
		if ev.RecurrenceWarning != nil {
			report.Warnings = append(report.Warnings, ev.Summary+": "+*ev.RecurrenceWarning)
		}
	}
	return report, nil
}

func (s *calendarService) ListImportedEvents(ctx context.Context, childID uuid.UUID) ([]*types.ImportedEvent, error) {
	return s.eventRepo.ListByChild(ctx, nil, childID)
}

func (s *calendarService) DeleteImportedEvent(ctx context.Context, eventID uuid.UUID) error {
	row, err := s.eventRepo.GetByID(ctx, nil, eventID)
	if err != nil {
		return err
	}
	if err := s.eventRepo.SoftDeleteByID(ctx, nil, eventID); err != nil {
		return err
	}
	s.index.Invalidate(ctx, row.ChildID)
	return nil
}

func (s *calendarService) Occurrences(ctx context.Context, childID uuid.UUID) (*OccurrenceListing, error) {
	child, err := s.childRepo.GetByID(ctx, nil, childID)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListByChild(ctx, nil, childID)
	if err != nil {
		return nil, err
	}
	res := recurrence.ExpandAll(events, recurrence.ExpandConfig{
		DisplayLocation: child.Location(),
		MaxOccurrences:  s.maxOccs,
	})
	listing := &OccurrenceListing{
		Occurrences: res.Occurrences,
		Truncated:   res.Truncated,
	}
	for _, w := range res.Warnings {
		listing.Warnings = append(listing.Warnings, w.Error())
	}
	return listing, nil
}
