package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	rediscache "github.com/hearthplan/homeplan-backend/internal/clients/redis"
	"github.com/hearthplan/homeplan-backend/internal/logger"
	"github.com/hearthplan/homeplan-backend/internal/recurrence"
	"github.com/hearthplan/homeplan-backend/internal/repos"
	"github.com/hearthplan/homeplan-backend/internal/types"
)

// CommitmentIndex merges a child's weekly TimeBlocks with the occurrences
// expanded from their imported events into one set of busy intervals. It is
// the single source the conflict detector and capacity calculator read, so
// double-booked fixed commitments are only subtracted once.
type CommitmentIndex interface {
	// DayIntervals returns the labelled busy intervals for one absolute date.
	DayIntervals(ctx context.Context, tx *gorm.DB, child *types.Child, date time.Time) ([]BusyInterval, error)
	// WeekdayIntervals returns the labelled busy intervals for a weekly
	// pattern query: blocks on that weekday plus every occurrence landing on
	// that weekday within the expansion horizon.
	WeekdayIntervals(ctx context.Context, tx *gorm.DB, child *types.Child, dayOfWeek int) ([]BusyInterval, error)
	// BusyMinutes returns the merged (union) busy minutes for one date.
	BusyMinutes(ctx context.Context, tx *gorm.DB, child *types.Child, date time.Time) (int, error)
	// Invalidate drops the child's derived occurrences after a TimeBlock or
	// ImportedEvent write.
	Invalidate(ctx context.Context, childID uuid.UUID)
}

type commitmentIndex struct {
	db        *gorm.DB
	log       *logger.Logger
	blockRepo repos.TimeBlockRepo
	eventRepo repos.ImportedEventRepo
	cache     rediscache.OccurrenceCache
	group     singleflight.Group
	maxOccs   int
}

func NewCommitmentIndex(db *gorm.DB, baseLog *logger.Logger, blockRepo repos.TimeBlockRepo, eventRepo repos.ImportedEventRepo, cache rediscache.OccurrenceCache, maxOccurrences int) CommitmentIndex {
	return &commitmentIndex{
		db:        db,
		log:       baseLog.With("service", "CommitmentIndex"),
		blockRepo: blockRepo,
		eventRepo: eventRepo,
		cache:     cache,
		maxOccs:   maxOccurrences,
	}
}

// occurrences returns the child's expanded occurrences, through the cache
// when one is configured. Concurrent rebuilds for the same child collapse
// into one expansion.
func (s *commitmentIndex) occurrences(ctx context.Context, tx *gorm.DB, child *types.Child) ([]recurrence.Occurrence, error) {
	if s.cache != nil {
		if occs, ok := s.cache.Get(ctx, child.ID); ok {
			return occs, nil
		}
	}

	v, err, _ := s.group.Do(child.ID.String(), func() (interface{}, error) {
		events, err := s.eventRepo.ListByChild(ctx, tx, child.ID)
		if err != nil {
			return nil, err
		}
		res := recurrence.ExpandAll(events, recurrence.ExpandConfig{
			DisplayLocation: child.Location(),
			MaxOccurrences:  s.maxOccs,
		})
		for _, w := range res.Warnings {
			s.log.Warn("recurrence degraded during expansion", "child_id", child.ID, "warning", w)
		}
		for _, id := range res.Truncated {
			s.log.Warn("open-ended recurrence truncated at cap", "child_id", child.ID, "event_id", id)
		}
		if s.cache != nil {
			s.cache.Set(ctx, child.ID, res.Occurrences)
		}
		return res.Occurrences, nil
	})
	if err != nil {
		return nil, err
	}
	occs, _ := v.([]recurrence.Occurrence)
	return occs, nil
}

func (s *commitmentIndex) DayIntervals(ctx context.Context, tx *gorm.DB, child *types.Child, date time.Time) ([]BusyInterval, error) {
	date = date.In(child.Location())
	day := isoWeekday(date)

	blocks, err := s.blockRepo.ListByChildAndDay(ctx, tx, child.ID, day)
	if err != nil {
		return nil, err
	}
	out := make([]BusyInterval, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, busyFromBlock(b))
	}

	occs, err := s.occurrences(ctx, tx, child)
	if err != nil {
		return nil, err
	}
	for _, occ := range occs {
		if sameDate(occ.Start, date) {
			out = append(out, busyFromOccurrence(occ))
		}
	}
	return out, nil
}

func (s *commitmentIndex) WeekdayIntervals(ctx context.Context, tx *gorm.DB, child *types.Child, dayOfWeek int) ([]BusyInterval, error) {
	blocks, err := s.blockRepo.ListByChildAndDay(ctx, tx, child.ID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	out := make([]BusyInterval, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, busyFromBlock(b))
	}

	occs, err := s.occurrences(ctx, tx, child)
	if err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]map[Interval]bool)
	for _, occ := range occs {
		if occ.DayOfWeek() != dayOfWeek {
			continue
		}
		// A weekly occurrence repeats the same slot many times; one interval
		// per (event, slot) is enough for pattern queries.
		iv := Interval{Start: occ.StartMinute(), End: occ.EndMinute()}
		if seen[occ.EventID] == nil {
			seen[occ.EventID] = make(map[Interval]bool)
		}
		if seen[occ.EventID][iv] {
			continue
		}
		seen[occ.EventID][iv] = true
		out = append(out, busyFromOccurrence(occ))
	}
	return out, nil
}

func (s *commitmentIndex) BusyMinutes(ctx context.Context, tx *gorm.DB, child *types.Child, date time.Time) (int, error) {
	busy, err := s.DayIntervals(ctx, tx, child, date)
	if err != nil {
		return 0, err
	}
	plain := make([]Interval, 0, len(busy))
	for _, b := range busy {
		plain = append(plain, b.Interval)
	}
	return intervalMinutes(mergeIntervals(plain)), nil
}

func (s *commitmentIndex) Invalidate(ctx context.Context, childID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, childID)
	}
}

func busyFromBlock(b *types.TimeBlock) BusyInterval {
	return BusyInterval{
		Interval:   Interval{Start: b.StartMinute, End: b.EndMinute},
		SourceKind: "time_block",
		SourceID:   b.ID,
		Label:      b.Label,
	}
}

func busyFromOccurrence(occ recurrence.Occurrence) BusyInterval {
	return BusyInterval{
		Interval:   Interval{Start: occ.StartMinute(), End: occ.EndMinute()},
		SourceKind: "imported_event",
		SourceID:   occ.EventID,
		Label:      occ.Summary,
	}
}

// isoWeekday maps time.Weekday onto 1 (Monday) through 7 (Sunday).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
