package services

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/hearthplan/homeplan-backend/internal/apperr"
)

const minutesPerDay = 24 * 60

// Interval is a half-open [Start, End) range in minutes from midnight.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// BusyInterval is an interval labelled with its source so conflicts can name
// the colliding entity.
type BusyInterval struct {
	Interval
	SourceKind string    `json:"source_kind"`
	SourceID   uuid.UUID `json:"source_id"`
	Label      string    `json:"label"`
}

// intervalsOverlap reports whether two half-open intervals intersect.
func intervalsOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// mergeIntervals returns the union of the given intervals, sorted, with
// touching and overlapping ranges coalesced. Double-booked commitments
// therefore count once.
func mergeIntervals(in []Interval) []Interval {
	if len(in) == 0 {
		return nil
	}
	sorted := make([]Interval, len(in))
	copy(sorted, in)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	out := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// intervalMinutes sums the length of already-merged intervals.
func intervalMinutes(in []Interval) int {
	total := 0
	for _, iv := range in {
		total += iv.End - iv.Start
	}
	return total
}

// ParseClock converts "HH:MM" into minutes from midnight. "24:00" is allowed
// as an end-of-day boundary.
func ParseClock(v string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return 0, apperr.Validation("time", fmt.Sprintf("%q is not HH:MM", v))
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, apperr.Validation("time", fmt.Sprintf("%q is out of range", v))
	}
	return h*60 + m, nil
}

// FormatClock renders minutes from midnight as "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
