package services

import "testing"

func TestIntervalsOverlap(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{"disjoint_before", 540, 600, 600, 660, false},
		{"disjoint_after", 600, 660, 540, 600, false},
		{"partial", 570, 615, 540, 600, true},
		{"contained", 540, 660, 570, 600, true},
		{"identical", 540, 600, 540, 600, true},
		{"touching_is_not_overlap", 540, 600, 600, 700, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := intervalsOverlap(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd)
			if got != tc.want {
				t.Fatalf("intervalsOverlap(%d,%d,%d,%d)=%v, want %v", tc.aStart, tc.aEnd, tc.bStart, tc.bEnd, got, tc.want)
			}
		})
	}
}

func TestMergeIntervals(t *testing.T) {
	cases := []struct {
		name string
		in   []Interval
		want []Interval
	}{
		{"empty", nil, nil},
		{
			"overlapping_union",
			[]Interval{{540, 600}, {570, 630}},
			[]Interval{{540, 630}},
		},
		{
			"touching_coalesce",
			[]Interval{{540, 600}, {600, 660}},
			[]Interval{{540, 660}},
		},
		{
			"disjoint_sorted",
			[]Interval{{700, 760}, {540, 600}},
			[]Interval{{540, 600}, {700, 760}},
		},
		{
			"nested",
			[]Interval{{540, 700}, {560, 580}},
			[]Interval{{540, 700}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mergeIntervals(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestMergedMinutesCountDoubleBookingOnce(t *testing.T) {
	// Two fully overlapping one-hour commitments subtract 60, not 120.
	merged := mergeIntervals([]Interval{{540, 600}, {540, 600}})
	if got := intervalMinutes(merged); got != 60 {
		t.Fatalf("merged minutes %d, want 60", got)
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"09:30", 570, false},
		{"00:00", 0, false},
		{"24:00", 1440, false},
		{"24:01", 0, true},
		{"9:75", 0, true},
		{"noon", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseClock(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseClock(%q) expected error", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("ParseClock(%q)=%d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(570); got != "09:30" {
		t.Fatalf("FormatClock(570)=%q, want 09:30", got)
	}
}
