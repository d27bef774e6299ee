package planner

import (
	"sort"
	"time"
)

// Interval is one renderable slot on a row's timeline.
type Interval struct {
	ID    string
	Start time.Time
	End   time.Time
}

// Packing maps slot IDs to lane indices. LaneCount is always at least 1 so an
// empty row still renders with a visible height.
type Packing struct {
	Lanes     map[string]int `json:"lanes"`
	LaneCount int            `json:"laneCount"`
}

// PackLanes assigns each interval to the lowest-indexed lane whose last
// interval has ended by the time this one starts. Intervals are processed in
// ascending start order with a stable tie-break on (end, id), so identical
// input yields identical output regardless of input order. A zero or missing
// end is treated as end = start; end before start is clamped the same way.
// First-fit over start-sorted intervals uses the minimum number of lanes.
func PackLanes(intervals []Interval) Packing {
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	for i := range sorted {
		if sorted[i].End.Before(sorted[i].Start) || sorted[i].End.IsZero() {
			sorted[i].End = sorted[i].Start
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		if !sorted[i].End.Equal(sorted[j].End) {
			return sorted[i].End.Before(sorted[j].End)
		}
		return sorted[i].ID < sorted[j].ID
	})

	lanes := make(map[string]int, len(sorted))
	var laneEnds []time.Time
	for _, interval := range sorted {
		placed := false
		for lane, laneEnd := range laneEnds {
			if !laneEnd.After(interval.Start) {
				lanes[interval.ID] = lane
				laneEnds[lane] = interval.End
				placed = true
				break
			}
		}
		if !placed {
			lanes[interval.ID] = len(laneEnds)
			laneEnds = append(laneEnds, interval.End)
		}
	}

	laneCount := len(laneEnds)
	if laneCount == 0 {
		laneCount = 1
	}
	return Packing{Lanes: lanes, LaneCount: laneCount}
}
