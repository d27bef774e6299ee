package planner

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 5, hour, minute, 0, 0, time.UTC)
}

func TestPackLanesEmpty(t *testing.T) {
	packing := PackLanes(nil)
	if packing.LaneCount != 1 {
		t.Fatalf("empty set still needs one lane, got %d", packing.LaneCount)
	}
	if len(packing.Lanes) != 0 {
		t.Fatalf("no assignments expected, got %v", packing.Lanes)
	}
}

func TestPackLanesDisjoint(t *testing.T) {
	packing := PackLanes([]Interval{
		{ID: "a", Start: at(9, 0), End: at(10, 0)},
		{ID: "b", Start: at(10, 30), End: at(11, 0)},
		{ID: "c", Start: at(12, 0), End: at(13, 0)},
	})
	if packing.LaneCount != 1 {
		t.Fatalf("disjoint intervals fit one lane, got %d", packing.LaneCount)
	}
	for id, lane := range packing.Lanes {
		if lane != 0 {
			t.Fatalf("interval %s expected lane 0, got %d", id, lane)
		}
	}
}

func TestPackLanesAllOverlapping(t *testing.T) {
	packing := PackLanes([]Interval{
		{ID: "a", Start: at(9, 0), End: at(12, 0)},
		{ID: "b", Start: at(9, 30), End: at(12, 30)},
		{ID: "c", Start: at(10, 0), End: at(13, 0)},
	})
	if packing.LaneCount != 3 {
		t.Fatalf("three mutual overlaps need three lanes, got %d", packing.LaneCount)
	}
	seen := map[int]bool{}
	for _, lane := range packing.Lanes {
		seen[lane] = true
	}
	for lane := 0; lane < 3; lane++ {
		if !seen[lane] {
			t.Fatalf("lane %d unused: %v", lane, packing.Lanes)
		}
	}
}

func TestPackLanesReuse(t *testing.T) {
	packing := PackLanes([]Interval{
		{ID: "a", Start: at(9, 0), End: at(10, 0)},
		{ID: "b", Start: at(9, 30), End: at(10, 30)},
		{ID: "c", Start: at(10, 0), End: at(11, 0)},
	})
	if packing.LaneCount != 2 {
		t.Fatalf("expected 2 lanes, got %d", packing.LaneCount)
	}
	if packing.Lanes["a"] != 0 || packing.Lanes["c"] != 0 {
		t.Fatalf("a and c should share lane 0: %v", packing.Lanes)
	}
	if packing.Lanes["b"] != 1 {
		t.Fatalf("b should be lane 1: %v", packing.Lanes)
	}
}

func TestPackLanesZeroDuration(t *testing.T) {
	packing := PackLanes([]Interval{
		{ID: "point", Start: at(9, 0)},
		{ID: "bar", Start: at(9, 0), End: at(10, 0)},
	})
	if _, ok := packing.Lanes["point"]; !ok {
		t.Fatal("zero-duration interval must be placeable")
	}
	if packing.LaneCount < 1 {
		t.Fatalf("lane count must be at least 1, got %d", packing.LaneCount)
	}
}

func TestPackLanesMalformedClamped(t *testing.T) {
	packing := PackLanes([]Interval{
		{ID: "x", Start: at(10, 0), End: at(9, 0)},
		{ID: "y", Start: at(10, 0), End: at(11, 0)},
	})
	if len(packing.Lanes) != 2 {
		t.Fatalf("malformed interval must still place: %v", packing.Lanes)
	}
}

func TestPackLanesDeterministic(t *testing.T) {
	intervals := []Interval{
		{ID: "a", Start: at(9, 0), End: at(10, 0)},
		{ID: "b", Start: at(9, 0), End: at(10, 0)},
		{ID: "c", Start: at(9, 30), End: at(11, 0)},
		{ID: "d", Start: at(10, 0), End: at(10, 0)},
	}
	reversed := []Interval{intervals[3], intervals[2], intervals[1], intervals[0]}

	first := PackLanes(intervals)
	second := PackLanes(reversed)

	if first.LaneCount != second.LaneCount {
		t.Fatalf("lane count differs: %d vs %d", first.LaneCount, second.LaneCount)
	}
	for id, lane := range first.Lanes {
		if second.Lanes[id] != lane {
			t.Fatalf("lane for %s differs across input orders: %d vs %d", id, lane, second.Lanes[id])
		}
	}
}
