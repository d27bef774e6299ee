package planner

import (
	"testing"
	"time"
)

func rec(slotID, userID, workplaceID string, start, end time.Time) Record {
	return Record{
		SlotID:           slotID,
		AssignmentID:     "as-" + slotID,
		AssignmentStatus: "ACTIVE",
		UserID:           userID,
		UserName:         "Employee " + userID,
		WorkplaceID:      workplaceID,
		WorkplaceCode:    "WP-" + workplaceID,
		WorkplaceName:    "Workplace " + workplaceID,
		WorkplaceColor:   "#2563eb",
		Kind:             "DEFAULT",
		Start:            start,
		End:              end,
	}
}

func day(d, hour int) time.Time {
	return time.Date(2025, 3, d, hour, 0, 0, 0, time.UTC)
}

func TestAssembleGroupsByEmployee(t *testing.T) {
	records := []Record{
		rec("s1", "u1", "w1", day(5, 9), day(5, 17)),
		rec("s2", "u1", "w2", day(6, 9), day(6, 17)),
		rec("s3", "u2", "w1", day(5, 9), day(5, 17)),
	}

	matrix := Assemble(records, Params{
		From: day(1, 0), To: day(31, 0), Mode: ModeByEmployee,
	})

	if matrix.Total != 2 {
		t.Fatalf("expected 2 rows, got %d", matrix.Total)
	}
	if matrix.Rows[0].Key != "u1" || matrix.Rows[1].Key != "u2" {
		t.Fatalf("rows must sort by title: %+v", matrix.Rows)
	}
	if len(matrix.Rows[0].Slots) != 2 {
		t.Fatalf("u1 should carry 2 slots, got %d", len(matrix.Rows[0].Slots))
	}
	if matrix.Rows[0].LaneCount != 1 {
		t.Fatalf("disjoint slots need 1 lane, got %d", matrix.Rows[0].LaneCount)
	}
	if matrix.Rows[0].Slots[0].WorkplaceColor == "" {
		t.Fatal("slots must carry workplace color")
	}
}

func TestAssembleGroupsByWorkplace(t *testing.T) {
	records := []Record{
		rec("s1", "u1", "w1", day(5, 9), day(5, 17)),
		rec("s2", "u2", "w1", day(5, 10), day(5, 18)),
	}

	matrix := Assemble(records, Params{
		From: day(1, 0), To: day(31, 0), Mode: ModeByWorkplace,
	})

	if matrix.Total != 1 {
		t.Fatalf("expected 1 workplace row, got %d", matrix.Total)
	}
	row := matrix.Rows[0]
	if row.Key != "w1" || row.Subtitle != "WP-w1" || row.Color == "" {
		t.Fatalf("workplace row identity wrong: %+v", row)
	}
	if row.LaneCount != 2 {
		t.Fatalf("overlapping slots need 2 lanes, got %d", row.LaneCount)
	}
}

func TestAssembleClipsToWindow(t *testing.T) {
	records := []Record{
		rec("in", "u1", "w1", day(10, 9), day(10, 17)),
		rec("out", "u1", "w1", day(25, 9), day(25, 17)),
	}

	matrix := Assemble(records, Params{
		From: day(9, 0), To: day(12, 0), Mode: ModeByEmployee,
	})

	if len(matrix.Rows) != 1 || len(matrix.Rows[0].Slots) != 1 {
		t.Fatalf("only the in-window slot should remain: %+v", matrix.Rows)
	}
	if matrix.Rows[0].Slots[0].ID != "in" {
		t.Fatalf("wrong slot survived clipping: %+v", matrix.Rows[0].Slots)
	}
}

func TestAssembleDefaultWindowCoversRecords(t *testing.T) {
	records := []Record{
		rec("s1", "u1", "w1", day(5, 9), day(5, 17)),
		rec("s2", "u1", "w1", day(20, 9), day(20, 17)),
	}

	matrix := Assemble(records, Params{Mode: ModeByEmployee})

	if matrix.From.After(day(5, 9)) {
		t.Fatalf("default window must start at or before first record: %v", matrix.From)
	}
	if matrix.To.Before(day(20, 17)) {
		t.Fatalf("default window must end at or after last record: %v", matrix.To)
	}
	if len(matrix.Rows) != 1 || len(matrix.Rows[0].Slots) != 2 {
		t.Fatalf("all records must be visible in the default window: %+v", matrix.Rows)
	}
}

func TestAssemblePagination(t *testing.T) {
	var records []Record
	users := []string{"u1", "u2", "u3"}
	for i, u := range users {
		records = append(records, rec("s"+u, u, "w1", day(5+i, 9), day(5+i, 17)))
	}

	matrix := Assemble(records, Params{
		From: day(1, 0), To: day(31, 0), Mode: ModeByEmployee, Limit: 1, Offset: 1,
	})

	if matrix.Total != 3 {
		t.Fatalf("total must count all rows, got %d", matrix.Total)
	}
	if len(matrix.Rows) != 1 || matrix.Rows[0].Key != "u2" {
		t.Fatalf("expected only second row: %+v", matrix.Rows)
	}
}

func TestAssembleEmpty(t *testing.T) {
	matrix := Assemble(nil, Params{Mode: ModeByEmployee})
	if matrix.Total != 0 || len(matrix.Rows) != 0 {
		t.Fatalf("empty input should yield empty matrix: %+v", matrix)
	}
}
