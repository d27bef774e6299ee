package planner

import (
	"sort"
	"time"
)

const (
	ModeByEmployee  = "byEmployee"
	ModeByWorkplace = "byWorkplace"
)

// Record is one shift joined with its assignment, employee and workplace,
// as fetched by the store.
type Record struct {
	SlotID           string
	AssignmentID     string
	AssignmentStatus string
	UserID           string
	UserName         string
	WorkplaceID      string
	WorkplaceCode    string
	WorkplaceName    string
	WorkplaceColor   string
	Kind             string
	Start            time.Time
	End              time.Time
}

type Slot struct {
	ID               string    `json:"id"`
	AssignmentID     string    `json:"assignmentId"`
	AssignmentStatus string    `json:"assignmentStatus"`
	Kind             string    `json:"kind"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	WorkplaceCode    string    `json:"workplaceCode"`
	WorkplaceColor   string    `json:"workplaceColor"`
	Lane             int       `json:"lane"`
}

type Row struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	Color     string `json:"color,omitempty"`
	Slots     []Slot `json:"slots"`
	LaneCount int    `json:"laneCount"`
}

type Matrix struct {
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
	Rows  []Row     `json:"rows"`
	Total int       `json:"total"`
}

type Params struct {
	From   time.Time
	To     time.Time
	Mode   string
	Status string
	Limit  int
	Offset int
}

// Assemble shapes flat shift records into calendar rows: group by employee or
// workplace, clip to the window, lane-pack each row. When the window is open
// on either side it is widened to the records' extent, so an unbounded query
// never produces an arbitrarily large or empty grid. Pure data shaping; it
// never fails.
func Assemble(records []Record, params Params) Matrix {
	from, to := params.From, params.To
	if from.IsZero() || to.IsZero() {
		minStart, maxEnd := extent(records)
		if from.IsZero() {
			from = minStart
		}
		if to.IsZero() {
			to = maxEnd
		}
	}

	rowsByKey := map[string]*Row{}
	var keys []string
	for _, rec := range records {
		if !visible(rec, from, to) {
			continue
		}

		key, title, subtitle, color := rowIdentity(rec, params.Mode)
		row, ok := rowsByKey[key]
		if !ok {
			row = &Row{Key: key, Title: title, Subtitle: subtitle, Color: color}
			rowsByKey[key] = row
			keys = append(keys, key)
		}
		row.Slots = append(row.Slots, Slot{
			ID:               rec.SlotID,
			AssignmentID:     rec.AssignmentID,
			AssignmentStatus: rec.AssignmentStatus,
			Kind:             rec.Kind,
			Start:            rec.Start,
			End:              rec.End,
			WorkplaceCode:    rec.WorkplaceCode,
			WorkplaceColor:   rec.WorkplaceColor,
		})
	}

	rows := make([]Row, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, *rowsByKey[key])
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Title == rows[j].Title {
			return rows[i].Key < rows[j].Key
		}
		return rows[i].Title < rows[j].Title
	})

	total := len(rows)
	if params.Offset > 0 {
		if params.Offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[params.Offset:]
		}
	}
	if params.Limit > 0 && len(rows) > params.Limit {
		rows = rows[:params.Limit]
	}

	for i := range rows {
		intervals := make([]Interval, 0, len(rows[i].Slots))
		for _, slot := range rows[i].Slots {
			intervals = append(intervals, Interval{ID: slot.ID, Start: slot.Start, End: slot.End})
		}
		packing := PackLanes(intervals)
		for j := range rows[i].Slots {
			rows[i].Slots[j].Lane = packing.Lanes[rows[i].Slots[j].ID]
		}
		rows[i].LaneCount = packing.LaneCount
	}

	return Matrix{From: from, To: to, Rows: rows, Total: total}
}

func rowIdentity(rec Record, mode string) (key, title, subtitle, color string) {
	if mode == ModeByWorkplace {
		return rec.WorkplaceID, rec.WorkplaceName, rec.WorkplaceCode, rec.WorkplaceColor
	}
	return rec.UserID, rec.UserName, "", ""
}

func visible(rec Record, from, to time.Time) bool {
	start, end := rec.Start, rec.End
	if end.Before(start) {
		end = start
	}
	if from.IsZero() && to.IsZero() {
		return true
	}
	if start.Equal(end) {
		// Point events on the window edge stay visible.
		return !start.Before(from) && !start.After(to)
	}
	return start.Before(to) && end.After(from)
}

func extent(records []Record) (time.Time, time.Time) {
	var minStart, maxEnd time.Time
	for _, rec := range records {
		if minStart.IsZero() || rec.Start.Before(minStart) {
			minStart = rec.Start
		}
		end := rec.End
		if end.Before(rec.Start) {
			end = rec.Start
		}
		if maxEnd.IsZero() || end.After(maxEnd) {
			maxEnd = end
		}
	}
	return minStart, maxEnd
}
