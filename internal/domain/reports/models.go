package reports

import "time"

// WorkReport is an employee's self-reported hours for one calendar day.
// One row per (employee, date); repeat submissions overwrite.
type WorkReport struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"orgId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	WorkDate  time.Time `json:"workDate"`
	Hours     float64   `json:"hours"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Statistic compares what an employee reported against what was scheduled
// for them over a range. Scheduled hours exclude DAY_OFF shifts.
type Statistic struct {
	UserID         string  `json:"userId"`
	UserName       string  `json:"userName"`
	ReportedHours  float64 `json:"reportedHours"`
	ScheduledHours float64 `json:"scheduledHours"`
	DaysReported   int     `json:"daysReported"`
}

// ExportRow is one line of a schedule export: a shift joined with its
// assignment, employee and workplace.
type ExportRow struct {
	Date          time.Time
	EmployeeName  string
	WorkplaceCode string
	WorkplaceName string
	Kind          string
	StartAt       time.Time
	EndAt         time.Time
	Hours         float64
}

type RangeFilter struct {
	From   time.Time
	To     time.Time
	UserID string
}
