package schedule

import "time"

const (
	StatusActive   = "ACTIVE"
	StatusArchived = "ARCHIVED"
)

const (
	ShiftKindDefault = "DEFAULT"
	ShiftKindOffice  = "OFFICE"
	ShiftKindRemote  = "REMOTE"
	ShiftKindDayOff  = "DAY_OFF"
)

var ShiftKinds = []string{ShiftKindDefault, ShiftKindOffice, ShiftKindRemote, ShiftKindDayOff}

type Assignment struct {
	ID            string     `json:"id"`
	OrgID         string     `json:"orgId"`
	UserID        string     `json:"userId"`
	UserName      string     `json:"userName,omitempty"`
	WorkplaceID   string     `json:"workplaceId"`
	WorkplaceCode string     `json:"workplaceCode,omitempty"`
	WorkplaceName string     `json:"workplaceName,omitempty"`
	Status        string     `json:"status"`
	StartAt       time.Time  `json:"startAt"`
	EndAt         *time.Time `json:"endAt,omitempty"`
	TrashedAt     *time.Time `json:"trashedAt,omitempty"`
	Shifts        []Shift    `json:"shifts,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type Shift struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignmentId,omitempty"`
	WorkDate     time.Time `json:"workDate"`
	StartAt      time.Time `json:"startAt"`
	EndAt        time.Time `json:"endAt"`
	Kind         string    `json:"kind"`
}

type ListFilter struct {
	Status      string
	UserID      string
	WorkplaceID string
	Trashed     bool
	Limit       int
	Offset      int
}

type ListResult struct {
	Assignments []Assignment `json:"assignments"`
	Total       int          `json:"total"`
}
