package requests

import "time"

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// IntervalProposal is one proposed working interval within a day.
type IntervalProposal struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Kind  string    `json:"kind"`
}

// DayProposal groups proposed intervals for one calendar date (YYYY-MM-DD).
// Proposals travel as a structured field, the comment stays a human note.
type DayProposal struct {
	Date      string             `json:"date"`
	Intervals []IntervalProposal `json:"intervals"`
}

// AdjustmentRequest is an employee's proposal to change the shifts of an
// existing assignment.
type AdjustmentRequest struct {
	ID             string        `json:"id"`
	OrgID          string        `json:"orgId"`
	AssignmentID   string        `json:"assignmentId"`
	RequesterID    string        `json:"requesterId"`
	RequesterName  string        `json:"requesterName,omitempty"`
	ProposedDays   []DayProposal `json:"proposedDays"`
	Comment        string        `json:"comment"`
	Status         string        `json:"status"`
	ManagerComment string        `json:"managerComment,omitempty"`
	DecidedBy      string        `json:"decidedBy,omitempty"`
	DecidedAt      *time.Time    `json:"decidedAt,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// AssignmentRequest is an employee's proposal for a brand-new assignment.
type AssignmentRequest struct {
	ID             string        `json:"id"`
	OrgID          string        `json:"orgId"`
	WorkplaceID    string        `json:"workplaceId"`
	RequesterID    string        `json:"requesterId"`
	RequesterName  string        `json:"requesterName,omitempty"`
	StartAt        time.Time     `json:"startAt"`
	EndAt          *time.Time    `json:"endAt,omitempty"`
	ProposedDays   []DayProposal `json:"proposedDays,omitempty"`
	Comment        string        `json:"comment"`
	Status         string        `json:"status"`
	ManagerComment string        `json:"managerComment,omitempty"`
	DecidedBy      string        `json:"decidedBy,omitempty"`
	DecidedAt      *time.Time    `json:"decidedAt,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
}

type ListFilter struct {
	RequesterID string
	Status      string
	Limit       int
	Offset      int
}

type AdjustmentList struct {
	Requests []AdjustmentRequest `json:"requests"`
	Total    int                 `json:"total"`
}

type AssignmentList struct {
	Requests []AssignmentRequest `json:"requests"`
	Total    int                 `json:"total"`
}

// Decision is the manager's verdict on a pending request.
type Decision struct {
	DeciderID string
	Approve   bool
	Comment   string
}
