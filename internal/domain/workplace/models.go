package workplace

import "time"

// Workplace is a site employees can be assigned to. Code is unique within
// an organization and shows up as the short label in the planner.
type Workplace struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"orgId"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListFilter struct {
	IncludeArchived bool
	Search          string
	Limit           int
	Offset          int
}

type ListResult struct {
	Workplaces []Workplace `json:"workplaces"`
	Total      int         `json:"total"`
}
