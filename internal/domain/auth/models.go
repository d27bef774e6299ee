package auth

import "time"

type User struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"orgId"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserContext is the per-request identity attached by the auth middleware.
type UserContext struct {
	UserID string
	OrgID  string
	Role   string
}

func (u UserContext) Can(capability string) bool {
	return Can(u.Role, capability)
}
