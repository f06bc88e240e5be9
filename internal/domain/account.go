package domain

import "time"

// Role gates access to campaign operations. Only admins may drive
// lifecycle transitions.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleOrganizer Role = "ORGANIZER"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleOrganizer
}

// Account is an organization-scoped dashboard login resolved from an API
// token by the auth middleware.
type Account struct {
	ID        string
	OrgID     string
	Email     string
	Role      Role
	APIToken  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the account may invoke mutating transitions.
func (a Account) IsAdmin() bool { return a.Role == RoleAdmin }
