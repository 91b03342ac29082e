package user

import "time"

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleManager   Role = "MANAGER"
	RoleExecutive Role = "EXECUTIVE"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleExecutive:
		return true
	}
	return false
}

type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Mobile       string     `json:"mobile"`
	ManagerID    *int64     `json:"manager_id,omitempty"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   int64
	Role Role
}
