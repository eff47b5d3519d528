package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Staff roles.
const (
	RoleLibrarian = "LIBRARIAN"
	RoleManager   = "MANAGER"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int       `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `bun:",nullzero" json:"username"`
	PasswordHash string    `json:"-"` // Never expose password hash
	Role         string    `bun:",nullzero" json:"role"`
	IsActive     bool      `json:"is_active"`
}

// HasRole checks if the user holds any of the given roles.
func (u *User) HasRole(roles ...string) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// IsManager reports whether the user has the manager role.
func (u *User) IsManager() bool {
	return u.Role == RoleManager
}
