package models

import (
	"time"

	"github.com/google/uuid"
)

// Role names known to the service. Every account carries RoleUser; RoleAdmin
// is granted and removed through the admin endpoints only.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultRoles is the role catalog ensured at startup.
var DefaultRoles = []string{RoleUser, RoleAdmin}

// Role represents a row of the roles table.
type Role struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ListRolesParams defines filtering and pagination for role listings.
type ListRolesParams struct {
	Page        int
	PageSize    int
	Search      string
	OrderByName bool
}

// ContainsRole reports whether names contains the given role name.
func ContainsRole(names []string, role string) bool {
	for _, n := range names {
		if n == role {
			return true
		}
	}
	return false
}
