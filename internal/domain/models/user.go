package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the user row. The refresh_token / refresh_token_expires_at
// pair is the whole of the session state: both null means no active session,
// and the two fields are always written together.
type User struct {
	ID                    uuid.UUID  `json:"id" db:"id"`
	Email                 string     `json:"email" db:"email"`
	PasswordHash          string     `json:"-" db:"password_hash"`
	FirstName             string     `json:"first_name" db:"first_name"`
	LastName              string     `json:"last_name" db:"last_name"`
	DateOfBirth           *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	RefreshToken          *string    `json:"-" db:"refresh_token"`
	RefreshTokenExpiresAt *time.Time `json:"-" db:"refresh_token_expires_at"`
	IsDeactivated         bool       `json:"is_deactivated" db:"is_deactivated"`
	IsDeleted             bool       `json:"is_deleted" db:"is_deleted"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
	Roles                 []string   `json:"roles,omitempty" db:"-"` // Loaded separately
}

// FullName returns the display name used in access-token claims.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// HasActiveSession reports whether a refresh token is currently stored.
func (u *User) HasActiveSession() bool {
	return u.RefreshToken != nil
}

// ListUsersParams defines filtering, ordering and pagination for user listings.
type ListUsersParams struct {
	Page          int
	PageSize      int
	Search        string
	IsDeleted     bool
	IsDeactivated bool
	OrderByName   bool
	AdminsOnly    bool
}

// UserResponse is the user representation returned by API endpoints.
type UserResponse struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	IsDeactivated bool       `json:"is_deactivated"`
	IsDeleted     bool       `json:"is_deleted"`
	CreatedAt     time.Time  `json:"created_at"`
	Roles         []string   `json:"roles,omitempty"`
}

// ToResponse converts a User to its API representation.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		DateOfBirth:   u.DateOfBirth,
		IsDeactivated: u.IsDeactivated,
		IsDeleted:     u.IsDeleted,
		CreatedAt:     u.CreatedAt,
		Roles:         u.Roles,
	}
}
