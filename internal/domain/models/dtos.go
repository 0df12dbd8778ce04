package models

import "time"

// RegisterRequest is the payload of POST /api/auth/register.
type RegisterRequest struct {
	FirstName   string     `json:"first_name" binding:"required,min=2,max=50"`
	LastName    string     `json:"last_name" binding:"required,min=2,max=50"`
	Email       string     `json:"email" binding:"required,email,max=50"`
	Password    string     `json:"password" binding:"required,strongpwd"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

// LoginRequest is the payload of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// UpdateProfileRequest is the payload of PUT /api/profile.
// Nil fields leave the stored values unchanged.
type UpdateProfileRequest struct {
	FirstName   *string    `json:"first_name,omitempty" binding:"omitempty,min=2,max=50"`
	LastName    *string    `json:"last_name,omitempty" binding:"omitempty,min=2,max=50"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

// ChangeEmailRequest is the payload of PUT /api/profile/change-email.
type ChangeEmailRequest struct {
	NewEmail string `json:"new_email" binding:"required,email,max=50"`
}

// ChangePasswordRequest is the payload of PUT /api/profile/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required,min=8"`
	NewPassword     string `json:"new_password" binding:"required,strongpwd"`
}

// ResetPasswordRequest is the payload of POST /api/admin/reset-password.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"new_password" binding:"required,strongpwd"`
}
