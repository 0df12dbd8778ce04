package errors

import (
	"errors"
	"fmt"
)

var (
	// General errors.
	ErrInternal       = errors.New("internal server error")
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrForbidden      = errors.New("access denied")
	ErrUnauthorized   = errors.New("unauthorized")

	// Authentication errors.
	ErrInvalidCredentials  = errors.New("incorrect email or password")
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token has expired")
	ErrInvalidRefreshToken = errors.New("refresh token is revoked or expired")

	// User errors.
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrSamePassword       = errors.New("new password must be different from the old one")
	ErrSameEmail          = errors.New("new email must be different from the old one")
	ErrWrongPassword      = errors.New("the provided current password is incorrect")
	ErrAdminProtected     = errors.New("admin accounts cannot be deactivated or deleted")

	// Role errors.
	ErrRoleNotFound = errors.New("role not found")

	// Rate limiting.
	ErrRateLimited = errors.New("too many requests")
)

// AppError carries an original error together with a user-facing message
// and a stable API error code.
type AppError struct {
	Err  error
	Msg  string
	Code string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *AppError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a "not found" class error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrRoleNotFound)
}

// IsConflict reports whether err is a conflict class error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrEmailExists) ||
		errors.Is(err, ErrSamePassword) ||
		errors.Is(err, ErrSameEmail)
}

// IsUnauthorized reports whether err is an authentication class error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrInvalidRefreshToken)
}

// IsForbidden reports whether err is an authorization class error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrAdminProtected)
}

// IsBadRequest reports whether err is a malformed-input class error.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrWrongPassword)
}
