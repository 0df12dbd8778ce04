package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clearpath/auth-service/internal/domain/models"
)

// UserRepository is the persistence contract for user rows and the
// refresh-token session state stored on them.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByRefreshToken locates the account whose stored refresh token
	// equals the supplied value. Returns ErrUserNotFound when no row matches.
	FindByRefreshToken(ctx context.Context, token string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error

	// SetRefreshToken writes the refresh-token pair on the user row. Both
	// values are either non-nil (new session) or nil (revocation); the two
	// fields are never written independently.
	SetRefreshToken(ctx context.Context, id uuid.UUID, token *string, expiresAt *time.Time) error

	// RotateRefreshToken atomically replaces oldToken with newToken, keyed on
	// the currently stored value. It reports false when no row held oldToken
	// anymore, which means another rotation or a revocation won the race.
	RotateRefreshToken(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (bool, error)

	List(ctx context.Context, params models.ListUsersParams) ([]*models.User, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
