package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/clearpath/auth-service/internal/domain/models"
)

// RoleRepository is the persistence contract for the role catalog and the
// user/role membership relation.
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*models.Role, error)
	// EnsureExists creates any of the named roles that are missing.
	EnsureExists(ctx context.Context, names []string) error
	// ListForUser returns the role names assigned to a user.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]string, error)
	// AddToUser assigns a role to a user; assigning an already-held role is a no-op.
	AddToUser(ctx context.Context, userID uuid.UUID, roleName string) error
	// RemoveFromUser removes a role from a user; removing an unheld role is a no-op.
	RemoveFromUser(ctx context.Context, userID uuid.UUID, roleName string) error
	List(ctx context.Context, params models.ListRolesParams) ([]*models.Role, int64, error)
}
