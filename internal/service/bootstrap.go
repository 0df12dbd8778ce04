package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clearpath/auth-service/internal/config"
	domainErrors "github.com/clearpath/auth-service/internal/domain/errors"
	"github.com/clearpath/auth-service/internal/domain/interfaces"
	"github.com/clearpath/auth-service/internal/domain/models"
	"github.com/clearpath/auth-service/internal/domain/repository"
)

// EnsureDefaultRoles creates the role catalog entries the service depends on.
// Safe to run on every boot.
func EnsureDefaultRoles(ctx context.Context, roles repository.RoleRepository, logger *zap.Logger) error {
	if err := roles.EnsureExists(ctx, models.DefaultRoles); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}
	logger.Info("default roles ensured", zap.Strings("roles", models.DefaultRoles))
	return nil
}

// EnsureInitialAdmin creates the bootstrap admin account from configuration
// when it does not exist yet, or promotes the existing account if it lost the
// role. Disabled when no initial admin is configured.
func EnsureInitialAdmin(
	ctx context.Context,
	users repository.UserRepository,
	roles repository.RoleRepository,
	passwords interfaces.PasswordService,
	cfg config.InitialAdminConfig,
	logger *zap.Logger,
) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Email == "" || cfg.Password == "" {
		return errors.New("initial admin is enabled but email or password is empty")
	}

	user, err := users.FindByEmail(ctx, cfg.Email)
	switch {
	case err == nil:
		// Account exists; make sure it still holds both roles.
	case errors.Is(err, domainErrors.ErrUserNotFound):
		hash, hashErr := passwords.HashPassword(cfg.Password)
		if hashErr != nil {
			return fmt.Errorf("failed to hash initial admin password: %w", hashErr)
		}
		now := time.Now()
		user = &models.User{
			ID:           uuid.New(),
			Email:        cfg.Email,
			PasswordHash: hash,
			FirstName:    "System",
			LastName:     "Administrator",
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if createErr := users.Create(ctx, user); createErr != nil {
			return fmt.Errorf("failed to create initial admin: %w", createErr)
		}
		logger.Info("initial admin account created", zap.String("email", cfg.Email))
	default:
		return fmt.Errorf("failed to look up initial admin: %w", err)
	}

	if err := roles.AddToUser(ctx, user.ID, models.RoleUser); err != nil {
		return fmt.Errorf("failed to assign base role to initial admin: %w", err)
	}
	if err := roles.AddToUser(ctx, user.ID, models.RoleAdmin); err != nil {
		return fmt.Errorf("failed to assign admin role to initial admin: %w", err)
	}
	return nil
}
