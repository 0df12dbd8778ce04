package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/clearpath/auth-service/internal/domain/errors"
	"github.com/clearpath/auth-service/internal/domain/interfaces"
	"github.com/clearpath/auth-service/internal/domain/models"
	"github.com/clearpath/auth-service/internal/domain/repository"
)

// ProfileService implements self-service account management for the
// authenticated user: profile reads and edits, credential changes,
// deactivation and soft deletion.
type ProfileService struct {
	users     repository.UserRepository
	roles     repository.RoleRepository
	passwords interfaces.PasswordService
	logger    *zap.Logger
}

func NewProfileService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	passwords interfaces.PasswordService,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		users:     users,
		roles:     roles,
		passwords: passwords,
		logger:    logger.Named("profile_service"),
	}
}

// GetProfile returns the user's account with roles loaded.
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.loadWithRoles(ctx, userID)
}

// UpdateProfile applies the provided name and date-of-birth fields. Absent
// fields keep their stored values.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.loadWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.DateOfBirth != nil {
		user.DateOfBirth = req.DateOfBirth
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangeEmail sets a new email address. The caller must log in again
// afterwards: the handler revokes the session.
func (s *ProfileService) ChangeEmail(ctx context.Context, userID uuid.UUID, req models.ChangeEmailRequest) (*models.User, error) {
	user, err := s.loadWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(user.Email, req.NewEmail) {
		return nil, domainErrors.ErrSameEmail
	}

	user.Email = req.NewEmail
	user.UpdatedAt = time.Now()

	// Update surfaces ErrEmailExists when the address is already taken.
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("email changed", zap.String("user_id", userID.String()))
	return user, nil
}

// ChangePassword replaces the password after verifying the current one.
// The new password must differ from the current password.
func (s *ProfileService) ChangePassword(ctx context.Context, userID uuid.UUID, req models.ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	match, err := s.passwords.CheckPasswordHash(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return domainErrors.ErrWrongPassword
	}
	if req.NewPassword == req.CurrentPassword {
		return domainErrors.ErrSamePassword
	}

	hash, err := s.passwords.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hash
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.String("user_id", userID.String()))
	return nil
}

// Deactivate marks the account inactive. Admin accounts cannot be
// deactivated. Deactivating an already inactive account is a no-op.
func (s *ProfileService) Deactivate(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.loadWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if models.ContainsRole(user.Roles, models.RoleAdmin) {
		return nil, domainErrors.ErrAdminProtected
	}
	if user.IsDeactivated {
		return user, nil
	}

	user.IsDeactivated = true
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("account deactivated", zap.String("user_id", userID.String()))
	return user, nil
}

// Reactivate clears the inactive flag. Already active accounts are a no-op.
func (s *ProfileService) Reactivate(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.loadWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsDeactivated {
		return user, nil
	}

	user.IsDeactivated = false
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("account reactivated", zap.String("user_id", userID.String()))
	return user, nil
}

// SoftDelete marks the account deleted without removing the row. Admin
// accounts cannot be soft-deleted. The handler revokes the session.
func (s *ProfileService) SoftDelete(ctx context.Context, userID uuid.UUID) error {
	user, err := s.loadWithRoles(ctx, userID)
	if err != nil {
		return err
	}
	if models.ContainsRole(user.Roles, models.RoleAdmin) {
		return domainErrors.ErrAdminProtected
	}
	if user.IsDeleted {
		return nil
	}

	user.IsDeleted = true
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("account soft-deleted", zap.String("user_id", userID.String()))
	return nil
}

func (s *ProfileService) loadWithRoles(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	roles, err := s.roles.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	user.Roles = roles
	return user, nil
}
