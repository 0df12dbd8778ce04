package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clearpath/auth-service/internal/domain/interfaces"
	"github.com/clearpath/auth-service/internal/domain/models"
	"github.com/clearpath/auth-service/internal/domain/repository"
)

// defaultPageSize applies when a listing request omits pagination.
const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

// AdminService implements the privileged operations: account lookup and
// listings, role grants and revocations, forced password resets, session
// revocation, soft-delete reversal and permanent removal.
type AdminService struct {
	users     repository.UserRepository
	roles     repository.RoleRepository
	passwords interfaces.PasswordService
	logger    *zap.Logger
}

func NewAdminService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	passwords interfaces.PasswordService,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		users:     users,
		roles:     roles,
		passwords: passwords,
		logger:    logger.Named("admin_service"),
	}
}

// GetUserByID returns any account, including deactivated and soft-deleted
// ones, with roles loaded.
func (s *AdminService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.loadWithRoles(ctx, id)
}

// GetUserByEmail returns any account by email with roles loaded.
func (s *AdminService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	roles, err := s.roles.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	user.Roles = roles
	return user, nil
}

// ListUsers returns a paginated page of accounts matching the filters.
func (s *AdminService) ListUsers(ctx context.Context, params models.ListUsersParams) (models.CollectionResponse[models.UserResponse], error) {
	normalizeUserParams(&params)

	users, total, err := s.users.List(ctx, params)
	if err != nil {
		return models.CollectionResponse[models.UserResponse]{}, err
	}

	items := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		roles, err := s.roles.ListForUser(ctx, u.ID)
		if err != nil {
			return models.CollectionResponse[models.UserResponse]{}, fmt.Errorf("failed to load roles: %w", err)
		}
		u.Roles = roles
		items = append(items, u.ToResponse())
	}
	return models.NewCollectionResponse(items, params.Page, params.PageSize, total), nil
}

// ListAdmins returns a paginated page of accounts holding the admin role.
func (s *AdminService) ListAdmins(ctx context.Context, params models.ListUsersParams) (models.CollectionResponse[models.UserResponse], error) {
	params.AdminsOnly = true
	return s.ListUsers(ctx, params)
}

// ListRoles returns a paginated page of the role catalog.
func (s *AdminService) ListRoles(ctx context.Context, params models.ListRolesParams) (models.CollectionResponse[*models.Role], error) {
	if params.Page < 1 {
		params.Page = defaultPage
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}

	roles, total, err := s.roles.List(ctx, params)
	if err != nil {
		return models.CollectionResponse[*models.Role]{}, err
	}
	return models.NewCollectionResponse(roles, params.Page, params.PageSize, total), nil
}

// PromoteToAdminByID grants the admin role. Promoting an existing admin is
// a no-op. Returns the resulting role set.
func (s *AdminService) PromoteToAdminByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.promote(ctx, user)
}

// PromoteToAdminByEmail grants the admin role, looking the account up by email.
func (s *AdminService) PromoteToAdminByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.promote(ctx, user)
}

// DemoteFromAdminByID removes the admin role. Demoting a non-admin is a no-op.
func (s *AdminService) DemoteFromAdminByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.demote(ctx, user)
}

// DemoteFromAdminByEmail removes the admin role, looking the account up by email.
func (s *AdminService) DemoteFromAdminByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.demote(ctx, user)
}

// RevokeRefreshToken force-terminates the account's session.
func (s *AdminService) RevokeRefreshToken(ctx context.Context, id uuid.UUID) error {
	if err := s.users.SetRefreshToken(ctx, id, nil, nil); err != nil {
		return err
	}
	s.logger.Info("session revoked by admin", zap.String("user_id", id.String()))
	return nil
}

// ResetPassword sets a new password for the account and revokes its session
// so the old credentials cannot keep a session alive.
func (s *AdminService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
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
	if err := s.users.SetRefreshToken(ctx, user.ID, nil, nil); err != nil {
		return err
	}

	s.logger.Info("password reset by admin", zap.String("user_id", user.ID.String()))
	return nil
}

// RevertSoftDelete clears the deleted flag. Reverting a live account is a no-op.
func (s *AdminService) RevertSoftDelete(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.loadWithRoles(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsDeleted {
		return user, nil
	}

	user.IsDeleted = false
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("soft delete reverted", zap.String("user_id", id.String()))
	return user, nil
}

// HardDelete permanently removes the account row and its role assignments.
func (s *AdminService) HardDelete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("account permanently deleted", zap.String("user_id", id.String()))
	return nil
}

func (s *AdminService) promote(ctx context.Context, user *models.User) (*models.User, error) {
	if err := s.roles.AddToUser(ctx, user.ID, models.RoleAdmin); err != nil {
		return nil, err
	}
	roles, err := s.roles.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	user.Roles = roles

	s.logger.Info("user promoted to admin", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *AdminService) demote(ctx context.Context, user *models.User) (*models.User, error) {
	if err := s.roles.RemoveFromUser(ctx, user.ID, models.RoleAdmin); err != nil {
		return nil, err
	}
	roles, err := s.roles.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	user.Roles = roles

	s.logger.Info("user demoted from admin", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *AdminService) loadWithRoles(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	roles, err := s.roles.ListForUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	user.Roles = roles
	return user, nil
}

func normalizeUserParams(params *models.ListUsersParams) {
	if params.Page < 1 {
		params.Page = defaultPage
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}
}
