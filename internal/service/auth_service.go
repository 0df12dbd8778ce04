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

// AuthService owns the session/token lifecycle: registration, credential
// checks, access/refresh issuance, rotation-on-refresh and revocation.
// All session state lives on the user row; the service itself holds no
// mutable state between requests.
type AuthService struct {
	users     repository.UserRepository
	roles     repository.RoleRepository
	passwords interfaces.PasswordService
	tokens    interfaces.TokenService
	jwtCfg    config.JWTConfig
	logger    *zap.Logger

	// dummyHash is verified against when a login names an unknown email so
	// both login failure paths cost one argon2 computation.
	dummyHash string
}

// NewAuthService creates the lifecycle service.
func NewAuthService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	passwords interfaces.PasswordService,
	tokens interfaces.TokenService,
	jwtCfg config.JWTConfig,
	logger *zap.Logger,
) (*AuthService, error) {
	throwaway, err := tokens.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate timing-equalization input: %w", err)
	}
	dummyHash, err := passwords.HashPassword(throwaway)
	if err != nil {
		return nil, fmt.Errorf("failed to compute timing-equalization hash: %w", err)
	}
	return &AuthService{
		users:     users,
		roles:     roles,
		passwords: passwords,
		tokens:    tokens,
		jwtCfg:    jwtCfg,
		logger:    logger.Named("auth_service"),
		dummyHash: dummyHash,
	}, nil
}

// Register creates a new account with the base role assigned. No tokens are
// issued; the caller must log in separately.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, domainErrors.ErrEmailExists
	} else if !errors.Is(err, domainErrors.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check for existing email: %w", err)
	}

	passwordHash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		DateOfBirth:  req.DateOfBirth,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.roles.AddToUser(ctx, user.ID, models.RoleUser); err != nil {
		return nil, fmt.Errorf("failed to assign base role: %w", err)
	}
	user.Roles = []string{models.RoleUser}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login verifies credentials and issues a fresh access/refresh pair,
// overwriting any previous session. Unknown email and wrong password are
// indistinguishable to the caller, in message and in hashing cost.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, *models.User, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			// Burn one hash verification so the missing-account path is not
			// observably faster than a wrong password.
			_, _ = s.passwords.CheckPasswordHash(req.Password, s.dummyHash)
			return nil, nil, domainErrors.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	match, err := s.passwords.CheckPasswordHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return nil, nil, domainErrors.ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	return pair, user, nil
}

// Refresh performs the mandatory rotate-on-use: the presented token is
// matched against stored state, checked for expiry, and atomically replaced
// by a brand-new pair. A presented value that no longer matches any stored
// token (including one that just lost a concurrent-refresh race) fails
// uniformly as unauthorized.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*models.TokenPair, *models.User, error) {
	if presented == "" {
		return nil, nil, domainErrors.ErrInvalidRefreshToken
	}

	user, err := s.users.FindByRefreshToken(ctx, presented)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return nil, nil, domainErrors.ErrInvalidRefreshToken
		}
		return nil, nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	// Expired tokens are rejected without touching stored state; the pair is
	// cleared by logout or revocation, never by a failed refresh.
	if user.RefreshTokenExpiresAt == nil || user.RefreshTokenExpiresAt.Before(time.Now()) {
		return nil, nil, domainErrors.ErrInvalidRefreshToken
	}

	newRefresh, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refreshExpiresAt := time.Now().Add(s.jwtCfg.RefreshTokenTTL)

	rotated, err := s.users.RotateRefreshToken(ctx, presented, newRefresh, refreshExpiresAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if !rotated {
		return nil, nil, domainErrors.ErrInvalidRefreshToken
	}

	roles, err := s.roles.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load roles: %w", err)
	}
	user.Roles = roles

	accessToken, accessExpiresAt, err := s.tokens.GenerateAccessToken(user, roles)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	s.logger.Info("refresh token rotated", zap.String("user_id", user.ID.String()))
	return &models.TokenPair{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          newRefresh,
		RefreshTokenExpiresAt: refreshExpiresAt,
	}, user, nil
}

// Logout revokes the user's refresh session. Unknown accounts are tolerated:
// logout never fails because credentials went stale first.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	err := s.RevokeRefreshToken(ctx, userID)
	if err != nil && !errors.Is(err, domainErrors.ErrUserNotFound) {
		return err
	}
	return nil
}

// RevokeSessionByToken clears the session currently holding the given
// refresh token. A token that matches no session is ignored: the session it
// belonged to is already gone.
func (s *AuthService) RevokeSessionByToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	user, err := s.users.FindByRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up refresh token: %w", err)
	}
	return s.Logout(ctx, user.ID)
}

// RevokeRefreshToken clears the refresh-token pair. Revoking an account with
// no active session is a no-op, not an error.
func (s *AuthService) RevokeRefreshToken(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.SetRefreshToken(ctx, userID, nil, nil); err != nil {
		return err
	}
	s.logger.Info("refresh token revoked", zap.String("user_id", userID.String()))
	return nil
}

// issueTokenPair creates and persists a new session for the user.
func (s *AuthService) issueTokenPair(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	roles, err := s.roles.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	user.Roles = roles

	accessToken, accessExpiresAt, err := s.tokens.GenerateAccessToken(user, roles)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refreshExpiresAt := time.Now().Add(s.jwtCfg.RefreshTokenTTL)

	if err := s.users.SetRefreshToken(ctx, user.ID, &refreshToken, &refreshExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &models.TokenPair{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: refreshExpiresAt,
	}, nil
}
