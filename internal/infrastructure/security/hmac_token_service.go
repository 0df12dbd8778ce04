package security

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/clearpath/auth-service/internal/config"
	domainErrors "github.com/clearpath/auth-service/internal/domain/errors"
	"github.com/clearpath/auth-service/internal/domain/interfaces"
	"github.com/clearpath/auth-service/internal/domain/models"
)

// hmacTokenService implements interfaces.TokenService with HS256-signed
// access tokens and opaque random refresh tokens.
type hmacTokenService struct {
	secret []byte
	cfg    config.JWTConfig
}

// NewHMACTokenService creates a token service from the JWT configuration.
func NewHMACTokenService(cfg config.JWTConfig) (interfaces.TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret must be configured")
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("jwt issuer and audience must be configured")
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, errors.New("access token TTL must be positive")
	}
	if cfg.RefreshTokenByteLength < 32 {
		return nil, errors.New("refresh token byte length must be at least 32")
	}
	return &hmacTokenService{secret: []byte(cfg.Secret), cfg: cfg}, nil
}

// GenerateAccessToken signs a claims token for the user. The subject is the
// user id, the jti is unique per token, and the role claims reflect the
// roles held at issuance.
func (s *hmacTokenService) GenerateAccessToken(user *models.User, roles []string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTokenTTL)

	claimRoles := []string{models.RoleUser}
	if models.ContainsRole(roles, models.RoleAdmin) {
		claimRoles = append(claimRoles, models.RoleAdmin)
	}

	claims := &models.AccessTokenClaims{
		Email: user.Email,
		Name:  user.FullName(),
		Roles: claimRoles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateAccessToken checks signature, issuer, audience and expiry.
func (s *hmacTokenService) ValidateAccessToken(tokenString string) (*models.AccessTokenClaims, error) {
	return s.parse(tokenString, jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
		jwt.WithExpirationRequired(),
	))
}

// ParseAccessTokenAllowExpired verifies everything except the expiry. Logout
// uses this so a stale access token can still identify the account.
func (s *hmacTokenService) ParseAccessTokenAllowExpired(tokenString string) (*models.AccessTokenClaims, error) {
	claims, err := s.parse(tokenString, jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	))
	if err != nil {
		return nil, err
	}
	// Issuer and audience still have to match; only the time checks are waived.
	if claims.Issuer != s.cfg.Issuer {
		return nil, domainErrors.ErrInvalidToken
	}
	var audienceOK bool
	for _, aud := range claims.Audience {
		if aud == s.cfg.Audience {
			audienceOK = true
			break
		}
	}
	if !audienceOK {
		return nil, domainErrors.ErrInvalidToken
	}
	return claims, nil
}

func (s *hmacTokenService) parse(tokenString string, parser *jwt.Parser) (*models.AccessTokenClaims, error) {
	token, err := parser.ParseWithClaims(tokenString, &models.AccessTokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", domainErrors.ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %w", domainErrors.ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*models.AccessTokenClaims)
	if !ok || !token.Valid {
		return nil, domainErrors.ErrInvalidToken
	}
	return claims, nil
}

// GenerateRefreshToken returns a base64-encoded random value with no
// structure or embedded claims.
func (s *hmacTokenService) GenerateRefreshToken() (string, error) {
	buf := make([]byte, s.cfg.RefreshTokenByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

var _ interfaces.TokenService = (*hmacTokenService)(nil)
