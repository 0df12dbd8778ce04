package interfaces

import (
	"time"

	"github.com/clearpath/auth-service/internal/domain/models"
)

// TokenService issues and verifies the two token kinds of the session
// lifecycle: signed claim-bearing access tokens and opaque refresh tokens.
type TokenService interface {
	// GenerateAccessToken signs a claims token for the user. roles must be
	// the roles currently held; the admin claim is present only when held.
	GenerateAccessToken(user *models.User, roles []string) (token string, expiresAt time.Time, err error)

	// ValidateAccessToken checks signature, issuer, audience and expiry.
	ValidateAccessToken(token string) (*models.AccessTokenClaims, error)

	// ParseAccessTokenAllowExpired verifies signature, issuer and audience
	// but tolerates an elapsed expiry. Used by logout, which must not fail
	// on credential staleness.
	ParseAccessTokenAllowExpired(token string) (*models.AccessTokenClaims, error)

	// GenerateRefreshToken returns a cryptographically random opaque value
	// with no embedded structure.
	GenerateRefreshToken() (string, error)
}
