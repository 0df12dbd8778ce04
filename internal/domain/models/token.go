package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPair is the result of a successful login or refresh. Both tokens are
// delivered to the client as HTTP-only cookies whose lifetimes match the
// token expiries carried here.
type TokenPair struct {
	AccessToken           string    `json:"-"`
	AccessTokenExpiresAt  time.Time `json:"-"`
	RefreshToken          string    `json:"-"`
	RefreshTokenExpiresAt time.Time `json:"-"`
}

// AccessTokenClaims is the claim set carried by access tokens. Subject is the
// user id; Roles always contains the base role and additionally the admin
// role when the account holds it at issuance time.
type AccessTokenClaims struct {
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims carry the given role.
func (c *AccessTokenClaims) HasRole(role string) bool {
	return ContainsRole(c.Roles, role)
}
