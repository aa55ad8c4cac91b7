package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"terravista/internal/model"
)

// Claims is the decoded token payload. On the wire it is the plain
// `{jti, sub, iat, exp, type}` shape; everything else stays out of the
// token.
type Claims struct {
	jwt.RegisteredClaims
	TokenType model.TokenType `json:"type"`
}

// UserID returns the subject claim
func (c *Claims) UserID() string {
	return c.RegisteredClaims.Subject
}

// UserUUID parses the subject claim as a UUID
func (c *Claims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.RegisteredClaims.Subject)
}

// Expires returns the expiration time
func (c *Claims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued-at time
func (c *Claims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

func newClaims(userID string, issuedAt, expiresAt time.Time, typ model.TokenType) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// jti keeps tokens minted in the same second distinct
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: typ,
	}
}
