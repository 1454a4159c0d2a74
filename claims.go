package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the read side of a validated token.
type AuthClaims interface {
	// Subject is the username the token was minted for.
	Subject() string
	// UserID is the numeric account id embedded at mint time.
	UserID() int64
	// Role is the role snapshot embedded at mint time. It is advisory
	// only; authorization decisions re-read the live record.
	Role() string
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete claim set we sign. The subject carries the
// username, with the numeric id and role snapshot as custom claims.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      int64  `json:"id,omitempty"`
	UserRole string `json:"role,omitempty"`
}

func (c JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

func (c JWTClaims) UserID() int64 {
	return c.UID
}

func (c JWTClaims) Role() string {
	return c.UserRole
}

func (c JWTClaims) Expires() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

func (c JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.IssuedAt.Time
}
