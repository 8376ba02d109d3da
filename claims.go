package authkit

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates access tokens from refresh tokens. The kind is a
// signed claim; callers must check it explicitly, a refresh token is never
// accepted where an access token is expected and vice versa.
type TokenKind string

const (
	// TokenKindAccess is the short-lived per-request credential.
	TokenKindAccess TokenKind = "access"
	// TokenKindRefresh is the long-lived, store-backed session credential.
	TokenKindRefresh TokenKind = "refresh"
)

// IsValid checks if the kind is one of the two known token kinds.
func (k TokenKind) IsValid() bool {
	return k == TokenKindAccess || k == TokenKindRefresh
}

// AuthClaims is the verified view of a token's payload. Instances only
// exist after a successful signature check.
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() UserRole
	Kind() TokenKind
	Expires() time.Time
	IssuedAt() time.Time
	HasRole(role UserRole) bool
	IsAtLeast(minRole UserRole) bool
}

// JWTClaims is the concrete claim set carried inside issued tokens.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID       string    `json:"uid,omitempty"`
	UserRole  UserRole  `json:"role,omitempty"`
	TokenKind TokenKind `json:"kind,omitempty"`
}

var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim (the identity's username).
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the identity id claim, falling back to the subject.
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Role returns the role claim.
func (c *JWTClaims) Role() UserRole {
	return c.UserRole
}

// Kind returns the token kind claim.
func (c *JWTClaims) Kind() TokenKind {
	return c.TokenKind
}

// HasRole checks if the claims carry the given role.
func (c *JWTClaims) HasRole(role UserRole) bool {
	return c.UserRole == role
}

// IsAtLeast checks if the claimed role meets the minimum required level.
func (c *JWTClaims) IsAtLeast(minRole UserRole) bool {
	return c.UserRole.IsAtLeast(minRole)
}

// Expires returns the expiration time.
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time.
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// RequireTokenKind enforces that verified claims carry the expected kind. The
// kind is part of the signed payload; callers check it explicitly at each
// trust boundary instead of assuming it from context.
func RequireTokenKind(claims AuthClaims, kind TokenKind) error {
	if claims == nil || claims.Kind() != kind {
		return ErrTokenKindMismatch
	}
	return nil
}
