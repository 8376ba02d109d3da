package authkit

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Principal is a verified caller. It only ever exists after a successful
// access-token verification; code holding a non-nil Principal can trust its
// fields without re-checking the signature.
type Principal struct {
	UserID   uuid.UUID
	Username string
	Role     UserRole
	Claims   AuthClaims
}

// HasRole reports whether the principal holds exactly one of the given roles.
func (p *Principal) HasRole(roles ...UserRole) bool {
	if p == nil {
		return false
	}
	return p.Role.In(roles...)
}

// IsAtLeast reports whether the principal's role meets the given rank.
func (p *Principal) IsAtLeast(role UserRole) bool {
	if p == nil {
		return false
	}
	return p.Role.IsAtLeast(role)
}

// Gate turns bearer tokens into principals and enforces role and permission
// requirements. Role checks read the verified claims; permission flags are
// re-read from the credential store on every check so a flag flip takes
// effect immediately instead of at next token mint.
type Gate struct {
	codec  TokenService
	users  CredentialStore
	logger Logger
}

// NewGate returns a Gate over the given codec and credential store.
func NewGate(codec TokenService, users CredentialStore) *Gate {
	return &Gate{
		codec:  codec,
		users:  users,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger.
func (g *Gate) WithLogger(logger Logger) *Gate {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// PrincipalFromToken verifies a raw access token and resolves its principal.
// Any failure, blank input, bad signature, expired token, wrong kind,
// unparseable subject id, yields a nil principal: the caller is anonymous.
// Refresh tokens are valid signatures but the wrong kind; they never mint a
// principal.
func (g *Gate) PrincipalFromToken(raw string) *Principal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	claims, err := g.codec.Validate(raw)
	if err != nil {
		g.logger.Debug("token rejected: %v", err)
		return nil
	}

	if err := RequireTokenKind(claims, TokenKindAccess); err != nil {
		g.logger.Debug("token rejected: kind %q is not an access token", claims.Kind())
		return nil
	}

	userID, err := uuid.Parse(claims.UserID())
	if err != nil {
		g.logger.Debug("token rejected: bad subject id: %v", err)
		return nil
	}

	return &Principal{
		UserID:   userID,
		Username: claims.Subject(),
		Role:     claims.Role(),
		Claims:   claims,
	}
}

// RequireRole enforces that the principal holds one of the allowed roles.
// An empty allow list only requires authentication.
func (g *Gate) RequireRole(p *Principal, allowed ...UserRole) error {
	if p == nil {
		return ErrTokenInvalid
	}

	if len(allowed) == 0 {
		return nil
	}

	if !p.HasRole(allowed...) {
		return ErrForbidden.Clone().WithMetadata(map[string]any{
			"role": string(p.Role),
		})
	}

	return nil
}

// RequireMinRole enforces that the principal's role meets the given rank.
func (g *Gate) RequireMinRole(p *Principal, role UserRole) error {
	if p == nil {
		return ErrTokenInvalid
	}

	if !p.IsAtLeast(role) {
		return ErrForbidden.Clone().WithMetadata(map[string]any{
			"role":     string(p.Role),
			"required": string(role),
		})
	}

	return nil
}

// RequirePermission enforces a per-user permission flag. The flag is read
// from the store, not from the token, so revoking a permission does not wait
// for the access token to expire. The account must still be active.
func (g *Gate) RequirePermission(ctx context.Context, p *Principal, permission Permission) error {
	if p == nil {
		return ErrTokenInvalid
	}

	user, err := g.users.FindByID(ctx, p.UserID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrTokenInvalid
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load identity for permission check")
	}

	user.EnsureStatus()
	if err := statusAuthError(user.Status); err != nil {
		return err
	}

	if !user.HasPermission(permission) {
		return ErrForbidden.Clone().WithMetadata(map[string]any{
			"permission": string(permission),
		})
	}

	return nil
}
