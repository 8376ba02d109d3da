package authkit

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeIdentityNotFound   = "IDENTITY_NOT_FOUND"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeAccountNotActive   = "ACCOUNT_NOT_ACTIVE"
	TextCodeDuplicateResource  = "DUPLICATE_RESOURCE"
	TextCodeValidationFailed   = "VALIDATION_FAILED"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenRevoked       = "TOKEN_REVOKED"
	TextCodeTokenInvalid       = "TOKEN_INVALID"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeTokenSignature     = "TOKEN_SIGNATURE_INVALID"
	TextCodeTokenKindMismatch  = "TOKEN_KIND_MISMATCH"
	TextCodeTokenOwnership     = "TOKEN_OWNER_MISMATCH"
	TextCodeForbidden          = "FORBIDDEN"
)

// ErrIdentityNotFound is returned when no identity matches the lookup key.
// Boundary layers should collapse this with ErrInvalidCredentials to avoid
// account enumeration; the engine keeps them distinct for auditing callers.
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrInvalidCredentials is returned when a password does not match its hash.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrDuplicateResource is returned when a unique constraint (email, username)
// rejects an insert.
var ErrDuplicateResource = goerrors.New("resource already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateResource).
	WithCode(goerrors.CodeConflict)

// ErrTokenExpired is returned for tokens past their expiry, whether detected
// by the codec (signature-embedded exp) or by the token store.
var ErrTokenExpired = goerrors.New("token has expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenRevoked is returned when a stored refresh token carries a
// revocation timestamp.
var ErrTokenRevoked = goerrors.New("token has been revoked", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenRevoked).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenInvalid is returned when a presented refresh token has no
// corresponding store record.
var ErrTokenInvalid = goerrors.New("invalid token", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token string cannot be parsed.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrSignatureInvalid is returned when signature verification fails.
var ErrSignatureInvalid = goerrors.New("token signature is invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenSignature).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenKindMismatch is returned when a token of the wrong kind is
// presented, e.g. a refresh token on an access-only path.
var ErrTokenKindMismatch = goerrors.New("unexpected token kind", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenKindMismatch).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenOwnership is returned when an identity attempts to revoke a token
// owned by a different identity.
var ErrTokenOwnership = goerrors.New("cannot revoke another user's token", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenOwnership).
	WithCode(goerrors.CodeUnauthorized)

// ErrForbidden is returned when an authenticated principal lacks the
// required role or permission flag.
var ErrForbidden = goerrors.New("insufficient role or permission", goerrors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(goerrors.CodeForbidden)

// ErrNoEmptyString rejects blank passwords before hashing.
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeValidationFailed).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the internal bcrypt mismatch marker.
var ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// accountNotActiveError builds the status-bearing login rejection; the
// message carries the current status, mirroring the outward contract.
func accountNotActiveError(status UserStatus) *goerrors.Error {
	return goerrors.New(
		fmt.Sprintf("account is %s, please contact an administrator", status),
		goerrors.CategoryAuth,
	).
		WithTextCode(TextCodeAccountNotActive).
		WithCode(goerrors.CodeUnauthorized).
		WithMetadata(map[string]any{"status": string(status)})
}

// validationError wraps payload validation failures with the shared
// validation text code.
func validationError(err error, msg string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, msg).
		WithTextCode(TextCodeValidationFailed).
		WithCode(goerrors.CodeBadRequest)
}

// IsAuthError reports whether err belongs to the authentication category.
func IsAuthError(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.Category == goerrors.CategoryAuth
}

// HasTextCode reports whether err carries the given text code.
func HasTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == code
}
