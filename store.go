package authkit

import (
	"context"

	"github.com/google/uuid"
)

// CredentialStore is the persistence contract for identities. It must be
// backed by a durable store with unique constraints on email and username;
// the engine relies on constraint violations, not advisory exists-checks,
// for registration uniqueness under concurrency.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Register(ctx context.Context, user *User) (*User, error)
	Save(ctx context.Context, user *User) (*User, error)
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

// TokenStore is the persistence contract for refresh sessions. Reads after a
// revocation must observe the revocation (read-your-writes within the
// store); no other isolation is assumed.
type TokenStore interface {
	GetByToken(ctx context.Context, token string) (*TokenRecord, error)
	Persist(ctx context.Context, record *TokenRecord) (*TokenRecord, error)
	Revoke(ctx context.Context, record *TokenRecord) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
	DeleteRevoked(ctx context.Context) (int64, error)
}
