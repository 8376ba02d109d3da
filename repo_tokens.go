package authkit

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RefreshTokens is the bun-backed refresh-session repository.
type RefreshTokens interface {
	repository.Repository[*TokenRecord]
	TokenStore
}

type refreshTokens struct {
	repository.Repository[*TokenRecord]
	db  *bun.DB
	now func() time.Time
}

var (
	_ RefreshTokens                       = (*refreshTokens)(nil)
	_ TokenStore                          = (*refreshTokens)(nil)
	_ repository.Repository[*TokenRecord] = (*refreshTokens)(nil)
)

// RefreshTokensOption mutates the repository during construction.
type RefreshTokensOption func(*refreshTokens)

// WithRefreshTokensClock injects a custom time source.
func WithRefreshTokensClock(clock func() time.Time) RefreshTokensOption {
	return func(r *refreshTokens) {
		if clock != nil {
			r.now = clock
		}
	}
}

// NewRefreshTokensRepository builds the refresh-session repository over a bun
// database.
func NewRefreshTokensRepository(db *bun.DB, opts ...RefreshTokensOption) RefreshTokens {
	repo := repository.NewRepository[*TokenRecord](db, repository.ModelHandlers[*TokenRecord]{
		NewRecord: func() *TokenRecord { return &TokenRecord{} },
		GetID: func(t *TokenRecord) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *TokenRecord, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	repoTokens := &refreshTokens{
		Repository: repo,
		db:         db,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repoTokens)
		}
	}

	return repoTokens
}

func (a *refreshTokens) GetByToken(ctx context.Context, token string) (*TokenRecord, error) {
	record := &TokenRecord{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (a *refreshTokens) Persist(ctx context.Context, record *TokenRecord) (*TokenRecord, error) {
	prepareTokenDefaults(record, a.now())
	return a.Repository.CreateTx(ctx, a.db, record)
}

// Revoke stamps the record's revocation time and persists it. Already
// revoked records keep their original timestamp.
func (a *refreshTokens) Revoke(ctx context.Context, record *TokenRecord) error {
	if record == nil || record.IsRevoked() {
		return nil
	}

	record.Revoke(a.now())

	_, err := a.db.NewUpdate().
		Model(record).
		Column("revoked_at").
		WherePK().
		Exec(ctx)

	return err
}

func (a *refreshTokens) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := a.db.NewUpdate().
		Model((*TokenRecord)(nil)).
		Set("revoked_at = ?", a.now()).
		Where("user_id = ?", userID).
		Where("revoked_at IS NULL").
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (a *refreshTokens) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := a.db.NewDelete().
		Model((*TokenRecord)(nil)).
		Where("expires_at <= ?", a.now()).
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (a *refreshTokens) DeleteRevoked(ctx context.Context) (int64, error) {
	res, err := a.db.NewDelete().
		Model((*TokenRecord)(nil)).
		Where("revoked_at IS NOT NULL").
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func prepareTokenDefaults(record *TokenRecord, now time.Time) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
}
