package authkit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the bun-backed identity repository. It layers the CredentialStore
// contract on top of the generic repository surface.
type Users interface {
	repository.Repository[*User]
	CredentialStore

	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error
}

type users struct {
	repository.Repository[*User]
	db  *bun.DB
	now func() time.Time
}

var (
	_ Users                        = (*users)(nil)
	_ CredentialStore              = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

// UsersOption mutates the repository during construction.
type UsersOption func(*users)

// WithUsersClock injects a custom time source.
func WithUsersClock(clock func() time.Time) UsersOption {
	return func(u *users) {
		if clock != nil {
			u.now = clock
		}
	}
}

// NewUsersRepository builds the identity repository over a bun database.
func NewUsersRepository(db *bun.DB, opts ...UsersOption) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	repoUsers := &users{
		Repository: repo,
		db:         db,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repoUsers)
		}
	}

	return repoUsers
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.getByColumn(ctx, a.db, "email", strings.TrimSpace(email))
}

func (a *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	return a.getByColumn(ctx, a.db, "username", strings.TrimSpace(username))
}

func (a *users) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.getByColumn(ctx, a.db, "id", id.String())
}

func (a *users) getByColumn(ctx context.Context, tx bun.IDB, column, value string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					column: value,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return a.existsByColumn(ctx, "email", strings.TrimSpace(email))
}

func (a *users) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return a.existsByColumn(ctx, "username", strings.TrimSpace(username))
}

func (a *users) existsByColumn(ctx context.Context, column, value string) (bool, error) {
	count, err := a.db.NewSelect().
		Model((*User)(nil)).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Count(ctx)

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)

	created, err := a.Repository.CreateTx(ctx, tx, user)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateResource.Clone().WithMetadata(map[string]any{
				"email": user.Email,
			})
		}
		return nil, err
	}

	return created, nil
}

func (a *users) Save(ctx context.Context, user *User) (*User, error) {
	return a.Repository.UpdateTx(ctx, a.db, user, repository.UpdateByID(user.ID.String()))
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	return a.TrackSuccessfulLoginTx(ctx, a.db, user)
}

func (a *users) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	loggedInAt := a.now()
	_, err := tx.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"last_login_at" = ?,
			"updated_at" = ?
		WHERE
			("usr".id = ?);
	`, loggedInAt, loggedInAt, user.ID).Exec(ctx)

	if err == nil {
		user.LastLoginAt = &loggedInAt
	}

	return err
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleUser
	}

	record.EnsureStatus()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

// isUniqueViolation matches unique-constraint failures across the SQLite and
// Postgres drivers; neither exposes a portable typed error for it.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
