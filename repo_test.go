package authkit_test

import (
	"context"
	"testing"
	"time"

	authkit "github.com/castellan/go-authkit"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupRepos(t *testing.T) (authkit.RepositoryManager, *bun.DB) {
	t.Helper()

	db, err := authkit.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, authkit.EnsureSchema(context.Background(), db))

	manager := authkit.NewRepositoryManager(db)
	require.NoError(t, manager.Validate())

	return manager, db
}

func seedUser(t *testing.T, users authkit.Users, email, username string) *authkit.User {
	t.Helper()

	created, err := users.Register(context.Background(), &authkit.User{
		Email:        email,
		Username:     username,
		PasswordHash: "stored-hash",
	})
	require.NoError(t, err)
	return created
}

func TestUsersRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("register applies defaults", func(t *testing.T) {
		manager, _ := setupRepos(t)

		created := seedUser(t, manager.Users(), "ada@example.com", "ada")

		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, authkit.RoleUser, created.Role)
		assert.Equal(t, authkit.UserStatusActive, created.Status)
	})

	t.Run("lookups by email, username, and id", func(t *testing.T) {
		manager, _ := setupRepos(t)
		users := manager.Users()

		created := seedUser(t, users, "ada@example.com", "ada")

		byEmail, err := users.GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)

		byUsername, err := users.GetByUsername(ctx, "ada")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byUsername.ID)

		byID, err := users.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", byID.Email)
	})

	t.Run("missing rows surface as not found", func(t *testing.T) {
		manager, _ := setupRepos(t)
		users := manager.Users()

		_, err := users.GetByEmail(ctx, "ghost@example.com")
		require.Error(t, err)
		assert.True(t, goerrors.IsNotFound(err))

		_, err = users.FindByID(ctx, uuid.New())
		require.Error(t, err)
		assert.True(t, goerrors.IsNotFound(err))
	})

	t.Run("existence probes", func(t *testing.T) {
		manager, _ := setupRepos(t)
		users := manager.Users()

		seedUser(t, users, "ada@example.com", "ada")

		exists, err := users.ExistsByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = users.ExistsByEmail(ctx, "ghost@example.com")
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = users.ExistsByUsername(ctx, "ada")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("duplicate email maps to the conflict sentinel", func(t *testing.T) {
		manager, _ := setupRepos(t)
		users := manager.Users()

		seedUser(t, users, "ada@example.com", "ada")

		_, err := users.Register(ctx, &authkit.User{
			Email:    "ada@example.com",
			Username: "ada2",
		})
		require.Error(t, err)
		assert.True(t, authkit.HasTextCode(err, authkit.TextCodeDuplicateResource))
	})

	t.Run("track successful login stamps the timestamp", func(t *testing.T) {
		manager, _ := setupRepos(t)
		users := manager.Users()

		created := seedUser(t, users, "ada@example.com", "ada")
		require.Nil(t, created.LastLoginAt)

		require.NoError(t, users.TrackSuccessfulLogin(ctx, created))
		require.NotNil(t, created.LastLoginAt)

		stored, err := users.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.LastLoginAt)
		assert.WithinDuration(t, time.Now(), *stored.LastLoginAt, 5*time.Second)
	})

	t.Run("save persists field changes", func(t *testing.T) {
		manager, _ := setupRepos(t)
		users := manager.Users()

		created := seedUser(t, users, "ada@example.com", "ada")
		created.Department = "Engineering"
		created.CanViewReports = true

		_, err := users.Save(ctx, created)
		require.NoError(t, err)

		stored, err := users.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Engineering", stored.Department)
		assert.True(t, stored.CanViewReports)
	})
}

func TestRefreshTokensRepository(t *testing.T) {
	ctx := context.Background()

	seedToken := func(t *testing.T, tokens authkit.RefreshTokens, userID uuid.UUID, token string, expiresAt time.Time) *authkit.TokenRecord {
		t.Helper()
		created, err := tokens.Persist(ctx, &authkit.TokenRecord{
			UserID:    userID,
			Token:     token,
			ExpiresAt: expiresAt,
		})
		require.NoError(t, err)
		return created
	}

	t.Run("persist and fetch by token", func(t *testing.T) {
		manager, _ := setupRepos(t)
		user := seedUser(t, manager.Users(), "ada@example.com", "ada")

		created := seedToken(t, manager.RefreshTokens(), user.ID, "token-1", time.Now().Add(time.Hour))
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.NotNil(t, created.CreatedAt)

		stored, err := manager.RefreshTokens().GetByToken(ctx, "token-1")
		require.NoError(t, err)
		assert.Equal(t, user.ID, stored.UserID)
		assert.False(t, stored.IsRevoked())
	})

	t.Run("unknown token is not found", func(t *testing.T) {
		manager, _ := setupRepos(t)

		_, err := manager.RefreshTokens().GetByToken(ctx, "missing")
		require.Error(t, err)
		assert.True(t, goerrors.IsNotFound(err))
	})

	t.Run("revoke persists and is idempotent", func(t *testing.T) {
		manager, _ := setupRepos(t)
		tokens := manager.RefreshTokens()
		user := seedUser(t, manager.Users(), "ada@example.com", "ada")

		record := seedToken(t, tokens, user.ID, "token-1", time.Now().Add(time.Hour))

		require.NoError(t, tokens.Revoke(ctx, record))
		firstRevokedAt := record.RevokedAt
		require.NotNil(t, firstRevokedAt)

		stored, err := tokens.GetByToken(ctx, "token-1")
		require.NoError(t, err)
		assert.True(t, stored.IsRevoked())

		require.NoError(t, tokens.Revoke(ctx, record))
		assert.Equal(t, firstRevokedAt, record.RevokedAt)
	})

	t.Run("revoke all spares other users", func(t *testing.T) {
		manager, _ := setupRepos(t)
		tokens := manager.RefreshTokens()
		ada := seedUser(t, manager.Users(), "ada@example.com", "ada")
		grace := seedUser(t, manager.Users(), "grace@example.com", "grace")

		seedToken(t, tokens, ada.ID, "ada-1", time.Now().Add(time.Hour))
		seedToken(t, tokens, ada.ID, "ada-2", time.Now().Add(time.Hour))
		seedToken(t, tokens, grace.ID, "grace-1", time.Now().Add(time.Hour))

		n, err := tokens.RevokeAllForUser(ctx, ada.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		stored, err := tokens.GetByToken(ctx, "grace-1")
		require.NoError(t, err)
		assert.False(t, stored.IsRevoked())

		// A second pass has nothing left to revoke.
		n, err = tokens.RevokeAllForUser(ctx, ada.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("sweep deletes expired and revoked rows", func(t *testing.T) {
		manager, _ := setupRepos(t)
		tokens := manager.RefreshTokens()
		user := seedUser(t, manager.Users(), "ada@example.com", "ada")

		seedToken(t, tokens, user.ID, "live", time.Now().Add(time.Hour))
		seedToken(t, tokens, user.ID, "stale", time.Now().Add(-time.Hour))
		revoked := seedToken(t, tokens, user.ID, "dead", time.Now().Add(time.Hour))
		require.NoError(t, tokens.Revoke(ctx, revoked))

		expired, err := tokens.DeleteExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), expired)

		deleted, err := tokens.DeleteRevoked(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		_, err = tokens.GetByToken(ctx, "live")
		assert.NoError(t, err)
	})
}

func TestConcurrentSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	manager, _ := setupRepos(t)

	engine := authkit.NewAuthenticator(manager.Users(), manager.RefreshTokens(), testConfig())

	first, err := engine.Register(ctx, authkit.RegisterPayload{
		Email:    "ada@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	second, err := engine.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)

	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = engine.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	_, err = engine.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)

	// Logging out of one session revokes exactly the presented token.
	require.NoError(t, engine.Logout(ctx, first.User.ID, first.RefreshToken))

	_, err = engine.Refresh(ctx, first.RefreshToken)
	require.Error(t, err)
	assert.True(t, authkit.HasTextCode(err, authkit.TextCodeTokenRevoked))

	refreshed, err := engine.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}
