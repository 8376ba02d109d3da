package authkit_test

import (
	"context"
	"sync"
	"time"

	authkit "github.com/castellan/go-authkit"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCredentialStore implements authkit.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) GetByEmail(ctx context.Context, email string) (*authkit.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*authkit.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) GetByUsername(ctx context.Context, username string) (*authkit.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*authkit.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) FindByID(ctx context.Context, id uuid.UUID) (*authkit.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*authkit.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockCredentialStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockCredentialStore) Register(ctx context.Context, user *authkit.User) (*authkit.User, error) {
	args := m.Called(ctx, user)
	created, _ := args.Get(0).(*authkit.User)
	return created, args.Error(1)
}

func (m *MockCredentialStore) Save(ctx context.Context, user *authkit.User) (*authkit.User, error) {
	args := m.Called(ctx, user)
	saved, _ := args.Get(0).(*authkit.User)
	return saved, args.Error(1)
}

func (m *MockCredentialStore) TrackSuccessfulLogin(ctx context.Context, user *authkit.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockTokenStore implements authkit.TokenStore
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) GetByToken(ctx context.Context, token string) (*authkit.TokenRecord, error) {
	args := m.Called(ctx, token)
	record, _ := args.Get(0).(*authkit.TokenRecord)
	return record, args.Error(1)
}

func (m *MockTokenStore) Persist(ctx context.Context, record *authkit.TokenRecord) (*authkit.TokenRecord, error) {
	args := m.Called(ctx, record)
	created, _ := args.Get(0).(*authkit.TokenRecord)
	return created, args.Error(1)
}

func (m *MockTokenStore) Revoke(ctx context.Context, record *authkit.TokenRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockTokenStore) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTokenStore) DeleteRevoked(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// recordingSink captures emitted activity events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []authkit.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event authkit.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Events() []authkit.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]authkit.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *recordingSink) HasEvent(eventType authkit.ActivityEventType) bool {
	for _, e := range s.Events() {
		if e.EventType == eventType {
			return true
		}
	}
	return false
}

func notFoundErr() error {
	return goerrors.New("record not found", goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound)
}

func testConfig() authkit.Config {
	return authkit.Config{
		SigningSecret:   "test-signing-secret-0123456789abcdef",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 168 * time.Hour,
		Issuer:          "authkit-test",
	}
}

var (
	testHashOnce sync.Once
	testHash     string
)

// testPasswordHash hashes the shared test password once; bcrypt at the
// production cost is too slow to repeat per test.
func testPasswordHash() string {
	testHashOnce.Do(func() {
		h, err := authkit.HashPassword("password123")
		if err != nil {
			panic(err)
		}
		testHash = h
	})
	return testHash
}

func testUser() *authkit.User {
	return &authkit.User{
		ID:           uuid.New(),
		Email:        "ada@example.com",
		Username:     "ada",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Role:         authkit.RoleUser,
		Status:       authkit.UserStatusActive,
		PasswordHash: testPasswordHash(),
	}
}
