package authkit

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// Authenticator holds the session lifecycle operations. Per-session state
// machine: login/register mints an access+refresh pair, refresh mints a new
// access token against the same refresh record, logout revokes the refresh
// record.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, payload RegisterPayload) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
	Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error
	ValidateSession(ctx context.Context, refreshToken string) (*User, error)
	RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error)
}

// LoginResult is the success payload for login and register.
type LoginResult struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int64         `json:"expires_in"`
	User         *UserSnapshot `json:"user"`
}

// RefreshResult is the success payload for refresh.
type RefreshResult struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Auther implements Authenticator against a credential store, a token store,
// and a token codec. It keeps no mutable state of its own; every request can
// run on an independent goroutine.
type Auther struct {
	users            CredentialStore
	tokens           TokenStore
	codec            TokenService
	cfg              Config
	logger           Logger
	activitySink     ActivitySink
	now              func() time.Time
	deterministicIDs bool
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Auther wired to the given stores.
func NewAuthenticator(users CredentialStore, tokens TokenStore, cfg Config) *Auther {
	return &Auther{
		users:        users,
		tokens:       tokens,
		codec:        NewTokenService(cfg),
		cfg:          cfg,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		now:          time.Now,
	}
}

// WithLogger overrides the logger.
func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTokenService overrides the token codec, e.g. to inject a test clock.
func (s *Auther) WithTokenService(codec TokenService) *Auther {
	if codec != nil {
		s.codec = codec
	}
	return s
}

// WithClock injects a custom time source (useful for tests). The clock
// governs refresh-record expiry stamping and revocation checks; the codec
// keeps its own clock.
func (s *Auther) WithClock(clock func() time.Time) *Auther {
	if clock != nil {
		s.now = clock
	}
	return s
}

// WithDeterministicIDs derives new user IDs from the registration email
// instead of random UUIDs.
func (s *Auther) WithDeterministicIDs() *Auther {
	s.deterministicIDs = true
	return s
}

// TokenService returns the codec used by this authenticator.
func (s *Auther) TokenService() TokenService {
	return s.codec
}

// Login authenticates an email/password pair and opens a new refresh
// session. Each login from each client produces its own refresh record;
// concurrent sessions are independent and independently revocable.
func (s *Auther) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" {
		return nil, validationError(goerrors.New("email is required", goerrors.CategoryValidation), "invalid login payload")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			s.emit(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
				"email": email,
				"error": ErrIdentityNotFound.Message,
			})
			return nil, ErrIdentityNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up identity")
	}

	user.EnsureStatus()
	if err := statusAuthError(user.Status); err != nil {
		s.logger.Warn("login blocked due to account status", "status", user.Status)
		s.emit(ctx, ActivityEventLoginFailure, s.actorFromUser(user), user.ID.String(), map[string]any{
			"email":  email,
			"status": string(user.Status),
		})
		return nil, err
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if !goerrors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to verify password")
		}
		s.emit(ctx, ActivityEventLoginFailure, s.actorFromUser(user), user.ID.String(), map[string]any{
			"email": email,
			"error": ErrInvalidCredentials.Message,
		})
		return nil, ErrInvalidCredentials
	}

	result, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, ActivityEventLoginSuccess, s.actorFromUser(user), user.ID.String(), map[string]any{
		"email": email,
	})

	return result, nil
}

// Register creates a new identity and opens its first session. New users get
// the default role, active status, and no permission flags.
func (s *Auther) Register(ctx context.Context, payload RegisterPayload) (*LoginResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, validationError(err, "invalid registration payload")
	}

	// Advisory pre-check; the unique constraint at the store is the real
	// guard against concurrent registrations with the same email.
	exists, err := s.users.ExistsByEmail(ctx, payload.Email)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
	}
	if exists {
		return nil, ErrDuplicateResource
	}

	username, err := deriveUniqueUsername(ctx, s.users, payload.Email, s.now())
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to derive username")
	}

	hash, err := HashPassword(payload.Password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Email:        payload.Email,
		Username:     username,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		Phone:        payload.Phone,
		Department:   payload.Department,
		PasswordHash: hash,
		Role:         RoleUser,
		Status:       UserStatusActive,
	}

	if s.deterministicIDs {
		if id, err := hashid.NewUUID(payload.Email); err == nil {
			user.ID = id
		}
	}

	created, err := s.users.Register(ctx, user)
	if err != nil {
		// A concurrent registration may have won the unique constraint.
		var rich *goerrors.Error
		if goerrors.As(err, &rich) && rich.Category == goerrors.CategoryConflict {
			return nil, ErrDuplicateResource
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create identity")
	}

	result, err := s.openSession(ctx, created)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, ActivityEventUserRegistered, s.actorFromUser(created), created.ID.String(), map[string]any{
		"email":    created.Email,
		"username": created.Username,
	})

	return result, nil
}

// Refresh mints a new access token against a stored refresh session. The
// refresh token itself is NOT rotated: the same record stays valid until its
// own expiry or an explicit revoke. Rotate-on-use would be the stronger
// posture; the current behavior is a deliberate choice, not an oversight.
// The store record, never the token signature, decides expiry and
// revocation here.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	user, err := s.sessionUser(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.codec.Generate(NewIdentityFromUser(user), TokenKindAccess)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint access token")
	}

	s.emit(ctx, ActivityEventTokenRefreshed, s.actorFromUser(user), user.ID.String(), nil)

	return &RefreshResult{
		AccessToken: accessToken,
		ExpiresIn:   s.cfg.AccessTokenTTL.Milliseconds(),
	}, nil
}

// Logout revokes the presented refresh session. It is idempotent: blank or
// unknown tokens succeed silently, and revoking an already-revoked token is
// a no-op. Revoking a token owned by a different identity fails; that is a
// security boundary, not a convenience no-op.
func (s *Auther) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}

	record, err := s.tokens.GetByToken(ctx, refreshToken)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up refresh token")
	}

	if record.UserID != userID {
		s.logger.Warn("identity attempted to revoke a token it does not own", "user_id", userID)
		return ErrTokenOwnership
	}

	if record.IsRevoked() {
		return nil
	}

	if err := s.tokens.Revoke(ctx, record); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke refresh token")
	}

	s.emit(ctx, ActivityEventLogout, ActorRef{ID: userID.String(), Type: "user"}, userID.String(), nil)

	return nil
}

// ValidateSession resolves the identity behind a refresh token, applying the
// same store-authoritative checks as Refresh without minting anything. Used
// for session-restore flows.
func (s *Auther) ValidateSession(ctx context.Context, refreshToken string) (*User, error) {
	return s.sessionUser(ctx, refreshToken)
}

// RevokeAll revokes every usable refresh session for the identity and
// returns the number of sessions revoked.
func (s *Auther) RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.tokens.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke sessions")
	}

	s.emit(ctx, ActivityEventTokenRevoked, ActorRef{ID: userID.String(), Type: "user"}, userID.String(), map[string]any{
		"revoked": n,
	})

	return n, nil
}

// sessionUser runs the shared refresh-session checks: record exists, not
// expired, not revoked, owner still active.
func (s *Auther) sessionUser(ctx context.Context, refreshToken string) (*User, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, validationError(goerrors.New("refresh token is required", goerrors.CategoryValidation), "invalid refresh payload")
	}

	record, err := s.tokens.GetByToken(ctx, refreshToken)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrTokenInvalid
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up refresh token")
	}

	now := s.now()
	if record.IsExpired(now) {
		return nil, ErrTokenExpired
	}
	if record.IsRevoked() {
		return nil, ErrTokenRevoked
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load identity")
	}

	user.EnsureStatus()
	if err := statusAuthError(user.Status); err != nil {
		return nil, err
	}

	return user, nil
}

// openSession mints the access+refresh pair, persists the refresh record,
// and stamps the last-login timestamp. Ordering matters: nothing is
// persisted until every prior check and both mints have succeeded.
func (s *Auther) openSession(ctx context.Context, user *User) (*LoginResult, error) {
	identity := NewIdentityFromUser(user)

	accessToken, err := s.codec.Generate(identity, TokenKindAccess)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint access token")
	}

	refreshToken, err := s.codec.Generate(identity, TokenKindRefresh)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint refresh token")
	}

	record := &TokenRecord{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: s.now().Add(s.cfg.RefreshTokenTTL),
	}

	if _, err := s.tokens.Persist(ctx, record); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist refresh session")
	}

	if err := s.users.TrackSuccessfulLogin(ctx, user); err != nil {
		// Session is already valid; losing the timestamp is not worth
		// failing the login.
		s.logger.Warn("failed to track successful login", "error", err)
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.cfg.AccessTokenTTL.Milliseconds(),
		User:         NewUserSnapshot(user),
	}, nil
}

func (s *Auther) actorFromUser(user *User) ActorRef {
	if user == nil {
		return ActorRef{Type: "unknown"}
	}
	return ActorRef{ID: user.ID.String(), Type: "user"}
}

func (s *Auther) emit(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)

	event := ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}
