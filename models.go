package authkit

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the persisted identity record. It is owned by the credential
// store: created on registration, mutated on login-timestamp updates and
// profile changes, never deleted by this core.
type User struct {
	bun.BaseModel     `bun:"table:users,alias:usr"`
	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role              UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Status            UserStatus `bun:"status,notnull" json:"status,omitempty"`
	FirstName         string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName          string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Username          string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email             string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone             string     `bun:"phone_number" json:"phone_number,omitempty"`
	Department        string     `bun:"department" json:"department,omitempty"`
	PasswordHash      string     `bun:"password_hash" json:"password_hash,omitempty"`
	CanManageUsers    bool       `bun:"can_manage_users" json:"can_manage_users,omitempty"`
	CanViewReports    bool       `bun:"can_view_reports" json:"can_view_reports,omitempty"`
	CanManageSettings bool       `bun:"can_manage_settings" json:"can_manage_settings,omitempty"`
	LastLoginAt       *time.Time `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EnsureStatus backfills the zero status with active, matching rows created
// before the status column existed.
func (u *User) EnsureStatus() {
	if u.Status == "" {
		u.Status = UserStatusActive
	}
}

// IsActive reports whether the account may log in or refresh.
func (u *User) IsActive() bool {
	u.EnsureStatus()
	return u.Status == UserStatusActive
}

// HasPermission resolves one of the independent capability flags.
func (u *User) HasPermission(p Permission) bool {
	switch p {
	case PermissionManageUsers:
		return u.CanManageUsers
	case PermissionViewReports:
		return u.CanViewReports
	case PermissionManageSettings:
		return u.CanManageSettings
	default:
		return false
	}
}

// TokenRecord is a persisted refresh session. A record is usable iff
// RevokedAt is nil and the current time is before ExpiresAt. Rows are only
// ever mutated to set RevokedAt; expired or revoked rows are removed by the
// maintenance sweep.
type TokenRecord struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rft"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"token,omitempty"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	RevokedAt     *time.Time `bun:"revoked_at,nullzero" json:"revoked_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// IsExpired reports whether the record is past its expiry at the given time.
func (t *TokenRecord) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsRevoked reports whether the record carries a revocation timestamp.
func (t *TokenRecord) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsUsable reports the single usability invariant: not revoked and not
// expired.
func (t *TokenRecord) IsUsable(now time.Time) bool {
	return !t.IsRevoked() && !t.IsExpired(now)
}

// Revoke stamps the revocation instant. Idempotent: a second call keeps the
// original timestamp.
func (t *TokenRecord) Revoke(now time.Time) {
	if t.RevokedAt == nil {
		t.RevokedAt = &now
	}
}
