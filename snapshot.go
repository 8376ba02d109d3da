package authkit

import (
	"time"

	"github.com/google/uuid"
)

// UserSnapshot is the outward-facing view of a User. It carries no password
// hash field; the conversion below is the only way to build one.
type UserSnapshot struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	Username          string     `json:"username"`
	FirstName         string     `json:"first_name,omitempty"`
	LastName          string     `json:"last_name,omitempty"`
	Phone             string     `json:"phone_number,omitempty"`
	Department        string     `json:"department,omitempty"`
	Role              UserRole   `json:"role"`
	Status            UserStatus `json:"status"`
	CanManageUsers    bool       `json:"can_manage_users"`
	CanViewReports    bool       `json:"can_view_reports"`
	CanManageSettings bool       `json:"can_manage_settings"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
}

// NewUserSnapshot converts a persisted User into its outward snapshot.
func NewUserSnapshot(u *User) *UserSnapshot {
	if u == nil {
		return nil
	}

	u.EnsureStatus()

	return &UserSnapshot{
		ID:                u.ID,
		Email:             u.Email,
		Username:          u.Username,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Phone:             u.Phone,
		Department:        u.Department,
		Role:              u.Role,
		Status:            u.Status,
		CanManageUsers:    u.CanManageUsers,
		CanViewReports:    u.CanViewReports,
		CanManageSettings: u.CanManageSettings,
		LastLoginAt:       u.LastLoginAt,
		CreatedAt:         u.CreatedAt,
	}
}
