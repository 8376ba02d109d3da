package authkit

// UserStatus is the account activation state.
type UserStatus string

const (
	// UserStatusActive allows login and token refresh.
	UserStatusActive UserStatus = "active"
	// UserStatusInactive marks a disabled account.
	UserStatusInactive UserStatus = "inactive"
	// UserStatusSuspended marks a temporarily blocked account.
	UserStatusSuspended UserStatus = "suspended"
)

// IsValid checks if the status is one of the known states.
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	default:
		return false
	}
}

// statusAuthError maps a non-active status to its login rejection. Active
// accounts return nil.
func statusAuthError(status UserStatus) error {
	switch status {
	case UserStatusActive:
		return nil
	case UserStatusInactive, UserStatusSuspended:
		return accountNotActiveError(status)
	default:
		return accountNotActiveError(status)
	}
}
