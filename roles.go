package authkit

// UserRole is the closed role enumeration. Authorization decisions are
// membership tests against explicit allow-lists, never string comparisons
// against caller-provided values.
type UserRole string

const (
	// RoleUser is the default role assigned at registration.
	RoleUser UserRole = "user"
	// RoleManager has team oversight and report access.
	RoleManager UserRole = "manager"
	// RoleAdmin has full system access.
	RoleAdmin UserRole = "admin"
)

// IsValid checks if the role is one of the predefined valid roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// In reports whether the role is a member of the given allow-list.
func (r UserRole) In(allowed ...UserRole) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// IsAtLeast checks if this role meets the minimum required level.
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	current, ok := roleLevel(r)
	if !ok {
		return false
	}

	min, ok := roleLevel(minRole)
	if !ok {
		return false
	}

	return current >= min
}

func roleLevel(r UserRole) (int, bool) {
	switch r {
	case RoleUser:
		return 0, true
	case RoleManager:
		return 1, true
	case RoleAdmin:
		return 2, true
	default:
		return 0, false
	}
}

// AllRoles returns the predefined roles in hierarchical order.
func AllRoles() []UserRole {
	return []UserRole{RoleUser, RoleManager, RoleAdmin}
}

// ParseRole safely parses a string into a UserRole.
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}

// Permission identifies one of the independent boolean capability flags
// carried on a User. Flags are orthogonal to role and may change between
// token issuance and request time, so they are never embedded in claims.
type Permission string

const (
	PermissionManageUsers    Permission = "manage_users"
	PermissionViewReports    Permission = "view_reports"
	PermissionManageSettings Permission = "manage_settings"
)

// IsValid checks if the permission names a known capability flag.
func (p Permission) IsValid() bool {
	switch p {
	case PermissionManageUsers, PermissionViewReports, PermissionManageSettings:
		return true
	default:
		return false
	}
}
