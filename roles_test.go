package authkit_test

import (
	"testing"

	authkit "github.com/castellan/go-authkit"
	"github.com/stretchr/testify/assert"
)

func TestUserRole(t *testing.T) {
	t.Run("validity", func(t *testing.T) {
		assert.True(t, authkit.RoleUser.IsValid())
		assert.True(t, authkit.RoleManager.IsValid())
		assert.True(t, authkit.RoleAdmin.IsValid())
		assert.False(t, authkit.UserRole("root").IsValid())
		assert.False(t, authkit.UserRole("").IsValid())
	})

	t.Run("membership", func(t *testing.T) {
		assert.True(t, authkit.RoleManager.In(authkit.RoleManager, authkit.RoleAdmin))
		assert.False(t, authkit.RoleUser.In(authkit.RoleManager, authkit.RoleAdmin))
		assert.False(t, authkit.RoleUser.In())
	})

	t.Run("hierarchy", func(t *testing.T) {
		assert.True(t, authkit.RoleAdmin.IsAtLeast(authkit.RoleUser))
		assert.True(t, authkit.RoleAdmin.IsAtLeast(authkit.RoleAdmin))
		assert.True(t, authkit.RoleManager.IsAtLeast(authkit.RoleUser))
		assert.False(t, authkit.RoleUser.IsAtLeast(authkit.RoleManager))
		assert.False(t, authkit.UserRole("root").IsAtLeast(authkit.RoleUser))
		assert.False(t, authkit.RoleAdmin.IsAtLeast(authkit.UserRole("root")))
	})

	t.Run("parse", func(t *testing.T) {
		role, ok := authkit.ParseRole("manager")
		assert.True(t, ok)
		assert.Equal(t, authkit.RoleManager, role)

		_, ok = authkit.ParseRole("superuser")
		assert.False(t, ok)
	})

	t.Run("all roles in hierarchical order", func(t *testing.T) {
		assert.Equal(t, []authkit.UserRole{
			authkit.RoleUser,
			authkit.RoleManager,
			authkit.RoleAdmin,
		}, authkit.AllRoles())
	})
}

func TestPermission(t *testing.T) {
	assert.True(t, authkit.PermissionManageUsers.IsValid())
	assert.True(t, authkit.PermissionViewReports.IsValid())
	assert.True(t, authkit.PermissionManageSettings.IsValid())
	assert.False(t, authkit.Permission("delete_everything").IsValid())
}

func TestUserStatus(t *testing.T) {
	assert.True(t, authkit.UserStatusActive.IsValid())
	assert.True(t, authkit.UserStatusInactive.IsValid())
	assert.True(t, authkit.UserStatusSuspended.IsValid())
	assert.False(t, authkit.UserStatus("banned").IsValid())
}
