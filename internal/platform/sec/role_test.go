// Copyright (c) 2026 BIMS Project. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baryo/bims/internal/platform/sec"
)

/*
TestUserRole_Can verifies the capability policy table lookups.
*/
func TestUserRole_Can(t *testing.T) {
	tests := []struct {
		name       string
		role       sec.UserRole
		permission sec.Permission
		want       bool
	}{
		{"super_admin_assigns_roles", sec.RoleSuperAdmin, sec.PermRolesAssign, true},
		{"admin_reads_users", sec.RoleAdmin, sec.PermUsersRead, true},
		{"admin_manages_users", sec.RoleAdmin, sec.PermUsersManage, true},
		{"admin_cannot_assign_roles", sec.RoleAdmin, sec.PermRolesAssign, false},
		{"user_cannot_read_users", sec.RoleUser, sec.PermUsersRead, false},
		{"unknown_role_denied", sec.UserRole("ghost"), sec.PermUsersRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Can(tt.permission))
		})
	}
}

/*
TestValidRole verifies role string validation used by role assignment.
*/
func TestValidRole(t *testing.T) {
	assert.True(t, sec.ValidRole("super_admin"))
	assert.True(t, sec.ValidRole("admin"))
	assert.True(t, sec.ValidRole("user"))
	assert.False(t, sec.ValidRole("moderator"))
	assert.False(t, sec.ValidRole(""))
}
