// Copyright (c) 2026 BIMS Project. All rights reserved.

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access, including role assignment
	RoleSuperAdmin UserRole = "super_admin"

	// Day-to-day barangay staff administration (user management)
	RoleAdmin UserRole = "admin"

	// Default role for standard registered accounts
	RoleUser UserRole = "user"
)

// ValidRole reports whether the raw string is a known role.
func ValidRole(raw string) bool {
	switch UserRole(raw) {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// # Capability Policy

// Permission names a guarded action in the administration API.
type Permission string

const (
	// PermUsersRead allows listing and inspecting user accounts.
	PermUsersRead Permission = "users:read"

	// PermUsersManage allows activating and deactivating user accounts.
	PermUsersManage Permission = "users:manage"

	// PermRolesAssign allows changing the role of a user account.
	PermRolesAssign Permission = "roles:assign"
)

// rolePolicy is the single capability table consulted by route guards.
//
// Routes declare the Permission they need; the table decides which roles
// hold it. Adding a capability is a table edit, not a new middleware.
var rolePolicy = map[UserRole][]Permission{
	RoleSuperAdmin: {
		PermUsersRead,
		PermUsersManage,
		PermRolesAssign,
	},
	RoleAdmin: {
		PermUsersRead,
		PermUsersManage,
	},
	RoleUser: {},
}

// Can reports whether the role holds the given permission in the policy table.
func (r UserRole) Can(permission Permission) bool {
	for _, granted := range rolePolicy[r] {
		if granted == permission {
			return true
		}
	}
	return false
}
