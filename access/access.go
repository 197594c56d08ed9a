// Package access defines the permission levels assigned to enrolled users
// and the actions they allow.
package access

import (
	"fmt"

	"github.com/zpatrick/rbac"
)

// Permission is the level assigned to an enrolled user.
type Permission string

// All permission levels, most privileged first.
const (
	PermissionAdmin  Permission = "admin"
	PermissionMember Permission = "member"
	PermissionGuest  Permission = "guest"
)

// String returns the permission level as a string.
func (p Permission) String() string {
	return string(p)
}

// PermissionFromString returns a valid Permission for the given string, or
// an error if the value is invalid.
func PermissionFromString(val string) (Permission, error) {
	switch Permission(val) {
	case PermissionAdmin, PermissionMember, PermissionGuest:
		return Permission(val), nil
	}
	return "", fmt.Errorf("unsupported permission level '%s'", val)
}

// Actions checked against roles.
const (
	ActionEnter      = "enter"
	ActionViewStatus = "view-status"
	ActionViewUsers  = "view-users"
	ActionViewEvents = "view-events"
)

// roles maps each permission level to its RBAC role.
var roles = map[Permission]rbac.Role{
	PermissionAdmin: {
		RoleID: string(PermissionAdmin),
		Permissions: []rbac.Permission{
			rbac.NewGlobPermission("*", "*"),
		},
	},
	PermissionMember: {
		RoleID: string(PermissionMember),
		Permissions: []rbac.Permission{
			rbac.NewGlobPermission(ActionEnter, "*"),
			rbac.NewGlobPermission(ActionViewStatus, "*"),
		},
	},
	PermissionGuest: {
		RoleID: string(PermissionGuest),
		Permissions: []rbac.Permission{
			rbac.NewGlobPermission(ActionEnter, "*"),
		},
	},
}

// Can reports whether the permission level allows the action on the target.
func (p Permission) Can(action, target string) (bool, error) {
	role, ok := roles[p]
	if !ok {
		return false, fmt.Errorf("unsupported permission level '%s'", p)
	}

	//nolint:wrapcheck // This is fine.
	return role.Can(action, target)
}
