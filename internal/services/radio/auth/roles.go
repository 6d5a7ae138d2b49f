// Package auth maps built-in users to roles and permissions and persists the
// signed CLI session.
package auth

import (
	"sort"
	"strings"
)

// Role is a closed set of access levels.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleViewer:
		return true
	default:
		return false
	}
}

// Permission names one guarded capability.
type Permission string

const (
	PermissionAdd    Permission = "add"
	PermissionEdit   Permission = "edit"
	PermissionDelete Permission = "delete"
	PermissionReview Permission = "review"
	PermissionExport Permission = "export"
	PermissionImport Permission = "import"
)

// Permissions lists every permission in display order.
var Permissions = []Permission{
	PermissionAdd,
	PermissionEdit,
	PermissionDelete,
	PermissionReview,
	PermissionExport,
	PermissionImport,
}

// PermissionSet is the set of permissions granted to a role.
type PermissionSet map[Permission]bool

// NewPermissionSet builds a set from the listed permissions.
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, perm := range perms {
		set[perm] = true
	}
	return set
}

// Has reports whether perm is granted.
func (s PermissionSet) Has(perm Permission) bool {
	return s[perm]
}

// List returns the granted permissions in display order.
func (s PermissionSet) List() []Permission {
	out := make([]Permission, 0, len(s))
	for _, perm := range Permissions {
		if s[perm] {
			out = append(out, perm)
		}
	}
	return out
}

// UserConfig is one entry in the static user table.
type UserConfig struct {
	Password string
	Role     Role
}

// Config is the static user table and the role to permission mapping.
type Config struct {
	Users map[string]UserConfig
	Roles map[Role]PermissionSet
}

// DefaultPassword is the shared password of the built-in users.
const DefaultPassword = "147ABC55"

// DefaultConfig returns the built-in users sharing password.
func DefaultConfig(password string) Config {
	if strings.TrimSpace(password) == "" {
		password = DefaultPassword
	}
	return Config{
		Users: map[string]UserConfig{
			"administrador": {Password: password, Role: RoleAdmin},
			"cusac":         {Password: password, Role: RoleOperator},
			"ver":           {Password: password, Role: RoleViewer},
		},
		Roles: map[Role]PermissionSet{
			RoleAdmin:    NewPermissionSet(Permissions...),
			RoleOperator: NewPermissionSet(PermissionAdd, PermissionReview, PermissionExport),
			RoleViewer:   NewPermissionSet(PermissionExport),
		},
	}
}

// Usernames returns the configured usernames sorted.
func (c Config) Usernames() []string {
	out := make([]string, 0, len(c.Users))
	for name := range c.Users {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
