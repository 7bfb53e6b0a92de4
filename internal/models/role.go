package models

import "strings"

// Role is the closed set of account roles.
type Role string

const (
	RolePlayer    Role = "player"
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RolePlayer, RoleDeveloper, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RoleDeveloper, RoleAdmin:
		return true
	}
	return false
}

// ParseRole matches s case-insensitively against the known roles.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

func (r Role) String() string { return string(r) }
