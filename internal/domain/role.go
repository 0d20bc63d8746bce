package domain

import "fmt"

// Role is the account role assigned by the backend
type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// AllRoles lists every role the storefront knows about
var AllRoles = []Role{RoleUser, RoleStaff, RoleAdmin}

func (r Role) String() string {
	return string(r)
}

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole converts a wire string into a Role, rejecting unknown values
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
