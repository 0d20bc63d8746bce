package access

import "optic-storefront/internal/domain"

// Mode selects how a multi-permission requirement is evaluated
type Mode int

const (
	// All requires every listed permission
	All Mode = iota
	// Any requires at least one listed permission
	Any
)

// Requirement is what a guarded view needs
type Requirement struct {
	Perms []Permission
	Mode  Mode
}

// Require builds an All requirement
func Require(perms ...Permission) Requirement {
	return Requirement{Perms: perms, Mode: All}
}

// RequireAny builds an Any requirement
func RequireAny(perms ...Permission) Requirement {
	return Requirement{Perms: perms, Mode: Any}
}

// Authenticated is the requirement of views that only need a signed-in user
var Authenticated = Requirement{}

// SatisfiedBy reports whether role meets the requirement.
// An empty requirement is met by any known role.
func (r Requirement) SatisfiedBy(role domain.Role) bool {
	if !role.IsValid() {
		return false
	}
	if len(r.Perms) == 0 {
		return true
	}
	switch r.Mode {
	case Any:
		for _, p := range r.Perms {
			if Can(role, p) {
				return true
			}
		}
		return false
	default:
		for _, p := range r.Perms {
			if !Can(role, p) {
				return false
			}
		}
		return true
	}
}

// Decision is what a guarded view renders
type Decision int

const (
	// Render shows the protected content
	Render Decision = iota
	// Denied shows the access-denied fallback
	Denied
	// Login shows the login prompt
	Login
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case Denied:
		return "denied"
	case Login:
		return "login"
	}
	return "unknown"
}

// Guard decides between content, access-denied fallback and login prompt
func Guard(authenticated bool, role domain.Role, req Requirement) Decision {
	if !authenticated {
		return Login
	}
	if !req.SatisfiedBy(role) {
		return Denied
	}
	return Render
}
