package model

import "fmt"

// Role determines what a caller can see and which writes it may perform.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
	RoleLab     Role = "lab"
)

var roles = []Role{RolePatient, RoleDoctor, RoleAdmin, RoleLab}

// Roles returns the closed set of known roles.
func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a raw role string, rejecting anything outside the closed set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Identity is the authenticated caller handed to the core by the auth layer.
type Identity struct {
	UserID int64 `json:"user_id"`
	Role   Role  `json:"role"`
}
