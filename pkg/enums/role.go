package enums

import "fmt"

// Role is the marketplace role carried in an access token.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSchool   Role = "school"
	RoleDesigner Role = "designer"
	RoleGarment  Role = "garment"
)

var validRoles = []Role{
	RoleAdmin,
	RoleSchool,
	RoleDesigner,
	RoleGarment,
}

// IsValid reports whether the role is known.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw strings into Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
