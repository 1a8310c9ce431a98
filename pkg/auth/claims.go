package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/uniformhub/gateway/pkg/enums"
)

// AccessClaims is the subset of the backend-issued access token the gateway reads.
type AccessClaims struct {
	Role  enums.Role `json:"role"`
	Email string     `json:"email"`
	jwt.RegisteredClaims
}

// Access is the decoded identity exposed to handlers (getAccess).
type Access struct {
	Role  enums.Role `json:"role"`
	Email string     `json:"email"`
}

// Access projects the claims onto the handler-facing identity.
func (c *AccessClaims) Access() Access {
	if c == nil {
		return Access{}
	}
	return Access{Role: c.Role, Email: c.Email}
}
