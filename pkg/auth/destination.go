package auth

import "github.com/uniformhub/gateway/pkg/enums"

const (
	PathLogin = "/login"
	PathHome  = "/home"
)

// Destination is the router-agnostic place a client should navigate to.
type Destination struct {
	Path   string `json:"path"`
	Reason string `json:"reason,omitempty"`
}

var roleHomes = map[enums.Role]string{
	enums.RoleAdmin:    "/admin",
	enums.RoleSchool:   "/school",
	enums.RoleDesigner: "/designer",
	enums.RoleGarment:  "/garment",
}

// DestinationFor maps a decoded identity to its dashboard. A nil identity means
// the caller holds no credentials.
func DestinationFor(access *Access) Destination {
	if access == nil {
		return Destination{Path: PathLogin, Reason: "unauthenticated"}
	}
	if home, ok := roleHomes[access.Role]; ok {
		return Destination{Path: home}
	}
	return Destination{Path: PathHome, Reason: "unknown_role"}
}
