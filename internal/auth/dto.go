package auth

import pkgAuth "github.com/uniformhub/gateway/pkg/auth"

// GoogleLoginRequest carries the Google OAuth access token obtained by the client.
type GoogleLoginRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}

// LoginResponse is returned after a successful Google login.
type LoginResponse struct {
	AccessToken string              `json:"access_token"`
	Access      pkgAuth.Access      `json:"access"`
	Redirect    pkgAuth.Destination `json:"redirect"`
}

// AccessResponse is the getAccess answer for an existing token.
type AccessResponse struct {
	Access   *pkgAuth.Access     `json:"access"`
	Redirect pkgAuth.Destination `json:"redirect"`
}
