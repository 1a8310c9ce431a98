package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/uniformhub/gateway/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

var (
	// ErrMissingToken is returned when no token string was supplied.
	ErrMissingToken = errors.New("access token is required")
	// ErrVerificationDisabled is returned when no signing secret is configured.
	// Claims are never trusted without a verified signature.
	ErrVerificationDisabled = errors.New("access token verification is not configured")
)

// ParseAccessToken verifies the backend access token: HS256 signature, a
// present and unexpired exp claim, and the issuer when one is configured.
func ParseAccessToken(cfg config.JWTConfig, tokenString string) (*AccessClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	if !cfg.Verify() {
		return nil, ErrVerificationDisabled
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		opts...,
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// BearerToken strips an optional "Bearer " prefix from an Authorization header value.
func BearerToken(header string) string {
	token := strings.TrimSpace(header)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
