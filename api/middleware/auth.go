package middleware

import (
	"net/http"
	"strings"

	"github.com/uniformhub/gateway/api/responses"
	pkgAuth "github.com/uniformhub/gateway/pkg/auth"
	"github.com/uniformhub/gateway/pkg/backend"
	"github.com/uniformhub/gateway/pkg/config"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
	"github.com/uniformhub/gateway/pkg/logger"
)

// RequestToken reads the access token from the Authorization header, falling
// back to the session cookie.
func RequestToken(r *http.Request, cookieName string) string {
	if token := pkgAuth.BearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	if cookieName == "" {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// Auth decodes the access token and seeds the request context with the caller
// identity. The token is forwarded on every backend call made for the request.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := RequestToken(r, cfg.CookieName)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			access := claims.Access()
			if strings.TrimSpace(access.Email) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token has no email"))
				return
			}

			ctx := WithAccess(r.Context(), access, token)
			ctx = backend.WithToken(ctx, token)
			if logg != nil {
				ctx = logg.WithActorRole(logg.WithUserEmail(ctx, access.Email), string(access.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
