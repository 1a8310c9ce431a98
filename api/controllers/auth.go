package controllers

import (
	"net/http"
	"time"

	"github.com/uniformhub/gateway/api/middleware"
	"github.com/uniformhub/gateway/api/responses"
	"github.com/uniformhub/gateway/api/validators"
	"github.com/uniformhub/gateway/internal/auth"
	"github.com/uniformhub/gateway/pkg/config"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
	"github.com/uniformhub/gateway/pkg/logger"
)

const sessionCookieMaxAge = 24 * time.Hour

// AuthGoogleLogin exchanges a Google access token for a backend session and
// sets the session cookie.
func AuthGoogleLogin(svc auth.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.GoogleLoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GoogleLogin(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cfg.JWT.CookieName,
			Value:    result.AccessToken,
			Path:     "/",
			MaxAge:   int(sessionCookieMaxAge.Seconds()),
			HttpOnly: true,
			Secure:   cfg.App.IsProd(),
			SameSite: http.SameSiteLaxMode,
		})
		responses.WriteSuccess(w, result)
	}
}

// AuthAccess reports the caller's role and intended destination. It never
// requires credentials: an anonymous caller is directed to the login page.
func AuthAccess(svc auth.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		result, err := svc.Access(r.Context(), middleware.RequestToken(r, cfg.JWT.CookieName))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
