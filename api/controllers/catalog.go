package controllers

import (
	"net/http"

	"github.com/uniformhub/gateway/api/responses"
	"github.com/uniformhub/gateway/internal/constraints"
	"github.com/uniformhub/gateway/internal/fabrics"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
	"github.com/uniformhub/gateway/pkg/logger"
)

// GetConstraints returns the media and design constraints. Backend failures
// fall back to defaults inside the service, so this never errors.
func GetConstraints(svc constraints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "constraints service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.All(r.Context()))
	}
}

func GetFabrics(svc fabrics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fabrics service unavailable"))
			return
		}
		catalog, err := svc.Catalog(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, catalog)
	}
}
