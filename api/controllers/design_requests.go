package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/uniformhub/gateway/api/middleware"
	"github.com/uniformhub/gateway/api/responses"
	"github.com/uniformhub/gateway/api/validators"
	"github.com/uniformhub/gateway/internal/designrequest"
	"github.com/uniformhub/gateway/pkg/enums"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
	"github.com/uniformhub/gateway/pkg/logger"
)

type patchDraftBody struct {
	Ops []designrequest.Op `json:"ops" validate:"required,min=1,max=200,dive"`
}

func draftOwner(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (string, bool) {
	owner := strings.ToLower(middleware.EmailFromContext(r.Context()))
	if owner == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return "", false
	}
	return owner, true
}

func draftUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "design request service unavailable"))
}

// CreateDraft starts an empty design request.
func CreateDraft(svc designrequest.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			draftUnavailable(w, r, logg)
			return
		}
		owner, ok := draftOwner(w, r, logg)
		if !ok {
			return
		}

		var body designrequest.CreateInput
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		draft, err := svc.Create(r.Context(), owner, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, draft)
	}
}

func GetDraft(svc designrequest.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			draftUnavailable(w, r, logg)
			return
		}
		owner, ok := draftOwner(w, r, logg)
		if !ok {
			return
		}
		draft, err := svc.Get(r.Context(), owner, chi.URLParam(r, "draftId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// PatchDraft applies field operations atomically.
func PatchDraft(svc designrequest.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			draftUnavailable(w, r, logg)
			return
		}
		owner, ok := draftOwner(w, r, logg)
		if !ok {
			return
		}

		var body patchDraftBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.Patch(r.Context(), owner, chi.URLParam(r, "draftId"), body.Ops)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

func DeleteDraft(svc designrequest.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			draftUnavailable(w, r, logg)
			return
		}
		owner, ok := draftOwner(w, r, logg)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), owner, chi.URLParam(r, "draftId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// ValidateDraft returns the full missing-field report.
func ValidateDraft(svc designrequest.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			draftUnavailable(w, r, logg)
			return
		}
		owner, ok := draftOwner(w, r, logg)
		if !ok {
			return
		}
		report, err := svc.Validate(r.Context(), owner, chi.URLParam(r, "draftId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// DraftFieldMissing checks one field for inline highlighting.
func DraftFieldMissing(svc designrequest.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			draftUnavailable(w, r, logg)
			return
		}
		owner, ok := draftOwner(w, r, logg)
		if !ok {
			return
		}

		q := r.URL.Query()
		ref := designrequest.FieldRef{
			Category: enums.UniformCategory(strings.TrimSpace(q.Get("category"))),
			Gender:   enums.Gender(strings.TrimSpace(q.Get("gender"))),
			Piece:    enums.PieceType(strings.TrimSpace(q.Get("piece"))),
			Field:    designrequest.Field(strings.TrimSpace(q.Get("field"))),
		}
		if ref.Field == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "field is required"))
			return
		}

		missing, err := svc.FieldMissing(r.Context(), owner, chi.URLParam(r, "draftId"), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"missing": missing})
	}
}

// SubmitDraft accepts the pending image files as multipart parts named after
// their upload slots, then submits the design request.
func SubmitDraft(svc designrequest.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			draftUnavailable(w, r, logg)
			return
		}
		owner, ok := draftOwner(w, r, logg)
		if !ok {
			return
		}

		if err := parseMultipart(w, r, maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		files, err := formFiles(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), owner, chi.URLParam(r, "draftId"), files)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
