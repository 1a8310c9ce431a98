package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/uniformhub/gateway/api/responses"
	"github.com/uniformhub/gateway/internal/feedback"
	"github.com/uniformhub/gateway/pkg/enums"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
	"github.com/uniformhub/gateway/pkg/logger"
)

// SubmitFeedback accepts a rating or a problem report with up to
// feedback.MaxImages attached photos.
func SubmitFeedback(svc feedback.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feedback service unavailable"))
			return
		}
		if err := parseMultipart(w, r, maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := feedback.Input{
			Type:     enums.FeedbackType(strings.TrimSpace(r.FormValue("type"))),
			TargetID: strings.TrimSpace(r.FormValue("target_id")),
			Content:  strings.TrimSpace(r.FormValue("content")),
		}
		if raw := strings.TrimSpace(r.FormValue("rating")); raw != "" {
			rating, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "rating must be an integer").WithDetails(map[string]string{"rating": "integer"}))
				return
			}
			input.Rating = rating
		}

		images, err := fieldFiles(r, "images")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(images) > feedback.MaxImages {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "too many images").WithDetails(map[string]string{"images": "max"}))
			return
		}
		input.Images = images

		if err := svc.Submit(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]bool{"submitted": true})
	}
}
