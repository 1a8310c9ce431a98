package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/uniformhub/gateway/api/responses"
	"github.com/uniformhub/gateway/api/validators"
	"github.com/uniformhub/gateway/internal/milestones"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
	"github.com/uniformhub/gateway/pkg/logger"
)

// ListGarmentOrders returns every order with its annotated milestones.
func ListGarmentOrders(svc milestones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "milestones service unavailable"))
			return
		}
		orders, err := svc.Orders(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

func GetOrderMilestones(svc milestones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "milestones service unavailable"))
			return
		}
		orderID, err := validators.ParsePathID(chi.URLParam(r, "orderId"), "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views, err := svc.Milestones(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// AdvanceMilestone moves a milestone one step forward. An optional evidence
// photo travels in the multipart field "image".
func AdvanceMilestone(svc milestones.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "milestones service unavailable"))
			return
		}
		orderID, err := validators.ParsePathID(chi.URLParam(r, "orderId"), "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		milestoneID, err := validators.ParsePathID(chi.URLParam(r, "milestoneId"), "milestone_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := parseMultipart(w, r, maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		images, err := fieldFiles(r, "image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := milestones.AdvanceInput{OrderID: orderID, MilestoneID: milestoneID}
		if len(images) > 0 {
			input.Image = &images[0]
		}

		views, err := svc.Advance(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}
