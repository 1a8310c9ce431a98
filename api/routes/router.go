package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uniformhub/gateway/api/controllers"
	"github.com/uniformhub/gateway/api/middleware"
	"github.com/uniformhub/gateway/internal/auth"
	"github.com/uniformhub/gateway/internal/constraints"
	"github.com/uniformhub/gateway/internal/designrequest"
	"github.com/uniformhub/gateway/internal/fabrics"
	"github.com/uniformhub/gateway/internal/feedback"
	"github.com/uniformhub/gateway/internal/milestones"
	"github.com/uniformhub/gateway/internal/notifications"
	"github.com/uniformhub/gateway/pkg/config"
	"github.com/uniformhub/gateway/pkg/enums"
	"github.com/uniformhub/gateway/pkg/logger"
)

type rateStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Services bundles everything the router mounts.
type Services struct {
	Auth          auth.Service
	Constraints   constraints.Service
	Fabrics       fabrics.Service
	Drafts        designrequest.Service
	Milestones    milestones.Service
	Notifications notifications.Service
	Feedback      feedback.Service

	RateStore rateStore
	Pingers   map[string]controllers.Pinger
	Metrics   http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewRateLimitPolicy("login", middleware.ScopeIP, cfg.RateLimit.LoginWindow, cfg.RateLimit.LoginIPLimit)
	submitPolicy := middleware.NewRateLimitPolicy("submit", middleware.ScopeUser, cfg.RateLimit.SubmitWindow, cfg.RateLimit.SubmitLimit)
	maxBody := cfg.Drafts.MaxMultipartBytes()

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, svc.Pingers))
	})

	metricsHandler := svc.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.RateLimit(loginPolicy, svc.RateStore, logg)).Post("/google", controllers.AuthGoogleLogin(svc.Auth, cfg, logg))
		r.Get("/access", controllers.AuthAccess(svc.Auth, cfg, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/constraints", controllers.GetConstraints(svc.Constraints, logg))
		r.Get("/fabrics", controllers.GetFabrics(svc.Fabrics, logg))
		r.Post("/feedback", controllers.SubmitFeedback(svc.Feedback, maxBody, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svc.Notifications, logg))
			r.Get("/stream", controllers.StreamNotifications(svc.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svc.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svc.Notifications, logg))
		})

		r.Route("/design-requests/drafts", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleSchool, enums.RoleAdmin))
			r.Post("/", controllers.CreateDraft(svc.Drafts, logg))
			r.Route("/{draftId}", func(r chi.Router) {
				r.Get("/", controllers.GetDraft(svc.Drafts, logg))
				r.Patch("/", controllers.PatchDraft(svc.Drafts, logg))
				r.Delete("/", controllers.DeleteDraft(svc.Drafts, logg))
				r.Get("/validation", controllers.ValidateDraft(svc.Drafts, logg))
				r.Get("/validation/field", controllers.DraftFieldMissing(svc.Drafts, logg))
				r.With(middleware.RateLimit(submitPolicy, svc.RateStore, logg)).Post("/submit", controllers.SubmitDraft(svc.Drafts, maxBody, logg))
			})
		})

		r.Route("/garment/orders", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleGarment))
			r.Get("/", controllers.ListGarmentOrders(svc.Milestones, logg))
			r.Get("/{orderId}/milestones", controllers.GetOrderMilestones(svc.Milestones, logg))
			r.Post("/{orderId}/milestones/{milestoneId}/advance", controllers.AdvanceMilestone(svc.Milestones, maxBody, logg))
		})
	})

	return r
}
