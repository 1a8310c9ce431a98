package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/uniformhub/gateway/api/middleware"
	"github.com/uniformhub/gateway/api/responses"
	"github.com/uniformhub/gateway/api/validators"
	"github.com/uniformhub/gateway/internal/notifications"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
	"github.com/uniformhub/gateway/pkg/logger"
)

const streamHeartbeat = 25 * time.Second

// ListNotifications returns the caller's notifications, newest first.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		params := notifications.ListParams{Email: middleware.EmailFromContext(r.Context())}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, notifications.MaxListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Limit = limit

		unread, err := validators.ParseQueryBool(r, "unread_only")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.UnreadOnly = unread

		resp, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// MarkNotificationRead flags one notification as read.
func MarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "notificationId"))
		if err := svc.MarkRead(r.Context(), middleware.EmailFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"id": id})
	}
}

func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		updated, err := svc.MarkAllRead(r.Context(), middleware.EmailFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"updated": updated})
	}
}

// StreamNotifications pushes the caller's notification list as server-sent
// events every time it changes. A comment line is written between updates so
// idle proxies keep the connection open.
func StreamNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		ctx := r.Context()
		email := middleware.EmailFromContext(ctx)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		events := make(chan []notifications.Notification, 1)
		done := make(chan error, 1)
		go func() {
			done <- svc.Watch(ctx, email, func(items []notifications.Notification) error {
				select {
				case events <- items:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			})
		}()

		send := func(items []notifications.Notification) bool {
			payload, err := json.Marshal(map[string]any{"items": items})
			if err != nil {
				logg.Error(ctx, "notifications.stream_encode_failed", err)
				return false
			}
			fmt.Fprintf(w, "event: notifications\ndata: %s\n\n", payload)
			flusher.Flush()
			return true
		}

		ticker := time.NewTicker(streamHeartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err := <-done:
				select {
				case items := <-events:
					send(items)
				default:
				}
				if err != nil && ctx.Err() == nil {
					logg.Error(ctx, "notifications.stream_failed", err)
					fmt.Fprint(w, "event: error\ndata: {\"code\":\"DEPENDENCY_ERROR\"}\n\n")
					flusher.Flush()
				}
				return
			case items := <-events:
				if !send(items) {
					return
				}
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
