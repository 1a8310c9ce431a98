package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniformhub/gateway/internal/notifications"
	"github.com/uniformhub/gateway/pkg/enums"
)

type fakeNotificationService struct {
	listFn        func(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error)
	markReadFn    func(ctx context.Context, email, id string) error
	markAllReadFn func(ctx context.Context, email string) (int64, error)
	watchFn       func(ctx context.Context, email string, emit func([]notifications.Notification) error) error
}

func (f *fakeNotificationService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return f.listFn(ctx, params)
}

func (f *fakeNotificationService) MarkRead(ctx context.Context, email, id string) error {
	return f.markReadFn(ctx, email, id)
}

func (f *fakeNotificationService) MarkAllRead(ctx context.Context, email string) (int64, error) {
	return f.markAllReadFn(ctx, email)
}

func (f *fakeNotificationService) Watch(ctx context.Context, email string, emit func([]notifications.Notification) error) error {
	return f.watchFn(ctx, email, emit)
}

func TestListNotificationsParsesQuery(t *testing.T) {
	svc := &fakeNotificationService{
		listFn: func(_ context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
			assert.Equal(t, testEmail, params.Email)
			assert.Equal(t, 10, params.Limit)
			assert.True(t, params.UnreadOnly)
			return &notifications.ListResult{Items: []notifications.Notification{{ID: "n1"}}, Unread: 1}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=10&unread_only=true", nil)
	w := httptest.NewRecorder()

	ListNotifications(svc, testLogger())(w, asCaller(req, enums.RoleSchool, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var out notifications.ListResult
	decodeData(t, w, &out)
	assert.Equal(t, 1, out.Unread)
}

func TestListNotificationsRejectsBadLimit(t *testing.T) {
	svc := &fakeNotificationService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=-1", nil)
	w := httptest.NewRecorder()

	ListNotifications(svc, testLogger())(w, asCaller(req, enums.RoleSchool, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkNotificationRead(t *testing.T) {
	var marked string
	svc := &fakeNotificationService{
		markReadFn: func(_ context.Context, email, id string) error {
			assert.Equal(t, testEmail, email)
			marked = id
			return nil
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/n1/read", nil)
	w := httptest.NewRecorder()

	MarkNotificationRead(svc, testLogger())(w, asCaller(req, enums.RoleSchool, map[string]string{"notificationId": "n1"}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "n1", marked)
}

func TestStreamNotificationsWritesEvents(t *testing.T) {
	svc := &fakeNotificationService{
		watchFn: func(_ context.Context, email string, emit func([]notifications.Notification) error) error {
			assert.Equal(t, testEmail, email)
			return emit([]notifications.Notification{{ID: "n1", Title: "Order shipped"}})
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream", nil)
	w := httptest.NewRecorder()

	StreamNotifications(svc, testLogger())(w, asCaller(req, enums.RoleSchool, nil))

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "event: notifications\ndata: "))
	assert.Contains(t, body, `"title":"Order shipped"`)
}

func TestStreamNotificationsReportsWatchFailure(t *testing.T) {
	svc := &fakeNotificationService{
		watchFn: func(context.Context, string, func([]notifications.Notification) error) error {
			return errors.New("listen failed")
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream", nil)
	w := httptest.NewRecorder()

	StreamNotifications(svc, testLogger())(w, asCaller(req, enums.RoleSchool, nil))

	assert.Contains(t, w.Body.String(), "event: error")
}
