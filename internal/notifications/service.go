package notifications

import (
	"context"
	"strings"

	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
)

const (
	defaultListLimit = 50
	MaxListLimit     = 200 // largest page a caller may request
)

// Service defines notification list/read operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, email, notificationID string) error
	MarkAllRead(ctx context.Context, email string) (int64, error)
	Watch(ctx context.Context, email string, emit func([]Notification) error) error
}

type service struct {
	repo Repository
}

// ListParams filters the caller's notifications.
type ListParams struct {
	Email      string
	Limit      int
	UnreadOnly bool
}

// ListResult wraps returned notifications with the unread tally.
type ListResult struct {
	Items  []Notification `json:"items"`
	Unread int            `json:"unread"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	email := normalizeEmail(params.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := s.repo.List(ctx, listNotificationsParams{
		Email:      email,
		Limit:      limit,
		UnreadOnly: params.UnreadOnly,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load notifications")
	}
	if rows == nil {
		rows = []Notification{}
	}

	unread := 0
	for _, n := range rows {
		if !n.Read {
			unread++
		}
	}
	return &ListResult{Items: rows, Unread: unread}, nil
}

func (s *service) MarkRead(ctx context.Context, email, notificationID string) error {
	email = normalizeEmail(email)
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, email, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, email string) (int64, error) {
	email = normalizeEmail(email)
	if email == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}

	count, err := s.repo.MarkAllRead(ctx, email)
	if err != nil {
		return count, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to mark notifications read")
	}
	return count, nil
}

func (s *service) Watch(ctx context.Context, email string, emit func([]Notification) error) error {
	email = normalizeEmail(email)
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if emit == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "watch callback required")
	}
	if err := s.repo.Watch(ctx, email, emit); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "notification stream interrupted")
	}
	return nil
}
