package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
)

// GetFabrics returns the categorized fabric catalogue.
func (c *Client) GetFabrics(ctx context.Context) (FabricCatalog, error) {
	var out FabricCatalog
	err := c.do(ctx, http.MethodGet, "/designs/fabrics", nil, &out, "load fabrics")
	return out, err
}

// CreateDesignRequest submits a new-design payload.
func (c *Client) CreateDesignRequest(ctx context.Context, payload any) error {
	return c.do(ctx, http.MethodPost, "/designs/requests", payload, nil, "create design request")
}

// ImportDesign submits an import-design payload.
func (c *Client) ImportDesign(ctx context.Context, payload any) error {
	return c.do(ctx, http.MethodPost, "/designs/import", payload, nil, "import design")
}

// GetOrdersByGarment lists the calling factory's orders.
func (c *Client) GetOrdersByGarment(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := c.do(ctx, http.MethodGet, "/orders/garment", nil, &out, "load orders"); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Order{}
	}
	return out, nil
}

// ViewMilestone lists an order's milestones in production order.
func (c *Client) ViewMilestone(ctx context.Context, orderID int64) ([]Milestone, error) {
	var out []Milestone
	path := fmt.Sprintf("/orders/%d/milestones", orderID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, "load milestones"); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Milestone{}
	}
	return out, nil
}

// UpdateMilestoneStatus advances a milestone to its next status.
func (c *Client) UpdateMilestoneStatus(ctx context.Context, update MilestoneStatusUpdate) error {
	return c.do(ctx, http.MethodPut, "/milestones/status", update, nil, "update milestone status")
}

// GetConfigByKey loads a raw configuration value.
func (c *Client) GetConfigByKey(ctx context.Context, key string) (ConfigValue, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return ConfigValue{}, pkgerrors.New(pkgerrors.CodeValidation, "config key is required")
	}
	var out ConfigValue
	err := c.do(ctx, http.MethodGet, "/configs/"+url.PathEscape(trimmed), nil, &out, "load config")
	return out, err
}

// SubmitFeedback records a feedback or report entry.
func (c *Client) SubmitFeedback(ctx context.Context, feedback Feedback) error {
	return c.do(ctx, http.MethodPost, "/feedbacks", feedback, nil, "submit feedback")
}

// Login exchanges a Google identity for a backend access token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &out, "login"); err != nil {
		return LoginResponse{}, err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return LoginResponse{}, pkgerrors.New(pkgerrors.CodeDependency, "failed to login: no access token issued")
	}
	return out, nil
}
