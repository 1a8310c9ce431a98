package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcfirestore "cloud.google.com/go/firestore"
	"github.com/uniformhub/gateway/pkg/config"
	"github.com/uniformhub/gateway/pkg/logger"
	"google.golang.org/api/option"
)

// Client wraps the Firestore client with its project binding.
type Client struct {
	raw       *gcfirestore.Client
	projectID string
}

// New connects to Firestore. Without a credentials file the application
// default credentials are used.
func New(ctx context.Context, cfg config.GCPConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		return nil, errors.New("gcp project id is required")
	}

	var opts []option.ClientOption
	if file := strings.TrimSpace(cfg.CredentialsFile); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}

	raw, err := gcfirestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "gcp_project", projectID), "firestore client initialized")
	}
	return &Client{raw: raw, projectID: projectID}, nil
}

// Raw exposes the underlying client for repositories.
func (c *Client) Raw() *gcfirestore.Client {
	if c == nil {
		return nil
	}
	return c.raw
}

// Ping performs a cheap read to verify connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.raw == nil {
		return errors.New("firestore client not initialized")
	}
	iter := c.raw.Collections(ctx)
	if _, err := iter.Next(); err != nil && !IsDone(err) {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

// Close releases the client.
func (c *Client) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}
