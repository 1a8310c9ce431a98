package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/uniformhub/gateway/pkg/config"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
	"golang.org/x/oauth2"
)

const (
	defaultUserInfoURL    = "https://www.googleapis.com/oauth2/v3/userinfo"
	responseBodyReadLimit = 1024
)

// UserInfo is the profile returned by Google's userinfo endpoint.
type UserInfo struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Client resolves Google OAuth access tokens into user profiles.
type Client struct {
	userInfoURL string
	timeout     time.Duration
	base        *http.Client
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient sets the transport used underneath the OAuth2 client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.base = client
		}
	}
}

// NewClient builds the userinfo client.
func NewClient(cfg config.GoogleConfig, opts ...Option) *Client {
	client := &Client{
		userInfoURL: strings.TrimSpace(cfg.UserInfoURL),
		timeout:     cfg.Timeout,
	}
	if client.userInfoURL == "" {
		client.userInfoURL = defaultUserInfoURL
	}
	if client.timeout <= 0 {
		client.timeout = 10 * time.Second
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// UserInfo fetches the profile for a Google access token.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (UserInfo, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return UserInfo{}, pkgerrors.New(pkgerrors.CodeValidation, "google access token is required")
	}

	if c.base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	httpClient.Timeout = c.timeout

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return UserInfo{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build userinfo request")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return UserInfo{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to fetch google profile")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return UserInfo{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "google token rejected")
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return UserInfo{}, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "failed to fetch google profile")
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return UserInfo{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode google profile")
	}
	if strings.TrimSpace(info.Email) == "" {
		return UserInfo{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "google profile has no email")
	}
	return info, nil
}
