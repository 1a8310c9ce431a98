package cloudinary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uniformhub/gateway/pkg/config"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
)

const (
	defaultBaseURL        = "https://api.cloudinary.com/v1_1"
	responseBodyReadLimit = 1024
)

var (
	errCloudNameRequired = errors.New("cloudinary cloud name is required")
	errPresetRequired    = errors.New("cloudinary upload preset is required")
)

// Client uploads images to Cloudinary with an unsigned upload preset.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cloudName  string
	apiKey     string
	preset     string
	folder     string
	newID      func() string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithIDGenerator overrides how public ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// NewClient builds the Cloudinary client from configuration.
func NewClient(cfg config.CloudinaryConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.CloudName) == "" {
		return nil, errCloudNameRequired
	}
	if strings.TrimSpace(cfg.UploadPreset) == "" {
		return nil, errPresetRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSpace(cfg.BaseURL),
		cloudName:  strings.TrimSpace(cfg.CloudName),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		preset:     strings.TrimSpace(cfg.UploadPreset),
		folder:     strings.Trim(strings.TrimSpace(cfg.Folder), "/"),
		newID:      uuid.NewString,
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// File is a single image ready for upload.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Upload posts the file and returns the hosted URL. A response without a URL
// is treated as a failed upload.
func (c *Client) Upload(ctx context.Context, file File) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeUpload, "image host not configured")
	}
	if file.Body == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file body is required")
	}

	publicID := c.newID()
	if c.folder != "" {
		publicID = path.Join(c.folder, publicID)
	}

	body, contentType, err := c.encode(file, publicID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpload, err, "encode upload request")
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", strings.TrimRight(c.baseURL, "/"), c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpload, err, "build upload request")
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpload, err, "execute upload request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return "", pkgerrors.Wrap(pkgerrors.CodeUpload, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "upload request failed")
	}

	var apiResp struct {
		URL       string `json:"url"`
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpload, err, "decode upload response")
	}

	url := apiResp.SecureURL
	if url == "" {
		url = apiResp.URL
	}
	if url == "" {
		return "", pkgerrors.New(pkgerrors.CodeUpload, "image host returned no url")
	}
	return url, nil
}

func (c *Client) encode(file File, publicID string) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	name := file.Name
	if name == "" {
		name = "upload"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	if file.ContentType != "" {
		header.Set("Content-Type", file.ContentType)
	} else {
		header.Set("Content-Type", "application/octet-stream")
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return nil, "", err
	}

	fields := [][2]string{
		{"upload_preset", c.preset},
		{"public_id", publicID},
	}
	if c.apiKey != "" {
		fields = append(fields, [2]string{"api_key", c.apiKey})
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf, writer.FormDataContentType(), nil
}
