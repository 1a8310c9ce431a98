package cloudinary

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniformhub/gateway/pkg/config"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testConfig() config.CloudinaryConfig {
	return config.CloudinaryConfig{
		CloudName:    "demo",
		APIKey:       "key-123",
		UploadPreset: "school-preset",
		Folder:       "uniformhub",
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func TestUploadSendsMultipartForm(t *testing.T) {
	var captured *http.Request
	fields := map[string]string{}
	var fileBody string

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		captured = req
		require.NoError(t, req.ParseMultipartForm(1<<20))
		for k, v := range req.MultipartForm.Value {
			fields[k] = v[0]
		}
		fh := req.MultipartForm.File["file"][0]
		f, err := fh.Open()
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		fileBody = string(data)
		return jsonResponse(http.StatusOK, `{"url":"http://img/1.png","secure_url":"https://img/1.png"}`), nil
	})

	client, err := NewClient(testConfig(),
		WithBaseURL("http://cloud.test/v1_1"),
		WithHTTPClient(&http.Client{Transport: rt}),
		WithIDGenerator(func() string { return "fixed-id" }),
	)
	require.NoError(t, err)

	url, err := client.Upload(context.Background(), File{Name: "logo.png", ContentType: "image/png", Body: strings.NewReader("png-bytes")})
	require.NoError(t, err)

	assert.Equal(t, "https://img/1.png", url)
	assert.Equal(t, "http://cloud.test/v1_1/demo/image/upload", captured.URL.String())
	assert.Equal(t, "school-preset", fields["upload_preset"])
	assert.Equal(t, "uniformhub/fixed-id", fields["public_id"])
	assert.Equal(t, "key-123", fields["api_key"])
	assert.Equal(t, "png-bytes", fileBody)
}

func TestUploadFallsBackToPlainURL(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"url":"http://img/2.png"}`), nil
	})
	client, err := NewClient(testConfig(), WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)

	url, err := client.Upload(context.Background(), File{Name: "a.png", Body: strings.NewReader("x")})
	require.NoError(t, err)
	assert.Equal(t, "http://img/2.png", url)
}

func TestUploadWithoutURLFails(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{}`), nil
	})
	client, err := NewClient(testConfig(), WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), File{Name: "a.png", Body: strings.NewReader("x")})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUpload, typed.Code())
}

func TestUploadNon200Fails(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, `{"error":{"message":"Upload preset not found"}}`), nil
	})
	client, err := NewClient(testConfig(), WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), File{Name: "a.png", Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload request failed")
}

func TestNewClientRequiresPreset(t *testing.T) {
	cfg := testConfig()
	cfg.UploadPreset = ""
	_, err := NewClient(cfg)
	require.Error(t, err)
}
