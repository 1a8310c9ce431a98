package google

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

func TestUserInfoSendsBearerToken(t *testing.T) {
	var auth string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		auth = req.Header.Get("Authorization")
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"sub":"123","email":"head@school.edu","name":"Head","email_verified":true}`)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(config.GoogleConfig{UserInfoURL: "http://google.test/userinfo"}, WithHTTPClient(&http.Client{Transport: rt}))
	info, err := client.UserInfo(context.Background(), "ya29.token")
	require.NoError(t, err)

	assert.Equal(t, "Bearer ya29.token", auth)
	assert.Equal(t, "head@school.edu", info.Email)
	assert.Equal(t, "123", info.Subject)
}

func TestUserInfoRejectedToken(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusUnauthorized, Body: io.NopCloser(strings.NewReader("")), Header: http.Header{}}, nil
	})

	client := NewClient(config.GoogleConfig{}, WithHTTPClient(&http.Client{Transport: rt}))
	_, err := client.UserInfo(context.Background(), "bad")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestUserInfoRequiresToken(t *testing.T) {
	client := NewClient(config.GoogleConfig{})
	_, err := client.UserInfo(context.Background(), "")
	require.Error(t, err)
}
