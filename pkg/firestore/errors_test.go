package firestore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(status.Error(codes.NotFound, "missing")))
	assert.False(t, IsNotFound(status.Error(codes.PermissionDenied, "nope")))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestIsDone(t *testing.T) {
	assert.True(t, IsDone(iterator.Done))
	assert.True(t, IsDone(fmt.Errorf("wrapped: %w", iterator.Done)))
	assert.False(t, IsDone(errors.New("other")))
}

func TestNilClientHelpers(t *testing.T) {
	var c *Client
	assert.Nil(t, c.Raw())
	assert.NoError(t, c.Close())
	assert.Error(t, c.Ping(context.Background()))
}
