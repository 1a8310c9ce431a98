package instance

import (
	"os"

	"github.com/uniformhub/gateway/pkg/env"
)

// GetID identifies this gateway process in logs: UNIFORMHUB_INSTANCE_ID,
// then the Cloud Run revision, then the host name.
func GetID() string {
	if id := env.Get("INSTANCE_ID", ""); id != "" {
		return id
	}
	if id := env.Get("K_REVISION", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
