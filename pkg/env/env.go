package env

import (
	"os"
	"strings"
)

// Prefix namespaces every gateway variable.
const Prefix = "UNIFORMHUB_"

// Get reads key, preferring its UNIFORMHUB_-prefixed form, and falls back
// when neither is set.
func Get(key, fallback string) string {
	key = strings.TrimPrefix(key, Prefix)
	for _, name := range []string{Prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
