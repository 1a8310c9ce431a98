package fabrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uniformhub/gateway/pkg/backend"
	"github.com/uniformhub/gateway/pkg/logger"
	"github.com/uniformhub/gateway/pkg/redis"
)

const cacheName = "fabrics"

type catalogSource interface {
	GetFabrics(ctx context.Context) (backend.FabricCatalog, error)
}

type cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(name string) string
}

// Service serves the fabric catalogue through a shared Redis cache.
type Service interface {
	Catalog(ctx context.Context) (backend.FabricCatalog, error)
}

type service struct {
	source catalogSource
	cache  cache
	ttl    time.Duration
	logg   *logger.Logger
}

func NewService(source catalogSource, c cache, ttl time.Duration, logg *logger.Logger) (Service, error) {
	if source == nil {
		return nil, fmt.Errorf("fabric source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{source: source, cache: c, ttl: ttl, logg: logg}, nil
}

// Catalog returns the cached catalogue, loading it from the backend on a miss.
// Cache failures degrade to a direct backend read.
func (s *service) Catalog(ctx context.Context) (backend.FabricCatalog, error) {
	if s.cache == nil || s.ttl <= 0 {
		return s.source.GetFabrics(ctx)
	}
	key := s.cache.CacheKey(cacheName)

	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var catalog backend.FabricCatalog
		if jsonErr := json.Unmarshal([]byte(raw), &catalog); jsonErr == nil {
			return catalog, nil
		}
		s.logg.Warn(s.logg.WithField(ctx, "key", key), "discarding unreadable fabric cache entry")
	case !errors.Is(err, redis.ErrNil):
		s.logg.Warn(s.logg.WithError(ctx, err), "fabric cache read failed")
	}

	catalog, err := s.source.GetFabrics(ctx)
	if err != nil {
		return backend.FabricCatalog{}, err
	}
	if encoded, err := json.Marshal(catalog); err == nil {
		if err := s.cache.Set(ctx, key, string(encoded), s.ttl); err != nil {
			s.logg.Warn(s.logg.WithError(ctx, err), "fabric cache write failed")
		}
	}
	return catalog, nil
}
