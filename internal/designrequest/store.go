package designrequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uniformhub/gateway/pkg/redis"
)

var (
	// ErrDraftNotFound is returned when a draft expired or never existed.
	ErrDraftNotFound = errors.New("draft not found")
	// ErrDraftContended is returned by Update when concurrent writers kept
	// winning every attempt.
	ErrDraftContended = errors.New("draft is being modified concurrently")
)

const updateAttempts = 5

// Store persists drafts for the lifetime of a session.
type Store interface {
	Get(ctx context.Context, owner, id string) (*Draft, error)
	Save(ctx context.Context, d *Draft) error
	Delete(ctx context.Context, owner, id string) error
	// Update applies mutate to the latest stored draft and saves the result
	// only if no other write landed in between. mutate may run more than once.
	Update(ctx context.Context, owner, id string, mutate func(*Draft) error) (*Draft, error)
}

type redisKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Update(ctx context.Context, key string, ttl time.Duration, fn func(current string) (string, error)) error
	DraftKey(owner, draftID string) string
}

type redisStore struct {
	kv  redisKV
	ttl time.Duration
}

// NewRedisStore keeps drafts in Redis; every save refreshes the TTL.
func NewRedisStore(kv redisKV, ttl time.Duration) (Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("draft ttl must be positive")
	}
	return &redisStore{kv: kv, ttl: ttl}, nil
}

func (s *redisStore) Get(ctx context.Context, owner, id string) (*Draft, error) {
	raw, err := s.kv.Get(ctx, s.kv.DraftKey(owner, id))
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeDraft(raw)
}

func decodeDraft(raw string) (*Draft, error) {
	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	d.ensureSlots()
	return &d, nil
}

func (s *redisStore) Save(ctx context.Context, d *Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return s.kv.Set(ctx, s.kv.DraftKey(d.Owner, d.ID), string(raw), s.ttl)
}

func (s *redisStore) Delete(ctx context.Context, owner, id string) error {
	return s.kv.Del(ctx, s.kv.DraftKey(owner, id))
}

func (s *redisStore) Update(ctx context.Context, owner, id string, mutate func(*Draft) error) (*Draft, error) {
	key := s.kv.DraftKey(owner, id)
	for attempt := 0; attempt < updateAttempts; attempt++ {
		var updated *Draft
		err := s.kv.Update(ctx, key, s.ttl, func(current string) (string, error) {
			d, err := decodeDraft(current)
			if err != nil {
				return "", err
			}
			if err := mutate(d); err != nil {
				return "", err
			}
			raw, err := json.Marshal(d)
			if err != nil {
				return "", fmt.Errorf("encode draft: %w", err)
			}
			updated = d
			return string(raw), nil
		})
		switch {
		case err == nil:
			return updated, nil
		case errors.Is(err, redis.ErrConflict):
			continue
		case errors.Is(err, redis.ErrNil):
			return nil, ErrDraftNotFound
		default:
			return nil, err
		}
	}
	return nil, ErrDraftContended
}
