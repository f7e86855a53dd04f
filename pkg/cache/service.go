package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wanderly/pkg/logger"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ErrCacheMiss is returned by Get when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// Service stores JSON-encoded values. Cache failures other than a miss are
// returned by the plain operations and only logged by GetOrSet.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error

	// GetOrSet fills dest from the cache, or from fetcher on a miss.
	// Concurrent misses on one key share a single fetcher call.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error
}

type service struct {
	client   redis.UniversalClient
	inflight singleflight.Group
	log      *logger.Logger
}

func NewService(client redis.UniversalClient) Service {
	return &service{client: client, log: logger.GetDefault()}
}

func (s *service) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	return json.Unmarshal(val, dest)
}

func (s *service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

const scanBatch = 100

// DeletePattern walks the keyspace with SCAN rather than KEYS
func (s *service) DeletePattern(ctx context.Context, pattern string) error {
	iter := s.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := s.Delete(ctx, batch...); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan %s: %w", pattern, err)
	}
	return s.Delete(ctx, batch...)
}

func (s *service) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	err := s.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.log.WarnContext(ctx, "cache read failed, falling back to store", "key", key, "error", err)
	}

	raw, err, _ := s.inflight.Do(key, func() (interface{}, error) {
		data, err := fetcher()
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("cache encode %s: %w", key, err)
		}
		if err := s.client.Set(ctx, key, encoded, ttl).Err(); err != nil {
			s.log.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		}
		return encoded, nil
	})
	if err != nil {
		return err
	}

	// decoding the encoded form gives dest the same shape as a cache hit
	return json.Unmarshal(raw.([]byte), dest)
}

type nopService struct{}

// NewNop returns a Service that never stores anything; every read is a miss
func NewNop() Service {
	return nopService{}
}

func (nopService) Get(context.Context, string, interface{}) error { return ErrCacheMiss }

func (nopService) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (nopService) Delete(context.Context, ...string) error { return nil }

func (nopService) DeletePattern(context.Context, string) error { return nil }

func (nopService) GetOrSet(_ context.Context, _ string, _ time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	data, err := fetcher()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
