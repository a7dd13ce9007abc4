package cache

//go:generate go run go.uber.org/mock/mockgen -source=./cache.go -destination=./mocks/cache_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"localguide/infras/otel"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	otelScopeName         = "cache"
	otelCacheKeyAttribute = "cache.key"
)

// Nil is returned, wrapped, when a key is absent.
var Nil = redis.Nil

// RedisCache stores JSON encoded read models and fixed-window counters.
type RedisCache interface {
	Save(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Increment(ctx context.Context, key string, window time.Duration) (Counter, error)
}

// Counter is the state of a fixed window after one hit.
type Counter struct {
	Hits    int64
	ResetIn time.Duration
}

type redisCache struct {
	client *redis.Client
	otel   otel.Otel
}

func NewRedisCache(client *redis.Client, ot otel.Otel) RedisCache {
	return &redisCache{
		client: client,
		otel:   ot,
	}
}

func (cache *redisCache) Save(ctx context.Context, key string, value any, ttl time.Duration) (err error) {
	ctx, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".Save")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelCacheKeyAttribute, key)

	payload, err := json.Marshal(value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to marshal cache value")

		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	if err = cache.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to set cache")

		return fmt.Errorf("failed to set cache value: %w", err)
	}

	log.Debug().Str("key", key).Dur("ttl", ttl).Msg("cache stored")

	return nil
}

// Get decodes the cached JSON into value. A miss is reported as an error wrapping Nil.
func (cache *redisCache) Get(ctx context.Context, key string, value any) (err error) {
	ctx, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".Get")
	defer scope.End()

	scope.SetAttribute(otelCacheKeyAttribute, key)

	payload, err := cache.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		scope.AddEvent("cache miss")

		return fmt.Errorf("cache miss for %s: %w", key, err)
	}

	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("key", key).Msg("failed to get cache")

		return fmt.Errorf("failed to get cache value: %w", err)
	}

	if err = json.Unmarshal(payload, value); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("key", key).Msg("failed to unmarshal cache")

		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return nil
}

func (cache *redisCache) Delete(ctx context.Context, key string) (err error) {
	ctx, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelCacheKeyAttribute, key)

	if err = cache.client.Del(ctx, key).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to delete cache")

		return fmt.Errorf("failed to delete cache value: %w", err)
	}

	return nil
}

// Increment counts one hit in the window that starts with the first hit on key.
func (cache *redisCache) Increment(ctx context.Context, key string, window time.Duration) (res Counter, err error) {
	ctx, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".Increment")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelCacheKeyAttribute, key)

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)

	_, err = cache.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		ttl = pipe.PTTL(ctx, key)

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to increment counter")

		return res, fmt.Errorf("failed to increment counter: %w", err)
	}

	return Counter{Hits: incr.Val(), ResetIn: max(ttl.Val(), 0)}, nil
}
