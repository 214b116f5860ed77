package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
	"github.com/redis/go-redis/v9"
)

// schemaVersion guards the serialized snapshot shape. A stale blob written by
// an older build reads as a cache miss instead of crashing the session.
const schemaVersion = 1

type envelope struct {
	SchemaVersion int       `json:"schema_version"`
	Cart          cart.Cart `json:"cart"`
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 90 * 24 * time.Hour,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) Get(ctx context.Context, ownerID string) (*cart.Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var env envelope
	if err2 := json.Unmarshal(data, &env); err2 != nil {
		return nil, ErrCacheMiss // malformed snapshot, treat as absent
	}
	if env.SchemaVersion != schemaVersion {
		return nil, ErrCacheMiss
	}

	return &env.Cart, nil
}

func (r *RedisCache) Set(ctx context.Context, ownerID string, c *cart.Cart) error {
	data, err := json.Marshal(envelope{SchemaVersion: schemaVersion, Cart: *c})
	if err != nil {
		return fmt.Errorf("marshal cart snapshot failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(60)) * time.Minute
	if err := r.client.Set(ctx, cacheKey(ownerID), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, ownerID string) error {
	if err := r.client.Del(ctx, cacheKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(ownerID string) string {
	return fmt.Sprintf("storefront:cart:%s", ownerID)
}
