package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Catalog cache keys.
const (
	catalogKeyPrefix = "catalog:"

	TopFilmsKey  = catalogKeyPrefix + "top-films"
	TopActorsKey = catalogKeyPrefix + "top-actors"
	CitiesKey    = catalogKeyPrefix + "cities"

	// DefaultCatalogTTL bounds staleness of cached catalog listings.
	DefaultCatalogTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// FilmKey returns the cache key for a film detail payload.
func FilmKey(id int64) string {
	return catalogKeyPrefix + "film:" + strconv.FormatInt(id, 10)
}

// ActorKey returns the cache key for an actor detail payload.
func ActorKey(id int64) string {
	return catalogKeyPrefix + "actor:" + strconv.FormatInt(id, 10)
}

// GetJSON loads a cached value into dest.
// Returns ErrCacheMiss if the key is absent.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// Corrupt entries are treated as misses and dropped.
		c.client.Del(ctx, key)
		return ErrCacheMiss
	}

	return nil
}

// SetJSON stores value under key with the given TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache %s: %w", key, err)
	}

	return nil
}

// Delete removes the given keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}

	return nil
}
