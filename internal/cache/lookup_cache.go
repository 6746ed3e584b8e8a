package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AnhAnhii/veterans-verify-system/internal/models"
)

const lookupKeyPrefix = "va_lookup:"

// ILookupCache stores registry results per (source, query).
type ILookupCache interface {
	Get(ctx context.Context, source models.VASource, key string) ([]models.VALookupResult, bool, error)
	Set(ctx context.Context, source models.VASource, key string, results []models.VALookupResult) error
	Flush(ctx context.Context) (int, error)
}

type lookupCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewLookupCache returns a Redis-backed lookup cache whose entries expire after ttl.
func NewLookupCache(rdb *redis.Client, ttl time.Duration) ILookupCache {
	return &lookupCache{rdb: rdb, ttl: ttl}
}

// LookupKey builds the cache key for a source and normalised query.
func LookupKey(source models.VASource, key string) string {
	return lookupKeyPrefix + string(source) + ":" + strings.ToLower(strings.TrimSpace(key))
}

func (c *lookupCache) Get(ctx context.Context, source models.VASource, key string) ([]models.VALookupResult, bool, error) {
	raw, err := c.rdb.Get(ctx, LookupKey(source, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read lookup cache: %w", err)
	}

	var results []models.VALookupResult
	if err := json.Unmarshal(raw, &results); err != nil {
		// A corrupt entry is treated as a miss and replaced on the next write.
		_ = c.rdb.Del(ctx, LookupKey(source, key)).Err()
		return nil, false, nil
	}
	return results, true, nil
}

// Set stores results. Empty result sets are never cached.
func (c *lookupCache) Set(ctx context.Context, source models.VASource, key string, results []models.VALookupResult) error {
	if len(results) == 0 {
		return nil
	}
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode lookup results: %w", err)
	}
	if err := c.rdb.Set(ctx, LookupKey(source, key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write lookup cache: %w", err)
	}
	return nil
}

// Flush removes every cached lookup and returns how many keys were deleted.
func (c *lookupCache) Flush(ctx context.Context) (int, error) {
	removed := 0
	iter := c.rdb.Scan(ctx, 0, lookupKeyPrefix+"*", 500).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 500 {
			n, err := c.rdb.Del(ctx, batch...).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to delete lookup keys: %w", err)
			}
			removed += int(n)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("failed to scan lookup keys: %w", err)
	}
	if len(batch) > 0 {
		n, err := c.rdb.Del(ctx, batch...).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to delete lookup keys: %w", err)
		}
		removed += int(n)
	}
	return removed, nil
}
