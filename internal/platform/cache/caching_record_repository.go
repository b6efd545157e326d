// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"marketroach/internal/feature/marketdata/domain/entity"
	"marketroach/internal/feature/marketdata/usecase"
)

// CachingRecordRepository decorates a RecordRepository with Redis caching.
// Range query results are cached per (symbol, interval, start, end); writes
// invalidate every cached range of the affected symbol.
type CachingRecordRepository struct {
	inner     usecase.RecordRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.RecordRepository = (*CachingRecordRepository)(nil)

// NewCachingRecordRepository decorates a RecordRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "records".
func NewCachingRecordRepository(rdb *redis.Client, ttl time.Duration, inner usecase.RecordRepository, namespace string) *CachingRecordRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "records"
	}
	return &CachingRecordRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// UpsertBatch writes through to the underlying repository and invalidates the
// cached ranges of every affected symbol.
func (c *CachingRecordRepository) UpsertBatch(ctx context.Context, records []entity.AggregateRecord) error {
	if err := c.inner.UpsertBatch(ctx, records); err != nil {
		return err
	}
	c.invalidate(ctx, records)
	return nil
}

// InsertBatch writes through to the underlying repository and invalidates the
// cached ranges of every affected symbol.
func (c *CachingRecordRepository) InsertBatch(ctx context.Context, records []entity.AggregateRecord) error {
	if err := c.inner.InsertBatch(ctx, records); err != nil {
		return err
	}
	c.invalidate(ctx, records)
	return nil
}

func (c *CachingRecordRepository) invalidate(ctx context.Context, records []entity.AggregateRecord) {
	if c.rdb == nil || len(records) == 0 {
		return
	}
	// シンボル単位で無効化する。intervalを問わず全レンジを消す。
	seen := map[string]struct{}{}
	for _, rec := range records {
		prefix := c.symbolPrefix(rec.Symbol)
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		_ = c.deleteByPattern(ctx, prefix+"*") // Best effort: don't fail if cache deletion fails
	}
}

// FindRange retrieves records, checking cache first then falling back to the database.
func (c *CachingRecordRepository) FindRange(ctx context.Context, symbol, interval string, startMs, endMs int64) ([]entity.AggregateRecord, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindRange(ctx, symbol, interval, startMs, endMs)
	}

	key := c.cacheKey(symbol, interval, startMs, endMs)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.AggregateRecord
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.FindRange(ctx, symbol, interval, startMs, endMs)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// cacheKey generates a cache key for a specific range query.
func (c *CachingRecordRepository) cacheKey(symbol, interval string, startMs, endMs int64) string {
	return fmt.Sprintf("%s:%s:%s:%d:%d",
		c.namespace,
		safe(symbol),
		safe(interval),
		startMs,
		endMs,
	)
}

// symbolPrefix generates the invalidation prefix for one symbol.
func (c *CachingRecordRepository) symbolPrefix(symbol string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(symbol))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingRecordRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
