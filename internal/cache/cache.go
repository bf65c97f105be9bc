package cache

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/cloo-solutions/plantrec/internal/logging"
	"github.com/cloo-solutions/plantrec/internal/metrics"
)

// DefaultTTL applies when Set is called with a zero ttl.
const DefaultTTL = 300 * time.Second

// Cache encodes values as JSON on top of a Backend. Backend errors are
// logged and counted, then treated as a miss or a no-op.
type Cache struct {
	backend    Backend
	defaultTTL time.Duration
}

// New creates a Cache. A non-positive defaultTTL uses DefaultTTL.
func New(backend Backend, defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Cache{backend: backend, defaultTTL: defaultTTL}
}

// GetRaw returns the stored bytes for key.
func (c *Cache) GetRaw(ctx context.Context, key string) ([]byte, bool) {
	b, found, err := c.backend.Get(ctx, key)
	if err != nil {
		c.fail(ctx, "get", key, err)
		found = false
	}
	metrics.RecordCacheLookup(namespaceOf(key), found)
	return b, found
}

// Get decodes the value stored at key into dst. It reports false on a miss,
// a backend error or an undecodable payload.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	b, ok := c.GetRaw(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		c.fail(ctx, "decode", key, err)
		return false
	}
	return true
}

// SetRaw stores bytes under key. ttl == 0 uses the cache default.
func (c *Cache) SetRaw(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if err := c.backend.Set(ctx, key, value, ttl); err != nil {
		c.fail(ctx, "set", key, err)
	}
}

// Set encodes v and stores it under key.
func (c *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		c.fail(ctx, "encode", key, err)
		return
	}
	c.SetRaw(ctx, key, b, ttl)
}

func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.backend.Delete(ctx, key); err != nil {
		c.fail(ctx, "delete", key, err)
	}
}

// InvalidatePattern removes every key matching pattern and returns the count.
func (c *Cache) InvalidatePattern(ctx context.Context, pattern string) int {
	n, err := c.backend.DeletePattern(ctx, pattern)
	if err != nil {
		c.fail(ctx, "delete_pattern", pattern, err)
		return 0
	}
	return n
}

// InvalidateNamespace removes every key of the given namespaces.
func (c *Cache) InvalidateNamespace(ctx context.Context, namespaces ...string) int {
	total := 0
	for _, ns := range namespaces {
		n := c.InvalidatePattern(ctx, ns+":*")
		metrics.CacheInvalidations.WithLabelValues(ns).Inc()
		logging.Ctx(ctx).Debug().Str("namespace", ns).Int("removed", n).Msg("cache namespace invalidated")
		total += n
	}
	return total
}

func (c *Cache) fail(ctx context.Context, op, key string, err error) {
	metrics.CacheErrors.WithLabelValues(op).Inc()
	logging.Ctx(ctx).Warn().Err(err).Str("op", op).Str("key", key).Msg("cache operation failed")
}

func namespaceOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "default"
}
