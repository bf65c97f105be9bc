// Package cache is a best-effort TTL response cache with namespace
// invalidation. Backends store opaque bytes; Cache adds JSON encoding,
// logging and metrics and never surfaces backend failures to callers.
package cache

import (
	"context"
	"time"
)

// Namespaces used by the HTTP layer and services. Keys are "<namespace>:<hash>".
const (
	NamespacePlants          = "plants"
	NamespaceRecommendations = "recommendations"
	NamespaceStats           = "recommendation_stats"
)

// Backend is a key/value store with per-entry expiry and glob-pattern delete.
type Backend interface {
	// Get returns the stored value. found is false on a miss or expiry.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set stores value for ttl. A non-positive ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePattern removes every key matching a glob such as "plants:*".
	DeletePattern(ctx context.Context, pattern string) (int, error)
}
