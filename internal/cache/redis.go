package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/cloo-solutions/plantrec/internal/logging"
)

// BreakerConfig tunes the circuit breaker in front of Redis.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig opens after five consecutive failures and probes
// again after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// RedisBackend stores entries in Redis. Calls go through a circuit breaker
// so an unreachable server fails fast.
type RedisBackend struct {
	client    *redis.Client
	breaker   *gobreaker.CircuitBreaker[any]
	scanCount int64
}

// NewRedisBackend wraps an existing client.
func NewRedisBackend(client *redis.Client, cfg BreakerConfig) *RedisBackend {
	settings := gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("cache circuit breaker state changed")
		},
	}
	return &RedisBackend{
		client:    client,
		breaker:   gobreaker.NewCircuitBreaker[any](settings),
		scanCount: 100,
	}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := r.breaker.Execute(func() (any, error) {
		b, err := r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return b, err
	})
	if err != nil {
		return nil, false, err
	}
	b, ok := res.([]byte)
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	_, err := r.breaker.Execute(func() (any, error) {
		return nil, r.client.Set(ctx, key, value, ttl).Err()
	})
	return err
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	_, err := r.breaker.Execute(func() (any, error) {
		return nil, r.client.Del(ctx, key).Err()
	})
	return err
}

// DeletePattern walks the keyspace with SCAN MATCH and deletes in batches.
func (r *RedisBackend) DeletePattern(ctx context.Context, pattern string) (int, error) {
	res, err := r.breaker.Execute(func() (any, error) {
		var (
			cursor  uint64
			removed int
		)
		for {
			keys, next, err := r.client.Scan(ctx, cursor, pattern, r.scanCount).Result()
			if err != nil {
				return removed, err
			}
			if len(keys) > 0 {
				n, err := r.client.Del(ctx, keys...).Result()
				if err != nil {
					return removed, err
				}
				removed += int(n)
			}
			cursor = next
			if cursor == 0 {
				return removed, nil
			}
		}
	})
	removed, _ := res.(int)
	return removed, err
}

// Close releases the underlying client.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
