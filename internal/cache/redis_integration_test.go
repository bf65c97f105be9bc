//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/plantrec/internal/testutil"
)

func TestRedisBackend_Integration(t *testing.T) {
	ctx := context.Background()
	rc := testutil.NewRedisContainer(ctx, t)
	defer rc.Terminate(ctx)

	client, err := NewRedisClient(ctx, rc.URL())
	require.NoError(t, err)
	backend := NewRedisBackend(client, DefaultBreakerConfig())
	defer backend.Close()

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, backend.Set(ctx, "plants:1", []byte(`{"a":1}`), time.Minute))

		got, found, err := backend.Get(ctx, "plants:1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte(`{"a":1}`), got)
	})

	t.Run("missing key is a miss", func(t *testing.T) {
		_, found, err := backend.Get(ctx, "plants:none")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("ttl expiry", func(t *testing.T) {
		require.NoError(t, backend.Set(ctx, "short:1", []byte("v"), time.Second))
		time.Sleep(1500 * time.Millisecond)

		_, found, err := backend.Get(ctx, "short:1")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("delete pattern", func(t *testing.T) {
		for i := 0; i < 250; i++ {
			require.NoError(t, backend.Set(ctx, fmt.Sprintf("recommendations:%d", i), []byte("v"), time.Minute))
		}
		require.NoError(t, backend.Set(ctx, "recommendation_stats:1", []byte("v"), time.Minute))

		n, err := backend.DeletePattern(ctx, "recommendations:*")
		require.NoError(t, err)
		assert.Equal(t, 250, n)

		_, found, err := backend.Get(ctx, "recommendation_stats:1")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("cache wrapper round trip", func(t *testing.T) {
		c := New(backend, time.Minute)
		c.Set(ctx, "plants:wrapped", map[string]int{"n": 3}, 0)

		var got map[string]int
		require.True(t, c.Get(ctx, "plants:wrapped", &got))
		assert.Equal(t, 3, got["n"])
	})
}

func TestRedisBackend_BreakerOpensOnDeadServer(t *testing.T) {
	ctx := context.Background()
	rc := testutil.NewRedisContainer(ctx, t)

	client, err := NewRedisClient(ctx, rc.URL())
	require.NoError(t, err)
	backend := NewRedisBackend(client, BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureThreshold: 2})
	require.NoError(t, rc.Terminate(ctx))

	c := New(backend, time.Minute)
	for i := 0; i < 5; i++ {
		var v string
		assert.False(t, c.Get(ctx, "plants:1", &v))
	}

	_, _, err = backend.Get(ctx, "plants:1")
	assert.ErrorContains(t, err, "circuit breaker is open")
}
