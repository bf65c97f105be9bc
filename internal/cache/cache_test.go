package cache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingBackend struct{}

var errBackendDown = errors.New("backend down")

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errBackendDown
}

func (failingBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errBackendDown
}

func (failingBackend) Delete(context.Context, string) error { return errBackendDown }

func (failingBackend) DeletePattern(context.Context, string) (int, error) {
	return 0, errBackendDown
}

type payload struct {
	Name  string   `json:"name"`
	Score float64  `json:"score"`
	Tags  []string `json:"tags"`
}

func TestCache_SetThenGetReturnsStoredValue(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryBackend(10), time.Minute)
	want := payload{Name: "Ninebark", Score: 0.87, Tags: []string{"native"}}

	c.Set(ctx, "plants:1", want, 0)

	var got payload
	require.True(t, c.Get(ctx, "plants:1", &got))
	assert.Equal(t, want, got)
}

func TestCache_InvalidateNamespace(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryBackend(10), time.Minute)

	c.Set(ctx, Key(NamespacePlants, "a"), 1, 0)
	c.Set(ctx, Key(NamespacePlants, "b"), 2, 0)
	c.Set(ctx, Key(NamespaceRecommendations, "a"), 3, 0)
	c.Set(ctx, Key(NamespaceStats, "a"), 4, 0)

	n := c.InvalidateNamespace(ctx, NamespacePlants, NamespaceRecommendations)
	assert.Equal(t, 3, n)

	var v int
	assert.False(t, c.Get(ctx, Key(NamespacePlants, "a"), &v))
	assert.False(t, c.Get(ctx, Key(NamespaceRecommendations, "a"), &v))
	assert.True(t, c.Get(ctx, Key(NamespaceStats, "a"), &v))
	assert.Equal(t, 4, v)
}

func TestCache_BackendFailuresAreMisses(t *testing.T) {
	ctx := context.Background()
	c := New(failingBackend{}, time.Minute)

	assert.NotPanics(t, func() {
		c.Set(ctx, "k", "v", 0)
		c.Delete(ctx, "k")
	})

	var v string
	assert.False(t, c.Get(ctx, "k", &v))
	assert.Equal(t, 0, c.InvalidatePattern(ctx, "k*"))
}

func TestCache_UndecodablePayloadIsMiss(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryBackend(10), time.Minute)
	c.SetRaw(ctx, "k", []byte("not json"), 0)

	var v payload
	assert.False(t, c.Get(ctx, "k", &v))
}

func TestKey_Deterministic(t *testing.T) {
	a := Key("recommendations", map[string]any{"sun_exposure": "full_sun", "max_results": 10, "zone": "5-9"})
	b := Key("recommendations", map[string]any{"zone": "5-9", "max_results": 10, "sun_exposure": "full_sun"})
	c := Key("recommendations", map[string]any{"zone": "5-8", "max_results": 10, "sun_exposure": "full_sun"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "recommendations:"))
	assert.Len(t, strings.TrimPrefix(a, "recommendations:"), 32)
}

func TestQueryKey_NormalizesOrder(t *testing.T) {
	q1 := url.Values{"category": {"shrub", "tree"}, "limit": {"10"}}
	q2 := url.Values{"limit": {"10"}, "category": {"tree", "shrub"}}
	q3 := url.Values{"limit": {"20"}, "category": {"tree", "shrub"}}

	assert.Equal(t, QueryKey("plants", "/plants", q1), QueryKey("plants", "/plants", q2))
	assert.NotEqual(t, QueryKey("plants", "/plants", q1), QueryKey("plants", "/plants", q3))
	assert.NotEqual(t, QueryKey("plants", "/plants", q1), QueryKey("plants", "/plants/x", q1))
}

func TestGetOrLoad(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryBackend(10), time.Minute)
	calls := 0
	load := func(context.Context) (payload, error) {
		calls++
		return payload{Name: "loaded", Score: 1}, nil
	}

	first, err := GetOrLoad(ctx, c, "stats:1", time.Minute, load)
	require.NoError(t, err)
	second, err := GetOrLoad(ctx, c, "stats:1", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestGetOrLoad_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryBackend(10), time.Minute)
	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("db down")
		}
		return 42, nil
	}

	_, err := GetOrLoad(ctx, c, "stats:1", time.Minute, load)
	require.Error(t, err)

	v, err := GetOrLoad(ctx, c, "stats:1", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, calls)
}

func TestMiddleware_HitSkipsHandler(t *testing.T) {
	c := New(NewMemoryBackend(10), time.Minute)
	calls := 0
	h := Middleware(c, NamespacePlants, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":[1,2]}`))
	}))

	rec1 := httptest.NewRecorder()
	h.ServeHTTP(rec1, httptest.NewRequest(http.MethodGet, "/plants?limit=2", nil))
	assert.Equal(t, "MISS", rec1.Header().Get(HeaderCache))

	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, httptest.NewRequest(http.MethodGet, "/plants?limit=2", nil))

	assert.Equal(t, 1, calls)
	assert.Equal(t, "HIT", rec2.Header().Get(HeaderCache))
	assert.Equal(t, http.StatusOK, rec2.Code)
	assert.Equal(t, "application/json", rec2.Header().Get("Content-Type"))
	assert.Equal(t, `{"data":[1,2]}`, rec2.Body.String())
}

func TestMiddleware_ErrorsNotStored(t *testing.T) {
	c := New(NewMemoryBackend(10), time.Minute)
	calls := 0
	h := Middleware(c, NamespacePlants, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plants/x", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	}
	assert.Equal(t, 2, calls)
}

func TestMiddleware_NonGetPassesThrough(t *testing.T) {
	c := New(NewMemoryBackend(10), time.Minute)
	calls := 0
	h := Middleware(c, NamespacePlants, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/plants/x", nil))
		assert.Empty(t, rec.Header().Get(HeaderCache))
	}
	assert.Equal(t, 2, calls)
}

func TestMiddleware_InvalidationForcesReload(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryBackend(10), time.Minute)
	calls := 0
	h := Middleware(c, NamespacePlants, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plants", nil))
	c.InvalidateNamespace(ctx, NamespacePlants)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plants", nil))

	assert.Equal(t, 2, calls)
}
