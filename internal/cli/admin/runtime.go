package admin

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/plantrec/internal/cache"
	"github.com/cloo-solutions/plantrec/internal/config"
	"github.com/cloo-solutions/plantrec/internal/database"
	"github.com/cloo-solutions/plantrec/internal/logging"
	"github.com/cloo-solutions/plantrec/internal/repository"
	"github.com/cloo-solutions/plantrec/internal/service"
	"github.com/cloo-solutions/plantrec/internal/telemetry"
)

// runtime holds the process-wide dependencies shared by every daemon
// subcommand.
type runtime struct {
	cfg     *config.Config
	pool    *pgxpool.Pool
	cache   *cache.Cache
	memory  *cache.MemoryBackend
	closers []func()

	catalog  *service.CatalogService
	requests *service.RecommendationLogService
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logging.Init(cfg.LoggingConfig())

	rt := &runtime{cfg: cfg}

	flush, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: telemetry.SampleRateFor(cfg.Environment),
		Debug:            cfg.Debug,
	})
	if err != nil {
		logging.Warn().Err(err).Msg("telemetry init failed, continuing without tracing")
	} else {
		rt.closers = append(rt.closers, flush)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL, MaxConns: cfg.DatabaseMaxConns})
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.pool = pool
	rt.closers = append(rt.closers, pool.Close)

	if err := rt.initCache(ctx); err != nil {
		rt.Close()
		return nil, err
	}

	txRunner := repository.NewTxRunner(pool)
	rt.catalog = service.NewCatalogService(repository.NewPlantRepository(pool), txRunner, rt.cache, cfg.CacheCatalogTTL)
	rt.requests = service.NewRecommendationLogService(
		repository.NewRecommendationRequestRepository(pool), txRunner, rt.cache, cfg.CacheAggregateTTL)

	return rt, nil
}

// initCache selects Redis when configured and the in-process store otherwise.
func (rt *runtime) initCache(ctx context.Context) error {
	if rt.cfg.HasRedis() {
		client, err := cache.NewRedisClient(ctx, rt.cfg.RedisURL)
		if err != nil {
			return err
		}
		backend := cache.NewRedisBackend(client, cache.DefaultBreakerConfig())
		rt.closers = append(rt.closers, func() { _ = backend.Close() })
		rt.cache = cache.New(backend, rt.cfg.CacheDefaultTTL)
		logging.Info().Msg("cache: redis")
		return nil
	}

	rt.memory = cache.NewMemoryBackend(rt.cfg.CacheMaxEntries)
	rt.cache = cache.New(rt.memory, rt.cfg.CacheDefaultTTL)
	logging.Info().Int("max_entries", rt.cfg.CacheMaxEntries).Msg("cache: memory")
	return nil
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}
