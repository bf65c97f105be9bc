package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cloo-solutions/plantrec/internal/api"
	"github.com/cloo-solutions/plantrec/internal/api/handlers"
	"github.com/cloo-solutions/plantrec/internal/api/middleware"
	"github.com/cloo-solutions/plantrec/internal/cache"
)

type RouterConfig struct {
	RecommendationHandler *handlers.RecommendationHandler
	PlantHandler          *handlers.PlantHandler

	// Cache backs the GET response cache. Nil disables it.
	Cache        *cache.Cache
	CatalogTTL   time.Duration
	AggregateTTL time.Duration

	MaxBodyBytes int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = middleware.DefaultMaxBodyBytes
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.ClientIdentity)
	r.Use(middleware.Sentry)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBody))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	cached := func(namespace string, ttl time.Duration) func(http.Handler) http.Handler {
		if cfg.Cache == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return cache.Middleware(cfg.Cache, namespace, ttl)
	}

	r.Route("/recommendations", func(r chi.Router) {
		r.Post("/", cfg.RecommendationHandler.Recommend)
		r.Post("/feedback", cfg.RecommendationHandler.Feedback)
		r.With(cached(cache.NamespaceStats, cfg.AggregateTTL)).Get("/stats", cfg.RecommendationHandler.Stats)
	})

	r.Route("/plants", func(r chi.Router) {
		r.With(cached(cache.NamespacePlants, cfg.CatalogTTL)).Get("/", cfg.PlantHandler.List)
		r.With(cached(cache.NamespacePlants, cfg.CatalogTTL)).Get("/{id}", cfg.PlantHandler.Get)
		r.Put("/{id}", cfg.PlantHandler.Put)
		r.Delete("/{id}", cfg.PlantHandler.Delete)
	})

	return r
}
