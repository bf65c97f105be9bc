// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plantrec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plantrec_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Response cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plantrec_cache_hits_total",
			Help: "Response cache hits by namespace",
		},
		[]string{"namespace"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plantrec_cache_misses_total",
			Help: "Response cache misses by namespace",
		},
		[]string{"namespace"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plantrec_cache_errors_total",
			Help: "Response cache backend errors treated as misses",
		},
		[]string{"operation"},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plantrec_cache_invalidations_total",
			Help: "Pattern invalidations by namespace",
		},
		[]string{"namespace"},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plantrec_cache_evictions_total",
			Help: "Entries evicted from the in-memory cache because of capacity",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "plantrec_cache_entries",
			Help: "Current number of entries in the in-memory cache",
		},
	)

	// Recommendation engine
	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plantrec_recommendation_duration_seconds",
			Help:    "Time to score and rank the catalog",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plantrec_recommendation_candidates",
			Help:    "Number of catalog plants evaluated per recommendation",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10),
		},
	)

	RequestLogFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plantrec_request_log_failures_total",
			Help: "Recommendation requests that could not be persisted",
		},
	)

	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plantrec_feedback_total",
			Help: "Feedback submissions by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRecommendation records one scoring pass.
func RecordRecommendation(evaluated int, duration time.Duration) {
	RecommendationDuration.Observe(duration.Seconds())
	RecommendationCandidates.Observe(float64(evaluated))
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(namespace string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(namespace).Inc()
		return
	}
	CacheMisses.WithLabelValues(namespace).Inc()
}
