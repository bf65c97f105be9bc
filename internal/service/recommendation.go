package service

import (
	"context"
	"time"

	"github.com/cloo-solutions/plantrec/internal/cache"
	"github.com/cloo-solutions/plantrec/internal/domain"
	"github.com/cloo-solutions/plantrec/internal/engine"
	"github.com/cloo-solutions/plantrec/internal/logging"
	"github.com/cloo-solutions/plantrec/internal/metrics"
	"github.com/cloo-solutions/plantrec/internal/telemetry"
)

// CatalogProvider supplies the full catalog snapshot to score against.
type CatalogProvider interface {
	Catalog(ctx context.Context) ([]*domain.Plant, error)
}

// RequestLogger records recommendation calls.
type RequestLogger interface {
	LogRequest(ctx context.Context, in LogInput) (string, error)
}

// RecommendInput is one recommendation call.
type RecommendInput struct {
	Params    RecommendationParams
	UserID    string
	SessionID string
}

// RecommendationResponse is the public response of a recommendation call.
type RecommendationResponse struct {
	Recommendations      []RecommendationItem `json:"recommendations"`
	RequestID            string               `json:"request_id"`
	CriteriaSummary      map[string]any       `json:"criteria_summary"`
	TotalPlantsEvaluated int                  `json:"total_plants_evaluated"`
	RecommendationsCount int                  `json:"recommendations_count"`
}

// memoizedResult is what the recommendations namespace stores. It carries
// the scored candidates in persisted form so a hit can still be logged.
type memoizedResult struct {
	Items          []RecommendationItem      `json:"items"`
	Summaries      []domain.CandidateSummary `json:"summaries"`
	TotalEvaluated int                       `json:"total_evaluated"`
}

// RecommendationService ranks the catalog for a request, memoizes the
// ranking and logs every call.
type RecommendationService struct {
	catalog CatalogProvider
	engine  *engine.Engine
	logger  RequestLogger
	cache   *cache.Cache
	ttl     time.Duration
	now     func() time.Time
}

// NewRecommendationService creates a RecommendationService. ttl bounds how
// long identical requests reuse a ranking.
func NewRecommendationService(catalog CatalogProvider, e *engine.Engine, logger RequestLogger, c *cache.Cache, ttl time.Duration) *RecommendationService {
	return &RecommendationService{
		catalog: catalog,
		engine:  e,
		logger:  logger,
		cache:   c,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Recommend scores the catalog, or reuses a memoized ranking for an
// identical request, and logs the call. Each call gets its own request id.
func (s *RecommendationService) Recommend(ctx context.Context, in RecommendInput) (*RecommendationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "RecommendationService.Recommend", telemetry.SpanAttributes{
		Namespace: cache.NamespaceRecommendations,
		Operation: "recommend",
	})
	defer span.End()

	start := s.now()
	key := in.Params.CacheKey()

	var memo memoizedResult
	hit := s.cache.Get(ctx, key, &memo)
	if !hit {
		plants, err := s.catalog.Catalog(ctx)
		if err != nil {
			span.SetError(err)
			return nil, err
		}

		ranked := s.engine.Rank(plants, in.Params.Criteria, engine.Options{
			MaxResults: in.Params.MaxResults,
			MinScore:   in.Params.MinScore,
		})
		memo = memoizedResult{
			Items:          FlattenResults(ranked, in.Params.Criteria, in.Params.Labels),
			Summaries:      summarize(ranked),
			TotalEvaluated: len(plants),
		}
		s.cache.Set(ctx, key, memo, s.ttl)
		metrics.RecordRecommendation(len(plants), s.now().Sub(start))
	}
	span.SetData("cache_hit", hit)
	span.SetData("candidates", len(memo.Items))

	requestID, err := s.logger.LogRequest(ctx, LogInput{
		Criteria:       in.Params.Criteria,
		Results:        memo.Summaries,
		TotalEvaluated: memo.TotalEvaluated,
		DurationMs:     int(s.now().Sub(start).Milliseconds()),
		UserID:         in.UserID,
		SessionID:      in.SessionID,
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("recommendation_request_id", requestID).
		Bool("cache_hit", hit).
		Int("evaluated", memo.TotalEvaluated).
		Int("returned", len(memo.Items)).
		Msg("recommendations served")

	items := memo.Items
	if items == nil {
		items = []RecommendationItem{}
	}
	return &RecommendationResponse{
		Recommendations:      items,
		RequestID:            requestID,
		CriteriaSummary:      SummarizeCriteria(in.Params.Criteria),
		TotalPlantsEvaluated: memo.TotalEvaluated,
		RecommendationsCount: len(items),
	}, nil
}

func summarize(ranked []domain.ScoredCandidate) []domain.CandidateSummary {
	out := make([]domain.CandidateSummary, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.Summarize())
	}
	return out
}
