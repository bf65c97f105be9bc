package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cloo-solutions/plantrec/internal/cache"
	"github.com/cloo-solutions/plantrec/internal/domain"
	"github.com/cloo-solutions/plantrec/internal/logging"
	"github.com/cloo-solutions/plantrec/internal/metrics"
	"github.com/cloo-solutions/plantrec/internal/telemetry"
)

// RecommendationRequestRepositoryInterface persists the recommendation
// request log and the feedback attached to it.
type RecommendationRequestRepositoryInterface interface {
	Create(ctx context.Context, r *domain.RecommendationRequest) error
	GetByID(ctx context.Context, id string) (*domain.RecommendationRequest, error)
	GetForUpdate(ctx context.Context, id string) (*domain.RecommendationRequest, error)
	UpdateFeedback(ctx context.Context, id string, fb *domain.Feedback) error
	Stats(ctx context.Context) (*domain.RecommendationStats, error)
	ListSince(ctx context.Context, since time.Time, limit int) ([]*domain.RecommendationRequest, error)
}

// DefaultSummaryLimit is the number of candidates kept per logged request.
const DefaultSummaryLimit = 10

var statsKey = cache.Key(cache.NamespaceStats, "all")

// LogInput is one recommendation call to be recorded.
type LogInput struct {
	Criteria       domain.Criteria
	Results        []domain.CandidateSummary
	TotalEvaluated int
	DurationMs     int
	UserID         string
	SessionID      string
}

// RecommendationLogService records recommendation requests and attaches
// feedback to them.
type RecommendationLogService struct {
	requests     RecommendationRequestRepositoryInterface
	tx           TxRunner
	cache        *cache.Cache
	statsTTL     time.Duration
	summaryLimit int
	uuidGen      UUIDGenerator
	now          func() time.Time
}

// LogServiceOption configures a RecommendationLogService.
type LogServiceOption func(*RecommendationLogService)

// WithSummaryLimit sets how many top candidates are persisted per request.
func WithSummaryLimit(n int) LogServiceOption {
	return func(s *RecommendationLogService) {
		if n > 0 {
			s.summaryLimit = n
		}
	}
}

// WithUUIDGenerator replaces the request id generator.
func WithUUIDGenerator(g UUIDGenerator) LogServiceOption {
	return func(s *RecommendationLogService) { s.uuidGen = g }
}

// NewRecommendationLogService creates a RecommendationLogService. statsTTL
// bounds how long aggregate statistics are cached.
func NewRecommendationLogService(
	requests RecommendationRequestRepositoryInterface,
	tx TxRunner,
	c *cache.Cache,
	statsTTL time.Duration,
	opts ...LogServiceOption,
) *RecommendationLogService {
	s := &RecommendationLogService{
		requests:     requests,
		tx:           tx,
		cache:        c,
		statsTTL:     statsTTL,
		summaryLimit: DefaultSummaryLimit,
		uuidGen:      &DefaultUUIDGenerator{},
		now:          func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LogRequest persists a request with a summary of its top results and
// returns the new request id. Empty results are logged as well.
func (s *RecommendationLogService) LogRequest(ctx context.Context, in LogInput) (string, error) {
	id := s.uuidGen.NewString()
	ctx, span := telemetry.StartSpan(ctx, "RecommendationLogService.LogRequest", telemetry.SpanAttributes{
		RequestID: id,
		Operation: "log",
	})
	defer span.End()

	summaries := in.Results
	if len(summaries) > s.summaryLimit {
		summaries = summaries[:s.summaryLimit]
	}
	if summaries == nil {
		summaries = []domain.CandidateSummary{}
	}

	req := &domain.RecommendationRequest{
		ID:             id,
		UserID:         in.UserID,
		SessionID:      in.SessionID,
		Criteria:       in.Criteria.Snapshot(),
		Results:        summaries,
		TotalEvaluated: in.TotalEvaluated,
		DurationMs:     in.DurationMs,
		CreatedAt:      s.now(),
	}

	err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
		return repos.RecommendationRequests().Create(ctx, req)
	})
	if err != nil {
		metrics.RequestLogFailures.Inc()
		span.SetError(err)
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, domain.ErrRequestLogFailed.Message, err)
	}

	logging.Ctx(ctx).Debug().
		Str("recommendation_request_id", id).
		Int("results", len(summaries)).
		Msg("recommendation request logged")

	return id, nil
}

// SaveFeedback attaches feedback and an optional 1..5 rating to a logged
// request. Unknown ids yield domain.ErrRecommendationRequestNotFound and
// nothing is written.
func (s *RecommendationLogService) SaveFeedback(ctx context.Context, requestID string, feedback map[string]any, rating *int) error {
	ctx, span := telemetry.StartSpan(ctx, "RecommendationLogService.SaveFeedback", telemetry.SpanAttributes{
		RequestID: requestID,
		Operation: "feedback",
	})
	defer span.End()

	if err := domain.ValidateRating(rating); err != nil {
		metrics.FeedbackTotal.WithLabelValues("invalid").Inc()
		return err
	}
	if _, err := uuid.Parse(requestID); err != nil {
		metrics.FeedbackTotal.WithLabelValues("not_found").Inc()
		return domain.ErrRecommendationRequestNotFound
	}
	if feedback == nil {
		feedback = map[string]any{}
	}

	fb := &domain.Feedback{Data: feedback, Rating: rating, CreatedAt: s.now()}
	err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
		if _, err := repos.RecommendationRequests().GetForUpdate(ctx, requestID); err != nil {
			return err
		}
		return repos.RecommendationRequests().UpdateFeedback(ctx, requestID, fb)
	})
	switch {
	case errors.Is(err, domain.ErrRecommendationRequestNotFound):
		metrics.FeedbackTotal.WithLabelValues("not_found").Inc()
		return err
	case err != nil:
		metrics.FeedbackTotal.WithLabelValues("error").Inc()
		span.SetError(err)
		return domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, domain.ErrFeedbackFailed.Message, err)
	}

	metrics.FeedbackTotal.WithLabelValues("saved").Inc()
	s.cache.InvalidateNamespace(ctx, cache.NamespaceStats)
	return nil
}

// Get returns a logged request by id.
func (s *RecommendationLogService) Get(ctx context.Context, requestID string) (*domain.RecommendationRequest, error) {
	if _, err := uuid.Parse(requestID); err != nil {
		return nil, domain.ErrRecommendationRequestNotFound
	}
	return s.requests.GetByID(ctx, requestID)
}

// Stats returns aggregate request and feedback statistics, cached for the
// aggregate TTL.
func (s *RecommendationLogService) Stats(ctx context.Context) (*domain.RecommendationStats, error) {
	return cache.GetOrLoad(ctx, s.cache, statsKey, s.statsTTL, s.requests.Stats)
}

// ListSince returns logged requests created at or after since, oldest first.
func (s *RecommendationLogService) ListSince(ctx context.Context, since time.Time, limit int) ([]*domain.RecommendationRequest, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	return s.requests.ListSince(ctx, since, limit)
}
