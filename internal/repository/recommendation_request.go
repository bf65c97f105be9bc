package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/plantrec/internal/domain"
)

const requestColumns = `id, user_id, session_id, criteria, results, total_evaluated, duration_ms,
	feedback, rating, feedback_at, created_at`

// RecommendationRequestRepository stores the recommendation request log
// and the feedback attached to it.
type RecommendationRequestRepository struct {
	db dbtx
}

func NewRecommendationRequestRepository(pool *pgxpool.Pool) *RecommendationRequestRepository {
	return &RecommendationRequestRepository{db: pool}
}

func NewRecommendationRequestRepositoryWithTx(tx pgx.Tx) *RecommendationRequestRepository {
	return &RecommendationRequestRepository{db: tx}
}

func (r *RecommendationRequestRepository) Create(ctx context.Context, req *domain.RecommendationRequest) error {
	criteriaJSON, err := json.Marshal(req.Criteria)
	if err != nil {
		return fmt.Errorf("encode criteria: %w", err)
	}
	results := req.Results
	if results == nil {
		results = []domain.CandidateSummary{}
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO recommendation_requests (id, user_id, session_id, criteria, results, result_count, total_evaluated, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		req.ID,
		nullableString(req.UserID),
		nullableString(req.SessionID),
		criteriaJSON,
		resultsJSON,
		len(results),
		req.TotalEvaluated,
		req.DurationMs,
		req.CreatedAt,
	)
	return err
}

func (r *RecommendationRequestRepository) GetByID(ctx context.Context, id string) (*domain.RecommendationRequest, error) {
	return r.get(ctx, `SELECT `+requestColumns+` FROM recommendation_requests WHERE id = $1`, id)
}

// GetForUpdate reads a request and locks its row until the surrounding
// transaction ends.
func (r *RecommendationRequestRepository) GetForUpdate(ctx context.Context, id string) (*domain.RecommendationRequest, error) {
	return r.get(ctx, `SELECT `+requestColumns+` FROM recommendation_requests WHERE id = $1 FOR UPDATE`, id)
}

func (r *RecommendationRequestRepository) get(ctx context.Context, query, id string) (*domain.RecommendationRequest, error) {
	req, err := scanRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecommendationRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

// UpdateFeedback replaces the feedback of an existing request.
func (r *RecommendationRequestRepository) UpdateFeedback(ctx context.Context, id string, fb *domain.Feedback) error {
	data := fb.Data
	if data == nil {
		data = map[string]any{}
	}
	feedbackJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE recommendation_requests
		 SET feedback = $1, rating = $2, feedback_at = $3
		 WHERE id = $4`,
		feedbackJSON,
		fb.Rating,
		fb.CreatedAt,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrRecommendationRequestNotFound
	}
	return nil
}

func (r *RecommendationRequestRepository) Stats(ctx context.Context) (*domain.RecommendationStats, error) {
	var s domain.RecommendationStats
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(feedback),
		        COUNT(rating),
		        AVG(rating)::float8,
		        COALESCE(AVG(result_count), 0)::float8,
		        COALESCE(AVG(duration_ms), 0)::float8
		 FROM recommendation_requests`,
	).Scan(&s.TotalRequests, &s.WithFeedback, &s.RatedRequests, &s.AverageRating, &s.AverageResults, &s.AverageMs)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSince returns requests created at or after since, oldest first.
func (r *RecommendationRequestRepository) ListSince(ctx context.Context, since time.Time, limit int) ([]*domain.RecommendationRequest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+requestColumns+`
		 FROM recommendation_requests
		 WHERE created_at >= $1
		 ORDER BY created_at, id
		 LIMIT $2`,
		since, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.RecommendationRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, req)
	}
	return results, rows.Err()
}

func scanRequest(row pgx.Row) (*domain.RecommendationRequest, error) {
	var req domain.RecommendationRequest
	var userID, sessionID *string
	var criteriaJSON, resultsJSON, feedbackJSON []byte
	var rating *int16
	var feedbackAt *time.Time

	err := row.Scan(&req.ID, &userID, &sessionID, &criteriaJSON, &resultsJSON, &req.TotalEvaluated, &req.DurationMs,
		&feedbackJSON, &rating, &feedbackAt, &req.CreatedAt)
	if err != nil {
		return nil, err
	}

	req.UserID = stringValue(userID)
	req.SessionID = stringValue(sessionID)
	if err := json.Unmarshal(criteriaJSON, &req.Criteria); err != nil {
		return nil, fmt.Errorf("decode criteria: %w", err)
	}
	if err := json.Unmarshal(resultsJSON, &req.Results); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}

	if feedbackJSON != nil || feedbackAt != nil {
		fb := &domain.Feedback{}
		if feedbackJSON != nil {
			if err := json.Unmarshal(feedbackJSON, &fb.Data); err != nil {
				return nil, fmt.Errorf("decode feedback: %w", err)
			}
		}
		if rating != nil {
			v := int(*rating)
			fb.Rating = &v
		}
		if feedbackAt != nil {
			fb.CreatedAt = *feedbackAt
		}
		req.Feedback = fb
	}

	return &req, nil
}
