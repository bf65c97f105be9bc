package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/cloo-solutions/plantrec/internal/domain"
	"github.com/cloo-solutions/plantrec/internal/logging"
	"github.com/cloo-solutions/plantrec/internal/telemetry"
)

// exportPageSize bounds one ListSince round trip.
const exportPageSize = 500

// RequestRecord is the JSON form of one logged request, used by exports
// and the admin CLI.
type RequestRecord struct {
	ID             string                    `json:"id"`
	UserID         string                    `json:"user_id,omitempty"`
	SessionID      string                    `json:"session_id,omitempty"`
	Criteria       domain.Snapshot           `json:"criteria"`
	Results        []domain.CandidateSummary `json:"results"`
	TotalEvaluated int                       `json:"total_evaluated"`
	DurationMs     int                       `json:"duration_ms"`
	Feedback       map[string]any            `json:"feedback,omitempty"`
	Rating         *int                      `json:"rating,omitempty"`
	FeedbackAt     *time.Time                `json:"feedback_at,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
}

func NewRequestRecord(r *domain.RecommendationRequest) RequestRecord {
	rec := RequestRecord{
		ID:             r.ID,
		UserID:         r.UserID,
		SessionID:      r.SessionID,
		Criteria:       r.Criteria,
		Results:        r.Results,
		TotalEvaluated: r.TotalEvaluated,
		DurationMs:     r.DurationMs,
		CreatedAt:      r.CreatedAt,
	}
	if rec.Results == nil {
		rec.Results = []domain.CandidateSummary{}
	}
	if r.Feedback != nil {
		rec.Feedback = r.Feedback.Data
		rec.Rating = r.Feedback.Rating
		at := r.Feedback.CreatedAt
		rec.FeedbackAt = &at
	}
	return rec
}

type RequestLister interface {
	ListSince(ctx context.Context, since time.Time, limit int) ([]*domain.RecommendationRequest, error)
}

type ObjectStore interface {
	PutObject(ctx context.Context, key string, body io.Reader, contentType string) error
}

// ExportResult describes a written export.
type ExportResult struct {
	Key   string
	Count int
}

// RequestExporter writes the request log as JSON Lines to object storage.
type RequestExporter struct {
	requests RequestLister
	store    ObjectStore
	now      func() time.Time
}

func NewRequestExporter(requests RequestLister, store ObjectStore) *RequestExporter {
	return &RequestExporter{requests: requests, store: store, now: time.Now}
}

// Export uploads every request created at or after since. The object key
// is requests/<since>_<now>.jsonl in UTC.
func (e *RequestExporter) Export(ctx context.Context, since time.Time) (*ExportResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "RequestExporter.Export", telemetry.SpanAttributes{
		Operation: "export",
	})
	defer span.End()

	var buf bytes.Buffer
	count, err := e.write(ctx, &buf, since)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	key := fmt.Sprintf("requests/%s_%s.jsonl",
		since.UTC().Format("20060102T150405Z"), e.now().UTC().Format("20060102T150405Z"))
	if err := e.store.PutObject(ctx, key, &buf, "application/x-ndjson"); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("upload export: %w", err)
	}

	logging.Ctx(ctx).Info().Str("key", key).Int("count", count).Msg("request log exported")
	return &ExportResult{Key: key, Count: count}, nil
}

// write pages through the log by created_at. Requests sharing the boundary
// timestamp of a page are skipped on the next page by id.
func (e *RequestExporter) write(ctx context.Context, w io.Writer, since time.Time) (int, error) {
	enc := json.NewEncoder(w)
	seen := map[string]struct{}{}
	count := 0

	for {
		page, err := e.requests.ListSince(ctx, since, exportPageSize)
		if err != nil {
			return 0, fmt.Errorf("list requests: %w", err)
		}

		written := 0
		for _, r := range page {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			if err := enc.Encode(NewRequestRecord(r)); err != nil {
				return 0, fmt.Errorf("encode request %s: %w", r.ID, err)
			}
			written++
		}
		count += written

		if len(page) < exportPageSize {
			return count, nil
		}
		if written == 0 {
			return 0, fmt.Errorf("more than %d requests share created_at %s", exportPageSize, since.Format(time.RFC3339Nano))
		}

		last := page[len(page)-1].CreatedAt
		if !last.Equal(since) {
			seen = map[string]struct{}{}
		}
		for _, r := range page {
			if r.CreatedAt.Equal(last) {
				seen[r.ID] = struct{}{}
			}
		}
		since = last
	}
}
