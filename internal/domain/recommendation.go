package domain

import (
	"fmt"
	"time"
)

// ScoredCandidate is one plant with its computed scores. It lives for a
// single request and is only persisted as a CandidateSummary.
type ScoredCandidate struct {
	Plant          *Plant
	TotalScore     float64
	CategoryScores map[Category]float64
	MatchReasons   []string
	Warnings       []string
}

// CandidateSummary is the persisted form of a ScoredCandidate.
type CandidateSummary struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	TotalScore     float64            `json:"total_score"`
	CategoryScores map[string]float64 `json:"category_scores"`
	Reasons        []string           `json:"reasons"`
	Warnings       []string           `json:"warnings"`
}

// Summarize converts a candidate into its persisted summary.
func (s ScoredCandidate) Summarize() CandidateSummary {
	scores := make(map[string]float64, len(s.CategoryScores))
	for cat, v := range s.CategoryScores {
		scores[string(cat)] = v
	}
	summary := CandidateSummary{
		TotalScore:     s.TotalScore,
		CategoryScores: scores,
		Reasons:        append([]string{}, s.MatchReasons...),
		Warnings:       append([]string{}, s.Warnings...),
	}
	if s.Plant != nil {
		summary.ID = s.Plant.ID
		summary.Name = s.Plant.DisplayName()
	}
	return summary
}

// Feedback is attached to a RecommendationRequest after the fact.
type Feedback struct {
	Data      map[string]any
	Rating    *int
	CreatedAt time.Time
}

// RecommendationRequest is the persisted log entry of one recommendation call.
type RecommendationRequest struct {
	ID             string
	UserID         string
	SessionID      string
	Criteria       Snapshot
	Results        []CandidateSummary
	TotalEvaluated int
	DurationMs     int
	Feedback       *Feedback
	CreatedAt      time.Time
}

const (
	MinRating = 1
	MaxRating = 5
)

// ValidateRating checks an optional 1..5 rating.
func ValidateRating(rating *int) error {
	if rating == nil {
		return nil
	}
	if *rating < MinRating || *rating > MaxRating {
		return NewDomainErrorWithCause(ErrCodeValidation, "rating must be between 1 and 5",
			fmt.Errorf("got %d", *rating))
	}
	return nil
}

// RecommendationStats aggregates the request log for reporting.
type RecommendationStats struct {
	TotalRequests  int      `json:"total_requests"`
	WithFeedback   int      `json:"with_feedback"`
	RatedRequests  int      `json:"rated_requests"`
	AverageRating  *float64 `json:"average_rating"`
	AverageResults float64  `json:"average_results"`
	AverageMs      float64  `json:"average_duration_ms"`
}
