package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/cloo-solutions/plantrec/internal/api"
	"github.com/cloo-solutions/plantrec/internal/api/middleware"
	"github.com/cloo-solutions/plantrec/internal/domain"
	"github.com/cloo-solutions/plantrec/internal/service"
)

type Recommender interface {
	Recommend(ctx context.Context, in service.RecommendInput) (*service.RecommendationResponse, error)
}

type FeedbackStore interface {
	SaveFeedback(ctx context.Context, requestID string, feedback map[string]any, rating *int) error
	Stats(ctx context.Context) (*domain.RecommendationStats, error)
}

type RecommendationHandler struct {
	recommender Recommender
	feedback    FeedbackStore
}

func NewRecommendationHandler(recommender Recommender, feedback FeedbackStore) *RecommendationHandler {
	return &RecommendationHandler{recommender: recommender, feedback: feedback}
}

type FeedbackRequest struct {
	RequestID string         `json:"request_id" validate:"required,max=64"`
	Feedback  map[string]any `json:"feedback"`
	Rating    *int           `json:"rating" validate:"omitempty,min=1,max=5"`
}

type FeedbackResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Recommend accepts a flat criteria object plus max_results and min_score.
// Unknown fields and badly typed values are ignored rather than rejected.
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := api.DecodeJSON(r, &body); err != nil {
		api.HandleError(w, r, err)
		return
	}

	ctx := r.Context()
	resp, err := h.recommender.Recommend(ctx, service.RecommendInput{
		Params:    service.ParseRecommendationRequest(body),
		UserID:    middleware.GetUserID(ctx),
		SessionID: middleware.GetSessionID(ctx),
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *RecommendationHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.HandleError(w, r, err)
		return
	}
	if err := api.Validate(&req); err != nil {
		api.HandleError(w, r, err)
		return
	}

	err := h.feedback.SaveFeedback(r.Context(), req.RequestID, req.Feedback, req.Rating)
	switch {
	case errors.Is(err, domain.ErrRecommendationRequestNotFound):
		api.JSON(w, http.StatusNotFound, FeedbackResult{Success: false, Error: domain.ErrRecommendationRequestNotFound.Message})
		return
	case err != nil:
		api.HandleError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, FeedbackResult{Success: true})
}

func (h *RecommendationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.feedback.Stats(r.Context())
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, stats)
}
