package handlers

import (
	"net/http"
	"strconv"

	"github.com/citypulse/eventdiscovery/internal/application/services"
)

// RecommendationHandler handles personalized recommendation requests
type RecommendationHandler struct {
	recommendations *services.RecommendationService
	defaultLimit    int
}

// NewRecommendationHandler creates a new recommendation handler. A
// defaultLimit of 0 falls back to the service default.
func NewRecommendationHandler(recommendations *services.RecommendationService, defaultLimit int) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recommendations, defaultLimit: defaultLimit}
}

// Recommend handles GET /api/recommendations
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication is required for recommendations")
		return
	}

	opts := services.DefaultRecommendOptions()
	if h.defaultLimit > 0 {
		opts.MaxResults = h.defaultLimit
	}
	q := r.URL.Query()

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		opts.MaxResults = limit
	}
	if q.Get("include_user_submitted") == "false" {
		opts.IncludeUserSubmitted = false
	}

	result, err := h.recommendations.Recommend(r.Context(), userID, opts)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
