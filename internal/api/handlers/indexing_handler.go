package handlers

import (
	"net/http"

	"github.com/citypulse/eventdiscovery/internal/application/services"
)

// IndexingHandler handles knowledge-base index maintenance requests
type IndexingHandler struct {
	indexing *services.EventIndexingService
}

// NewIndexingHandler creates a new indexing handler
func NewIndexingHandler(indexing *services.EventIndexingService) *IndexingHandler {
	return &IndexingHandler{indexing: indexing}
}

// IndexEvent handles POST /api/events/{id}/index
func (h *IndexingHandler) IndexEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		respondWithError(w, http.StatusBadRequest, "event ID is required")
		return
	}

	if err := h.indexing.IndexEvent(r.Context(), eventID); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"status":   "indexed",
		"event_id": eventID,
	})
}

// RemoveEvent handles DELETE /api/events/{id}/index
func (h *IndexingHandler) RemoveEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		respondWithError(w, http.StatusBadRequest, "event ID is required")
		return
	}

	if err := h.indexing.RemoveEvent(r.Context(), eventID); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":   "removed",
		"event_id": eventID,
	})
}
