package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/citypulse/eventdiscovery/internal/application/services"
	"github.com/citypulse/eventdiscovery/internal/domain/entities"
)

// SearchHandler handles search-related HTTP requests
type SearchHandler struct {
	search *services.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(search *services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search handles GET /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.URL.Query().Get("q"))
	if text == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	filters, err := parseSearchFilters(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := &entities.SearchQuery{
		Text:    text,
		Filters: filters,
		UserID:  r.Header.Get(userIDHeader),
	}

	result, err := h.search.Search(r.Context(), query)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

type conversationalRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// ConversationalSearch handles POST /api/search/conversational
func (h *SearchHandler) ConversationalSearch(w http.ResponseWriter, r *http.Request) {
	var req conversationalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		respondWithError(w, http.StatusBadRequest, "query is required")
		return
	}

	answer, err := h.search.ConversationalSearch(r.Context(), req.Query, r.Header.Get(userIDHeader), req.SessionID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, answer)
}

// parseSearchFilters builds the structured filters from query parameters.
// Every dimension is independently optional.
func parseSearchFilters(r *http.Request) (*entities.SearchFilters, error) {
	q := r.URL.Query()
	filters := &entities.SearchFilters{}
	present := false

	if from, to := q.Get("date_from"), q.Get("date_to"); from != "" || to != "" {
		dateRange, err := parseDateRange(from, to)
		if err != nil {
			return nil, err
		}
		filters.DateRange = dateRange
		present = true
	}

	if city, state := q.Get("city"), q.Get("state"); city != "" || state != "" {
		filters.Location = &entities.LocationFilter{City: city, State: state}
		present = true
	}

	if categories := q.Get("categories"); categories != "" {
		for _, c := range strings.Split(categories, ",") {
			if c = strings.TrimSpace(c); c != "" {
				filters.Categories = append(filters.Categories, c)
			}
		}
		present = true
	}

	minStr, maxStr := q.Get("price_min"), q.Get("price_max")
	if minStr != "" || maxStr != "" {
		priceRange, err := parsePriceRange(minStr, maxStr)
		if err != nil {
			return nil, err
		}
		filters.PriceRange = priceRange
		present = true
	}

	if !present {
		return nil, nil
	}
	return filters, nil
}

func parseDateRange(from, to string) (*entities.DateRange, error) {
	dateRange := &entities.DateRange{
		Start: time.Time{},
		End:   time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC),
	}

	if from != "" {
		start, err := parseDate(from)
		if err != nil {
			return nil, err
		}
		dateRange.Start = start
	}
	if to != "" {
		end, err := parseDate(to)
		if err != nil {
			return nil, err
		}
		dateRange.End = end
	}
	return dateRange, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func parsePriceRange(minStr, maxStr string) (*entities.PriceRange, error) {
	priceRange := &entities.PriceRange{Min: 0, Max: 1e9}

	if minStr != "" {
		min, err := strconv.ParseFloat(minStr, 64)
		if err != nil {
			return nil, err
		}
		priceRange.Min = min
	}
	if maxStr != "" {
		max, err := strconv.ParseFloat(maxStr, 64)
		if err != nil {
			return nil, err
		}
		priceRange.Max = max
	}
	return priceRange, nil
}
