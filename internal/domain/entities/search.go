package entities

import (
	"time"
)

// SearchQuery is the immutable input to a single search invocation.
// UserID is empty for anonymous searches.
type SearchQuery struct {
	Text    string         `json:"text"`
	Filters *SearchFilters `json:"filters,omitempty"`
	UserID  string         `json:"user_id,omitempty"`
}

// SearchFilters carries the optional structured constraints. Nil pointer
// or empty slice means no constraint on that dimension.
type SearchFilters struct {
	DateRange  *DateRange      `json:"date_range,omitempty"`
	Location   *LocationFilter `json:"location,omitempty"`
	Categories []string        `json:"categories,omitempty"`
	PriceRange *PriceRange     `json:"price_range,omitempty"`
	Keywords   []string        `json:"keywords,omitempty"`
}

// DateRange constrains event start times to [Start, End]
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LocationFilter constrains event locations
type LocationFilter struct {
	City        string       `json:"city,omitempty"`
	State       string       `json:"state,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	RadiusKm    float64      `json:"radius_km,omitempty"`
}

// PriceRange constrains event prices; free events compare as 0
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CandidateEvent is an event normalized for ranking, regardless of which
// source produced it. BaseRelevance is only meaningful when
// HasBaseRelevance is true (knowledge-base candidates carry an opaque
// score in [0,1]; locally filtered candidates are scored during ranking).
type CandidateEvent struct {
	EventID          string    `json:"event_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	StartDateTime    time.Time `json:"start_date_time"`
	Location         Location  `json:"location"`
	Price            float64   `json:"price"`
	IsUserSubmitted  bool      `json:"is_user_submitted"`
	BaseRelevance    float64   `json:"base_relevance"`
	HasBaseRelevance bool      `json:"-"`
	SourceURI        string    `json:"source_uri,omitempty"`
}

// RankingFactors holds the per-candidate scoring inputs, each in [0,1]
type RankingFactors struct {
	Relevance           float64 `json:"relevance"`
	DateProximity       float64 `json:"date_proximity"`
	LocationProximity   float64 `json:"location_proximity"`
	UserPreferenceMatch float64 `json:"user_preference_match"`
	Popularity          float64 `json:"popularity"`
}

// RankedResult is the unit returned to callers
type RankedResult struct {
	CandidateEvent
	Factors       RankingFactors `json:"factors"`
	CombinedScore float64        `json:"combined_score"`
	IsSaved       bool           `json:"is_saved"`
}

// SearchResultSet holds an ordered, deduplicated set of ranked results.
// Results are sorted by CombinedScore descending with EventID ascending
// as the tie-break; EventIDs are unique within Results.
type SearchResultSet struct {
	Results      []RankedResult `json:"results"`
	TotalResults int            `json:"total_results"`
	Query        string         `json:"query"`
}

// Source is a citation backing a conversational answer
type Source struct {
	Title   string  `json:"title"`
	URI     string  `json:"uri"`
	Excerpt string  `json:"excerpt,omitempty"`
	Score   float64 `json:"score"`
}

// ConversationalAnswer is the generative search response
type ConversationalAnswer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}
