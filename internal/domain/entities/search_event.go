package entities

import (
	"time"
)

// SearchType distinguishes how a logged query was issued
type SearchType string

const (
	SearchTypeSemantic       SearchType = "semantic"
	SearchTypeConversational SearchType = "conversational"
	SearchTypeRecommendation SearchType = "recommendation"
)

// SearchEvent represents a single search interaction for analytics.
// Append-only; never read back on the search path.
type SearchEvent struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id,omitempty" db:"user_id"`
	Query       string     `json:"query" db:"query"`
	SearchType  SearchType `json:"search_type" db:"search_type"`
	FiltersJSON string     `json:"filters_json,omitempty" db:"filters_json"`
	ResultCount int        `json:"result_count" db:"result_count"`
	LatencyMs   int        `json:"latency_ms" db:"latency_ms"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}
