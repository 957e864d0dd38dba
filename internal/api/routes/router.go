package routes

import (
	"net/http"

	"github.com/citypulse/eventdiscovery/internal/api/handlers"
	"github.com/citypulse/eventdiscovery/internal/api/middleware"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler         *handlers.SearchHandler
	recommendationHandler *handlers.RecommendationHandler
	indexingHandler       *handlers.IndexingHandler
	analyticsHandler      *handlers.AnalyticsHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	searchHandler *handlers.SearchHandler,
	recommendationHandler *handlers.RecommendationHandler,
	indexingHandler *handlers.IndexingHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                   http.NewServeMux(),
		searchHandler:         searchHandler,
		recommendationHandler: recommendationHandler,
		indexingHandler:       indexingHandler,
		analyticsHandler:      analyticsHandler,
		cacheMiddleware:       cacheMiddleware,
		metrics:               metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Search endpoints
	r.mux.HandleFunc("GET /api/search", r.searchHandler.Search)
	r.mux.HandleFunc("POST /api/search/conversational", r.searchHandler.ConversationalSearch)

	// Recommendation endpoints
	r.mux.HandleFunc("GET /api/recommendations", r.recommendationHandler.Recommend)

	// Index maintenance endpoints
	r.mux.HandleFunc("POST /api/events/{id}/index", r.indexingHandler.IndexEvent)
	r.mux.HandleFunc("DELETE /api/events/{id}/index", r.indexingHandler.RemoveEvent)

	// Analytics endpoints
	r.mux.HandleFunc("GET /api/analytics/zero-results", r.analyticsHandler.ZeroResultQueries)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
