package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/citypulse/eventdiscovery/internal/adapters/cache"
	"github.com/citypulse/eventdiscovery/internal/adapters/database"
	"github.com/citypulse/eventdiscovery/internal/adapters/search"
	"github.com/citypulse/eventdiscovery/internal/api/handlers"
	"github.com/citypulse/eventdiscovery/internal/api/middleware"
	"github.com/citypulse/eventdiscovery/internal/api/routes"
	"github.com/citypulse/eventdiscovery/internal/application/services"
	"github.com/citypulse/eventdiscovery/internal/domain/providers"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/clients/openai"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/clients/postgres"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/clients/redis"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/clients/typesense"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/observability"
	"github.com/citypulse/eventdiscovery/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OpenTelemetry export is optional; the service runs fine without it
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Redis is optional: conversational session history and response
	// caching degrade gracefully without it
	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("continuing without Redis")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Typesense client")
	}

	var aiClient *openai.Client
	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set; conversational search disabled")
	} else {
		aiClient, err = openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize OpenAI client")
		}
	}

	knowledgeBase := search.NewKnowledgeBaseAdapter(typesenseClient, aiClient, cacheProvider)
	if err := knowledgeBase.InitSchema(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to init knowledge base schema")
	}

	eventRepo := database.NewEventAdapter(pgClient)
	analyticsRepo := database.NewSearchAnalyticsAdapter(pgClient)

	userRepo := database.NewUserAdapter(pgClient)
	if cacheProvider != nil {
		userRepo = cache.NewCachedUserRepository(userRepo, cacheProvider)
	}

	analyticsService := services.NewSearchAnalyticsService(analyticsRepo, metrics)
	filterService := services.NewEventFilterService(eventRepo)
	rankingService := services.NewSearchRankingService(userRepo)
	searchService := services.NewSearchService(
		knowledgeBase,
		filterService,
		rankingService,
		analyticsService,
		metrics,
		cfg.Search.MaxResults,
		time.Duration(cfg.Search.LocalFilterTimeoutMs)*time.Millisecond,
	)
	recommendationService := services.NewRecommendationService(userRepo, searchService, analyticsService)
	indexingService := services.NewEventIndexingService(eventRepo, knowledgeBase)

	searchHandler := handlers.NewSearchHandler(searchService)
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService, cfg.Search.RecommendationLimit)
	indexingHandler := handlers.NewIndexingHandler(indexingService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
	}

	router := routes.NewRouter(
		searchHandler,
		recommendationHandler,
		indexingHandler,
		analyticsHandler,
		cacheMiddleware,
		metrics,
	)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
