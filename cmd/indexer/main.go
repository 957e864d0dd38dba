package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/citypulse/eventdiscovery/internal/adapters/database"
	"github.com/citypulse/eventdiscovery/internal/adapters/search"
	"github.com/citypulse/eventdiscovery/internal/application/services"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/clients/postgres"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/clients/typesense"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/observability"
	"github.com/citypulse/eventdiscovery/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete the existing events collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	observability.InitLogger("event-indexer", os.Getenv("APP_ENV"))

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		parsed, err := time.ParseDuration(intervalValue)
		if err != nil || parsed <= 0 {
			log.Fatal().Str("interval", intervalValue).Msg("interval must be a positive duration")
		}
		interval = parsed
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("next_run_in", interval).Msg("reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("indexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	knowledgeBase := search.NewKnowledgeBaseAdapter(tsClient, nil, nil)

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Info().Msg("deleting events collection before reindex")
		if _, err := tsClient.Client().Collection("events").Delete(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to delete events collection")
		}
	}

	if err := knowledgeBase.InitSchema(ctx); err != nil {
		return err
	}

	eventRepo := database.NewEventAdapter(pgClient)
	indexing := services.NewEventIndexingService(eventRepo, knowledgeBase)

	indexed, err := indexing.BackfillPublicEvents(ctx)
	if err != nil {
		return err
	}

	log.Info().Int("indexed", indexed).Msg("indexing complete")
	return nil
}
