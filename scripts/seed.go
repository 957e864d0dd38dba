package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/citypulse/eventdiscovery/internal/adapters/database"
	"github.com/citypulse/eventdiscovery/internal/adapters/search"
	"github.com/citypulse/eventdiscovery/internal/application/services"
	"github.com/citypulse/eventdiscovery/internal/domain/entities"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/clients/postgres"
	"github.com/citypulse/eventdiscovery/internal/infrastructure/clients/typesense"
	"github.com/citypulse/eventdiscovery/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL DEFAULT '',
	saved_events TEXT[] NOT NULL DEFAULT '{}',
	preferred_categories TEXT[] NOT NULL DEFAULT '{}',
	preferred_locations JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS events (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	start_date_time TIMESTAMPTZ NOT NULL,
	end_date_time TIMESTAMPTZ,
	city TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	price DOUBLE PRECISION NOT NULL DEFAULT 0,
	visibility TEXT NOT NULL DEFAULT 'public',
	is_user_submitted BOOLEAN NOT NULL DEFAULT FALSE,
	created_by UUID,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_events_start ON events (start_date_time);
CREATE INDEX IF NOT EXISTS idx_events_category ON events (category);

CREATE TABLE IF NOT EXISTS search_analytics (
	id UUID PRIMARY KEY,
	user_id UUID,
	query TEXT NOT NULL,
	search_type TEXT NOT NULL,
	filters_json JSONB,
	result_count INT NOT NULL DEFAULT 0,
	latency_ms BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_search_analytics_user ON search_analytics (user_id, created_at DESC);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()
	db := pgClient.DB()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := db.ExecContext(ctx, `
			TRUNCATE TABLE
				search_analytics,
				events,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	// 1. Seed Users
	users := []entities.User{
		{
			ID:          uuid.New().String(),
			Email:       "ada@example.com",
			DisplayName: "Ada",
			Preferences: entities.UserPreferences{
				Categories: []string{"music", "food"},
				PreferredLocations: []entities.PreferredLocation{
					{City: "Austin", State: "TX"},
				},
			},
		},
		{
			ID:          uuid.New().String(),
			Email:       "marcus@example.com",
			DisplayName: "Marcus",
			Preferences: entities.UserPreferences{
				Categories: []string{"technology"},
				PreferredLocations: []entities.PreferredLocation{
					{City: "Seattle", State: "WA"},
				},
			},
		},
		{
			ID:          uuid.New().String(),
			Email:       "priya@example.com",
			DisplayName: "Priya",
			Preferences: entities.UserPreferences{
				Categories: []string{"art", "theater"},
			},
		},
	}

	// 2. Seed Events across the next few weeks
	now := time.Now()
	events := []entities.Event{
		{
			ID:            uuid.New().String(),
			Title:         "Austin City Limits Warmup Show",
			Description:   "An intimate evening of live sets from local bands ahead of festival season.",
			Category:      "music",
			StartDateTime: now.AddDate(0, 0, 3).Truncate(time.Hour),
			EndDateTime:   now.AddDate(0, 0, 3).Truncate(time.Hour).Add(4 * time.Hour),
			Location: entities.Location{
				City: "Austin", State: "TX",
				Coordinates: &entities.Coordinates{Latitude: 30.2672, Longitude: -97.7431},
			},
			Price:      35,
			Visibility: entities.VisibilityPublic,
		},
		{
			ID:            uuid.New().String(),
			Title:         "East Side Food Truck Rally",
			Description:   "Forty food trucks, live DJs, and a craft beer garden on the east side.",
			Category:      "food",
			StartDateTime: now.AddDate(0, 0, 5).Truncate(time.Hour),
			EndDateTime:   now.AddDate(0, 0, 5).Truncate(time.Hour).Add(6 * time.Hour),
			Location: entities.Location{
				City: "Austin", State: "TX",
				Coordinates: &entities.Coordinates{Latitude: 30.2629, Longitude: -97.7176},
			},
			Price:      0,
			Visibility: entities.VisibilityPublic,
		},
		{
			ID:            uuid.New().String(),
			Title:         "Cloud Native Meetup: Schedulers Deep Dive",
			Description:   "Talks on workload scheduling, autoscaling, and bin packing in production clusters.",
			Category:      "technology",
			StartDateTime: now.AddDate(0, 0, 7).Truncate(time.Hour),
			EndDateTime:   now.AddDate(0, 0, 7).Truncate(time.Hour).Add(3 * time.Hour),
			Location: entities.Location{
				City: "Seattle", State: "WA",
				Coordinates: &entities.Coordinates{Latitude: 47.6062, Longitude: -122.3321},
			},
			Price:           0,
			Visibility:      entities.VisibilityPublic,
			IsUserSubmitted: true,
		},
		{
			ID:            uuid.New().String(),
			Title:         "First Thursday Gallery Walk",
			Description:   "Open studios and new exhibitions across the gallery district, free admission.",
			Category:      "art",
			StartDateTime: now.AddDate(0, 0, 10).Truncate(time.Hour),
			EndDateTime:   now.AddDate(0, 0, 10).Truncate(time.Hour).Add(5 * time.Hour),
			Location: entities.Location{
				City: "Portland", State: "OR",
			},
			Price:      0,
			Visibility: entities.VisibilityPublic,
		},
		{
			ID:            uuid.New().String(),
			Title:         "Shakespeare in the Park: Twelfth Night",
			Description:   "Outdoor evening performance of Twelfth Night, bring a blanket and a picnic.",
			Category:      "theater",
			StartDateTime: now.AddDate(0, 0, 14).Truncate(time.Hour),
			EndDateTime:   now.AddDate(0, 0, 14).Truncate(time.Hour).Add(3 * time.Hour),
			Location: entities.Location{
				City: "Portland", State: "OR",
			},
			Price:      20,
			Visibility: entities.VisibilityPublic,
		},
		{
			ID:            uuid.New().String(),
			Title:         "Downtown Jazz Brunch",
			Description:   "Live jazz trio with a rotating brunch menu every other Sunday.",
			Category:      "music",
			StartDateTime: now.AddDate(0, 0, 21).Truncate(time.Hour),
			EndDateTime:   now.AddDate(0, 0, 21).Truncate(time.Hour).Add(4 * time.Hour),
			Location: entities.Location{
				City: "Seattle", State: "WA",
			},
			Price:      45,
			Visibility: entities.VisibilityPublic,
		},
		{
			ID:            uuid.New().String(),
			Title:         "Team Offsite Planning Session",
			Description:   "Internal planning session, invite only.",
			Category:      "business",
			StartDateTime: now.AddDate(0, 0, 4).Truncate(time.Hour),
			EndDateTime:   now.AddDate(0, 0, 4).Truncate(time.Hour).Add(2 * time.Hour),
			Location: entities.Location{
				City: "Austin", State: "TX",
			},
			Price:      0,
			Visibility: entities.VisibilityPrivate,
		},
	}

	// The first user has saved the warmup show; the technology meetup was
	// submitted by the second user.
	users[0].SavedEvents = []string{events[0].ID}
	events[2].CreatedBy = users[1].ID

	for i := range users {
		u := users[i]
		locations, err := json.Marshal(u.Preferences.PreferredLocations)
		if err != nil {
			log.Printf("Failed to encode locations for %s: %v", u.Email, err)
			continue
		}
		_, err = db.ExecContext(ctx, `
			INSERT INTO users (id, email, display_name, saved_events, preferred_categories, preferred_locations, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
			ON CONFLICT (email) DO NOTHING`,
			u.ID, u.Email, u.DisplayName,
			pq.StringArray(u.SavedEvents),
			pq.StringArray(u.Preferences.Categories),
			locations,
		)
		if err != nil {
			log.Printf("Failed to create user %s: %v", u.Email, err)
		}
	}

	for i := range events {
		e := events[i]
		var createdBy interface{}
		if e.CreatedBy != "" {
			createdBy = e.CreatedBy
		}
		var lat, lng interface{}
		if e.Location.Coordinates != nil {
			lat = e.Location.Coordinates.Latitude
			lng = e.Location.Coordinates.Longitude
		}
		_, err := db.ExecContext(ctx, `
			INSERT INTO events (id, title, description, category, start_date_time, end_date_time, city, state, latitude, longitude, price, visibility, is_user_submitted, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
			ON CONFLICT (id) DO NOTHING`,
			e.ID, e.Title, e.Description, e.Category,
			e.StartDateTime, e.EndDateTime,
			e.Location.City, e.Location.State,
			lat, lng,
			e.Price, string(e.Visibility), e.IsUserSubmitted, createdBy,
		)
		if err != nil {
			log.Printf("Failed to create event %s: %v", e.Title, err)
		}
	}

	// 3. Push public events into the search index
	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Typesense unavailable, skipping index backfill: %v", err)
		log.Println("Seeding completed (database only)")
		return
	}

	knowledgeBase := search.NewKnowledgeBaseAdapter(tsClient, nil, nil)
	if err := knowledgeBase.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to init search schema: %v", err)
	}

	eventRepo := database.NewEventAdapter(pgClient)
	indexing := services.NewEventIndexingService(eventRepo, knowledgeBase)

	indexed, err := indexing.BackfillPublicEvents(ctx)
	if err != nil {
		log.Fatalf("Failed to backfill search index: %v", err)
	}

	log.Printf("Seeding completed successfully, %d events indexed", indexed)
}
