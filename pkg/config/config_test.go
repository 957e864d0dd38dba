package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "event_discovery", cfg.Database.Database)
	assert.Equal(t, 50, cfg.Search.MaxResults)
	assert.Equal(t, 20, cfg.Search.RecommendationLimit)
	assert.Equal(t, 2000, cfg.Search.LocalFilterTimeoutMs)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SEARCH_MAX_RESULTS", "25")
	t.Setenv("DB_NAME", "events_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Search.MaxResults)
	assert.Equal(t, "events_test", cfg.Database.Database)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5433, User: "u", Password: "p",
		Database: "events", SSLMode: "require",
	}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=events sslmode=require", cfg.DatabaseDSN())
}

func TestRedisAddr(t *testing.T) {
	cfg := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
}
