package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "afisha", cfg.AppName)
	assert.Equal(t, "http://localhost:9090", cfg.StatsURL)
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=afisha sslmode=disable",
		cfg.DSN())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "afisha_prod")
	t.Setenv("DB_SSLMODE", "require")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Contains(t, cfg.DSN(), "host=db.internal")
	assert.Contains(t, cfg.DSN(), "dbname=afisha_prod")
	assert.Contains(t, cfg.DSN(), "sslmode=require")
}
