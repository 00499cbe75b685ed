package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "CORS_ORIGIN", "REDIS_ADDR", "LOG_FILE", "POLLS_PAGE_SIZE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite://mysite.db", cfg.DatabaseURL)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 5, cfg.PollsPageSize)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://host=db user=mysite")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("POLLS_PAGE_SIZE", "10")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "postgres://host=db user=mysite", cfg.DatabaseURL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 10, cfg.PollsPageSize)
}

func TestLoadIgnoresBadPageSize(t *testing.T) {
	t.Setenv("POLLS_PAGE_SIZE", "lots")

	assert.Equal(t, 5, Load().PollsPageSize)
}
