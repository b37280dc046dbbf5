package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/dispatch")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "forward", cfg.TransitionPolicy)
	assert.Equal(t, 60*time.Second, cfg.CounterSnapshotTTL)
	assert.Equal(t, "@every 30s", cfg.CounterRefreshSpec)
	assert.Equal(t, 3, cfg.OutboxMaxRetries)
	assert.Empty(t, cfg.APIKeys)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/dispatch")
	t.Setenv("API_KEYS", " key-a, key-b ")
	t.Setenv("OUTBOX_BASE_DELAY", "250ms")
	t.Setenv("OUTBOX_MAX_RETRIES", "0")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("ASSIGNMENT_TRANSITION_POLICY", "strict")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, []string{"key-a", "key-b"}, cfg.APIKeys)
	assert.Equal(t, 250*time.Millisecond, cfg.OutboxBaseDelay)
	assert.Equal(t, 1, cfg.OutboxMaxRetries)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, "strict", cfg.TransitionPolicy)
}

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := LoadConfig()

	assert.ErrorContains(t, err, "DATABASE_URL")
}
