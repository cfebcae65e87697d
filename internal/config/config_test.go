package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "https://bordtennisportalen.dk", cfg.PortalBaseURL)
	assert.Equal(t, "328804", cfg.PlayerID)
	assert.Equal(t, "output.csv", cfg.OutputPath)
	assert.Equal(t, defaultProfileContextKey, cfg.ProfileContextKey)
	assert.Equal(t, defaultRankingContextKey, cfg.RankingContextKey)
	assert.NotEqual(t, cfg.ProfileContextKey, cfg.RankingContextKey)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.DiscoverContextKey)
	assert.Empty(t, cfg.HistoryDBPath)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PLAYER_ID", "123")
	t.Setenv("OUTPUT_PATH", "/tmp/points.csv")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("DISCOVER_CONTEXT_KEY", "true")
	t.Setenv("EXPORT_STRICT_COLUMNS", "1")
	t.Setenv("HISTORY_DB_PATH", "history.db")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "123", cfg.PlayerID)
	assert.Equal(t, "/tmp/points.csv", cfg.OutputPath)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.DiscoverContextKey)
	assert.True(t, cfg.StrictColumns)
	assert.Equal(t, "history.db", cfg.HistoryDBPath)
}

func TestLoadRejectsInvalid(t *testing.T) {
	testCases := map[string]map[string]string{
		"bad timeout":   {"REQUEST_TIMEOUT": "soon"},
		"bad url":       {"PORTAL_BASE_URL": "not a url"},
		"bad player":    {"PLAYER_ID": "abc"},
		"bad log level": {"LOG_LEVEL": "loud"},
	}

	for name, env := range testCases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load(zerolog.Nop())
			require.Error(t, err)
		})
	}
}

func TestValidateKeysRequiredWithoutDiscovery(t *testing.T) {
	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	cfg.ProfileContextKey = ""
	require.Error(t, cfg.Validate())

	cfg.DiscoverContextKey = true
	require.NoError(t, cfg.Validate())
}
