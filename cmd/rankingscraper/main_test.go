package main

import (
	"bytes"
	"slices"
	"testing"
	"time"

	"bordtennis-ranking/internal/config"
	"bordtennis-ranking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *config.Config {
	return &config.Config{
		PortalBaseURL:     "https://bordtennisportalen.dk",
		ProfileContextKey: "p",
		RankingContextKey: "r",
		PlayerID:          "328804",
		OutputPath:        "output.csv",
		UserAgent:         "ua",
		RequestTimeout:    time.Second,
		ServerPort:        "8080",
		LogLevel:          "info",
	}
}

func TestOverridesApply(t *testing.T) {
	o := &overrides{playerID: "42", outputPath: "x.csv", dbPath: "h.db", discover: true}

	cfg, err := o.apply(baseConfig())
	require.NoError(t, err)
	assert.Equal(t, "42", cfg.PlayerID)
	assert.Equal(t, "x.csv", cfg.OutputPath)
	assert.Equal(t, "h.db", cfg.HistoryDBPath)
	assert.True(t, cfg.DiscoverContextKey)
	assert.Equal(t, "8080", cfg.ServerPort)
}

func TestOverridesApplyValidates(t *testing.T) {
	o := &overrides{playerID: "not-a-number"}
	_, err := o.apply(baseConfig())
	require.Error(t, err)
}

func TestParseSeasons(t *testing.T) {
	all, err := parseSeasons(nil)
	require.NoError(t, err)
	assert.Len(t, slices.Collect(all), 5)

	some, err := parseSeasons([]string{"2024/25", "42020"})
	require.NoError(t, err)
	assert.Equal(t, []domain.SeasonID{domain.Season2021, domain.Season2425}, slices.Collect(some))

	_, err = parseSeasons([]string{"1999/00"})
	require.Error(t, err)
}

func TestSeasonsCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := seasonsCommand()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "42020\t2020/21\n42021\t2021/22\n42022\t2022/23\n42023\t2023/24\n42024\t2024/25\n", out.String())
}
