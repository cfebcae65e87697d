package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"bordtennis-ranking/internal/constants"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Keys observed on the portal. The profile and ranking endpoints were called
// with different keys; both are kept configurable.
const (
	defaultProfileContextKey = "93A0FE1C7ECEE3176F67CBF3F964B3DF61029AD09065090C1E2C513EDE5A6DC2022B06A3A7B49B829A6A27791969EF65"
	defaultRankingContextKey = "93A0FE1C7ECEE3176F67CBF3F964B3DF61029AD09065090C1E2C513EDE5A6DC2152291EFAB40E90FD597017D5343147E"
)

type Config struct {
	PortalBaseURL      string `validate:"required,url"`
	ProfileContextKey  string `validate:"required_without=DiscoverContextKey"`
	RankingContextKey  string `validate:"required_without=DiscoverContextKey"`
	DiscoverContextKey bool
	PlayerID           string `validate:"required,numeric"`
	OutputPath         string `validate:"required"`
	StrictColumns      bool
	UserAgent          string        `validate:"required"`
	RequestTimeout     time.Duration `validate:"gt=0"`
	HistoryDBPath      string
	ServerPort         string `validate:"required,numeric"`
	ScrapeCron         string
	LogLevel           string `validate:"oneof=trace debug info warn error"`
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", constants.ExternalAPITimeout.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	cfg := &Config{
		PortalBaseURL:      getEnv("PORTAL_BASE_URL", constants.DefaultPortalBaseURL),
		ProfileContextKey:  getEnv("PROFILE_CONTEXT_KEY", defaultProfileContextKey),
		RankingContextKey:  getEnv("RANKING_CONTEXT_KEY", defaultRankingContextKey),
		DiscoverContextKey: getEnvBool("DISCOVER_CONTEXT_KEY", false),
		PlayerID:           getEnv("PLAYER_ID", "328804"),
		OutputPath:         getEnv("OUTPUT_PATH", "output.csv"),
		StrictColumns:      getEnvBool("EXPORT_STRICT_COLUMNS", false),
		UserAgent:          getEnv("USER_AGENT", constants.DefaultUserAgent),
		RequestTimeout:     timeout,
		HistoryDBPath:      getEnv("HISTORY_DB_PATH", ""),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		ScrapeCron:         getEnv("SCRAPE_CRON", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("portal", cfg.PortalBaseURL).
		Str("player_id", cfg.PlayerID).
		Str("output_path", cfg.OutputPath).
		Bool("discover_context_key", cfg.DiscoverContextKey).
		Str("history_db_path", cfg.HistoryDBPath).
		Dur("request_timeout", cfg.RequestTimeout).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
