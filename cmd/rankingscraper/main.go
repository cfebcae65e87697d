package main

import (
	"os"

	"bordtennis-ranking/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// overrides are CLI flags layered over the environment configuration.
type overrides struct {
	playerID   string
	outputPath string
	dbPath     string
	port       string
	cron       string
	discover   bool
}

func (o *overrides) apply(cfg *config.Config) (*config.Config, error) {
	if o.playerID != "" {
		cfg.PlayerID = o.playerID
	}
	if o.outputPath != "" {
		cfg.OutputPath = o.outputPath
	}
	if o.dbPath != "" {
		cfg.HistoryDBPath = o.dbPath
	}
	if o.port != "" {
		cfg.ServerPort = o.port
	}
	if o.cron != "" {
		cfg.ScrapeCron = o.cron
	}
	if o.discover {
		cfg.DiscoverContextKey = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	root := &cobra.Command{
		Use:   "rankingscraper",
		Short: "Collects a player's ranking points from bordtennisportalen.dk",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// loaded before the logger is built so LOG_LEVEL from .env applies
			_ = godotenv.Load()
		},
		SilenceUsage: true,
	}

	o := &overrides{}
	root.PersistentFlags().StringVar(&o.playerID, "player", "", "player id (overrides PLAYER_ID)")
	root.PersistentFlags().StringVar(&o.dbPath, "db", "", "history database path (overrides HISTORY_DB_PATH)")
	root.PersistentFlags().BoolVar(&o.discover, "discover-key", false, "read the callback context key from the portal home page")

	root.AddCommand(
		scrapeCommand(o),
		serveCommand(o),
		seasonsCommand(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
