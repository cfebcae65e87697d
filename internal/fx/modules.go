package fx

import (
	"bordtennis-ranking/internal/api"
	"bordtennis-ranking/internal/config"
	"bordtennis-ranking/internal/database"
	"bordtennis-ranking/internal/logger"
	"bordtennis-ranking/internal/repository"
	"bordtennis-ranking/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideRepository opens the history database when one is configured and
// returns nil otherwise.
func ProvideRepository(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (*repository.RankingRepository, error) {
	if cfg.HistoryDBPath == "" {
		return nil, nil
	}

	db, err := database.Open(cfg.HistoryDBPath, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(db.Close))

	return repository.NewRankingRepository(db, logger), nil
}

func ProvideHistoryStore(repo *repository.RankingRepository) service.HistoryStore {
	if repo == nil {
		return service.NoHistory{}
	}
	return repo
}

func ProvidePortal(client *api.PortalClient) service.Portal {
	return client
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	// storage
	fx.Provide(ProvideRepository),
	fx.Provide(ProvideHistoryStore),
	// api client
	fx.Provide(api.NewPortalClient),
	fx.Provide(ProvidePortal),
	// svc
	fx.Provide(service.NewRankingService),
)
