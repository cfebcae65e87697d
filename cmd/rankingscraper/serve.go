package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"bordtennis-ranking/internal/config"
	"bordtennis-ranking/internal/constants"
	fxmodules "bordtennis-ranking/internal/fx"
	"bordtennis-ranking/internal/repository"
	"bordtennis-ranking/internal/scheduler"
	"bordtennis-ranking/internal/server"
	"bordtennis-ranking/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func serveCommand(o *overrides) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored ranking points over HTTP, optionally re-scraping on a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				fxmodules.Module,
				fx.Decorate(o.apply),
				fx.Provide(provideRankingServer),
				fx.Invoke(runServer),
				fx.NopLogger,
			)
			if err := app.Err(); err != nil {
				return err
			}

			if err := app.Start(cmd.Context()); err != nil {
				return err
			}
			<-app.Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			return app.Stop(stopCtx)
		},
	}

	cmd.Flags().StringVar(&o.port, "port", "", "listen port (overrides SERVER_PORT)")
	cmd.Flags().StringVar(&o.cron, "cron", "", "re-scrape schedule, crontab syntax (overrides SCRAPE_CRON)")
	return cmd
}

func provideRankingServer(repo *repository.RankingRepository, svc *service.RankingService, logger zerolog.Logger) (*server.RankingServer, error) {
	if repo == nil {
		return nil, errors.New("serve needs a history database, set HISTORY_DB_PATH or --db")
	}
	return server.NewRankingServer(repo, svc, logger), nil
}

func runServer(
	lc fx.Lifecycle,
	rankingServer *server.RankingServer,
	svc *service.RankingService,
	cfg *config.Config,
	logger zerolog.Logger,
) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: rankingServer.Handler(),
	}

	var sched *scheduler.Scheduler
	if cfg.ScrapeCron != "" {
		var err error
		sched, err = scheduler.NewScheduler(svc, service.RunOptions{
			PlayerID:   cfg.PlayerID,
			OutputPath: cfg.OutputPath,
		}, logger)
		if err != nil {
			return err
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if sched != nil {
				if err := sched.Start(cfg.ScrapeCron); err != nil {
					return err
				}
			}
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			if sched != nil {
				if err := sched.Stop(); err != nil {
					logger.Warn().Err(err).Msg("error stopping scheduler")
				}
			}

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
	return nil
}
