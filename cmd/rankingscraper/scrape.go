package main

import (
	"context"
	"fmt"
	"iter"

	"bordtennis-ranking/internal/config"
	"bordtennis-ranking/internal/constants"
	"bordtennis-ranking/internal/domain"
	fxmodules "bordtennis-ranking/internal/fx"
	"bordtennis-ranking/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func scrapeCommand(o *overrides) *cobra.Command {
	var seasonArgs []string

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch ranking points for every season and write them to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			seasons, err := parseSeasons(seasonArgs)
			if err != nil {
				return err
			}

			var (
				svc *service.RankingService
				cfg *config.Config
			)
			app := fx.New(
				fxmodules.Module,
				fx.Decorate(o.apply),
				fx.Populate(&svc, &cfg),
				fx.NopLogger,
			)
			if err := app.Err(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := app.Start(ctx); err != nil {
				return err
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
				defer cancel()
				_ = app.Stop(stopCtx)
			}()

			result, err := svc.Run(ctx, service.RunOptions{
				PlayerID:   cfg.PlayerID,
				Seasons:    seasons,
				OutputPath: cfg.OutputPath,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records from %d seasons to %s\n",
				len(result.Records), len(result.Seasons), cfg.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&o.outputPath, "output", "o", "", "csv output path (overrides OUTPUT_PATH)")
	cmd.Flags().StringSliceVar(&seasonArgs, "season", nil, "limit to seasons, by id (42024) or label (2024/25)")
	return cmd
}

func parseSeasons(args []string) (iter.Seq[domain.SeasonID], error) {
	if len(args) == 0 {
		return domain.Seasons(), nil
	}

	ids := make([]domain.SeasonID, 0, len(args))
	for _, a := range args {
		id, err := domain.ParseSeason(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return domain.SeasonsOf(ids...), nil
}

func seasonsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seasons",
		Short: "List the known seasons",
		Run: func(cmd *cobra.Command, args []string) {
			for s := range domain.Seasons() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s, s.Label())
			}
		},
	}
}
