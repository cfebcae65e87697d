package scheduler

import (
	"context"
	"fmt"

	"bordtennis-ranking/internal/constants"
	"bordtennis-ranking/internal/service"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

type Runner interface {
	Run(ctx context.Context, opts service.RunOptions) (*service.RunResult, error)
}

// Scheduler re-scrapes one player on a cron schedule. A run that is still
// going when the next tick fires pushes that tick back instead of overlapping.
type Scheduler struct {
	s      gocron.Scheduler
	runner Runner
	opts   service.RunOptions
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(runner Runner, opts service.RunOptions, logger zerolog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		s:      s,
		runner: runner,
		opts:   opts,
		logger: logger.With().Str("component", "scheduler").Logger(),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

func (s *Scheduler) Start(crontab string) error {
	_, err := s.s.NewJob(
		gocron.CronJob(crontab, false),
		gocron.NewTask(s.scrape),
		gocron.WithName("scrape-"+s.opts.PlayerID),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create scrape job: %w", err)
	}

	s.s.Start()
	s.logger.Info().Str("cron", crontab).Str("player_id", s.opts.PlayerID).Msg("scheduled scrape")
	return nil
}

func (s *Scheduler) Stop() error {
	s.cancel()
	return s.s.Shutdown()
}

func (s *Scheduler) scrape() {
	ctx, cancel := context.WithTimeout(s.ctx, constants.ScrapeRunTimeout)
	defer cancel()

	result, err := s.runner.Run(ctx, s.opts)
	if err != nil {
		s.logger.Error().Err(err).Str("player_id", s.opts.PlayerID).Msg("scheduled scrape failed")
		return
	}
	s.logger.Info().Str("run_id", result.Run.ID).Int("records", result.Run.RecordCount).Msg("scheduled scrape done")
}
