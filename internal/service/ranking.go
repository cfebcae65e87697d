package service

import (
	"context"
	"iter"
	"sync"
	"time"

	"bordtennis-ranking/internal/config"
	"bordtennis-ranking/internal/domain"
	"bordtennis-ranking/internal/export"
	"bordtennis-ranking/internal/scrape"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Portal is the subset of the portal client the pipeline needs.
type Portal interface {
	GetPlayerProfile(ctx context.Context, req domain.ProfileRequest) (string, error)
	GetRankingListPoints(ctx context.Context, params domain.RankingQueryParams) (string, error)
	GetHomePage(ctx context.Context) (string, error)
}

// HistoryStore persists finished runs.
type HistoryStore interface {
	SaveRun(ctx context.Context, run domain.ScrapeRun, records []domain.StoredRecord) error
}

// NoHistory discards runs; used when no history database is configured.
type NoHistory struct{}

func (NoHistory) SaveRun(context.Context, domain.ScrapeRun, []domain.StoredRecord) error { return nil }

// Keys are the callback context keys sent to the two endpoints.
type Keys struct {
	Profile string
	Ranking string
}

type RunOptions struct {
	PlayerID   string
	Seasons    iter.Seq[domain.SeasonID]
	OutputPath string // empty skips the CSV export
}

// SeasonRecords are the rows one season contributed.
type SeasonRecords struct {
	Season  domain.SeasonID
	Records []domain.RankingRecord
}

type RunResult struct {
	Run     domain.ScrapeRun
	Seasons []SeasonRecords
	Records domain.ResultSet
}

type RankingService struct {
	portal  Portal
	history HistoryStore
	cfg     *config.Config
	logger  zerolog.Logger

	// one run at a time, whoever triggers it
	runMu sync.Mutex
}

func NewRankingService(portal Portal, history HistoryStore, cfg *config.Config, logger zerolog.Logger) *RankingService {
	return &RankingService{
		portal:  portal,
		history: history,
		cfg:     cfg,
		logger:  logger.With().Str("component", "ranking").Logger(),
	}
}

// FetchProfileParams asks the profile endpoint for one season and lifts the
// ranking list parameters out of it. ok is false when the season has no
// ranking data for the player.
func (s *RankingService) FetchProfileParams(ctx context.Context, callbackContextKey string, season domain.SeasonID, playerID string) (scrape.ShowPointsParams, bool, error) {
	fragment, err := s.portal.GetPlayerProfile(ctx, domain.NewProfileRequest(callbackContextKey, season, playerID))
	if err != nil {
		return scrape.ShowPointsParams{}, false, errors.Wrapf(err, "fetch profile for season %s", season)
	}

	params, ok, err := scrape.ProfileParams(fragment)
	if err != nil {
		return scrape.ShowPointsParams{}, false, errors.Wrapf(err, "profile for season %s", season)
	}
	return params, ok, nil
}

// FetchRankingTable fetches and flattens the ranking points table. ok is
// false when the table has no data rows.
func (s *RankingService) FetchRankingTable(ctx context.Context, params domain.RankingQueryParams) ([]domain.RankingRecord, bool, error) {
	fragment, err := s.portal.GetRankingListPoints(ctx, params)
	if err != nil {
		return nil, false, errors.Wrapf(err, "fetch ranking list %s", params.RankingListID)
	}

	records, ok, err := scrape.RankingTable(fragment)
	if err != nil {
		return nil, false, errors.Wrapf(err, "ranking list %s", params.RankingListID)
	}
	return records, ok, nil
}

// ResolveKeys returns the configured keys, or the key published on the
// portal home page when discovery is enabled.
func (s *RankingService) ResolveKeys(ctx context.Context) (Keys, error) {
	if !s.cfg.DiscoverContextKey {
		return Keys{Profile: s.cfg.ProfileContextKey, Ranking: s.cfg.RankingContextKey}, nil
	}

	page, err := s.portal.GetHomePage(ctx)
	if err != nil {
		return Keys{}, errors.Wrap(err, "fetch portal home page")
	}
	key, ok, err := scrape.CallbackContextKey(page)
	if err != nil {
		return Keys{}, err
	}
	if !ok {
		return Keys{}, domain.ErrContextKeyNotFound
	}

	s.logger.Debug().Msg("discovered callback context key")
	return Keys{Profile: key, Ranking: key}, nil
}

// Collect walks the seasons in order, one at a time. Seasons without a
// show-points link or without data rows contribute nothing.
func (s *RankingService) Collect(ctx context.Context, keys Keys, playerID string, seasons iter.Seq[domain.SeasonID]) ([]SeasonRecords, error) {
	var collected []SeasonRecords

	for season := range seasons {
		log := s.logger.With().Str("season_id", season.String()).Str("player_id", playerID).Logger()
		log.Info().Str("season", season.Label()).Msg("querying profile")

		params, ok, err := s.FetchProfileParams(ctx, keys.Profile, season, playerID)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Info().Msg("no ranking points for season, skipping")
			continue
		}

		records, ok, err := s.FetchRankingTable(ctx, params.Query(keys.Ranking))
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Info().Msg("ranking table has no data rows")
			continue
		}

		log.Info().Int("records", len(records)).Msg("collected ranking points")
		collected = append(collected, SeasonRecords{Season: season, Records: records})
	}

	return collected, nil
}

// Run executes the whole pipeline: resolve keys, collect every season, then
// export and store the result.
func (s *RankingService) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if opts.PlayerID == "" {
		opts.PlayerID = s.cfg.PlayerID
	}
	if opts.Seasons == nil {
		opts.Seasons = domain.Seasons()
	}

	started := time.Now()
	keys, err := s.ResolveKeys(ctx)
	if err != nil {
		return nil, err
	}

	seasons, err := s.Collect(ctx, keys, opts.PlayerID, opts.Seasons)
	if err != nil {
		s.logger.Error().Err(err).Str("player_id", opts.PlayerID).Msg("scrape failed")
		return nil, err
	}

	result := &RunResult{
		Run: domain.ScrapeRun{
			ID:        uuid.New().String(),
			PlayerID:  opts.PlayerID,
			StartedAt: started,
		},
		Seasons: seasons,
	}
	for _, sr := range seasons {
		result.Records = append(result.Records, sr.Records...)
	}
	if len(result.Records) == 0 {
		return nil, errors.Wrapf(domain.ErrEmptyResult, "player %s", opts.PlayerID)
	}
	result.Run.RecordCount = len(result.Records)
	result.Run.FinishedAt = time.Now()

	if err := s.finish(ctx, result, opts.OutputPath); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("run_id", result.Run.ID).
		Str("player_id", opts.PlayerID).
		Int("seasons", len(seasons)).
		Int("records", len(result.Records)).
		Dur("took", result.Run.FinishedAt.Sub(started)).
		Msg("scrape completed")
	return result, nil
}

// finish writes the CSV and stores the run. Both only read the result.
func (s *RankingService) finish(ctx context.Context, result *RunResult, outputPath string) error {
	g, gctx := errgroup.WithContext(ctx)

	if outputPath != "" {
		g.Go(func() error {
			if err := export.WriteFile(outputPath, result.Records, export.PolicyFor(s.cfg.StrictColumns)); err != nil {
				return errors.Wrapf(err, "export %s", outputPath)
			}
			s.logger.Info().Str("path", outputPath).Int("records", len(result.Records)).Msg("csv written")
			return nil
		})
	}

	g.Go(func() error {
		if err := s.history.SaveRun(gctx, result.Run, storedRecords(result)); err != nil {
			return errors.Wrap(err, "store run")
		}
		return nil
	})

	return g.Wait()
}

func storedRecords(result *RunResult) []domain.StoredRecord {
	out := make([]domain.StoredRecord, 0, len(result.Records))
	for _, sr := range result.Seasons {
		for _, rec := range sr.Records {
			out = append(out, domain.StoredRecord{
				RunID:    result.Run.ID,
				SeasonID: sr.Season.String(),
				RowIndex: len(out),
				Record:   rec,
			})
		}
	}
	return out
}
