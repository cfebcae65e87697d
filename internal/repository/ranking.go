package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bordtennis-ranking/internal/constants"
	"bordtennis-ranking/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

var ErrNoRuns = errors.New("no stored runs")

type RankingRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRankingRepository(sqlDB *sql.DB, logger zerolog.Logger) *RankingRepository {
	return &RankingRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// SaveRun stores a run and its records in one transaction. Records without
// an ID get a nanoid.
func (r *RankingRepository) SaveRun(ctx context.Context, run domain.ScrapeRun, records []domain.StoredRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scrape_runs (id, player_id, started_at, finished_at, record_count) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.PlayerID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.RecordCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ranking_points (id, run_id, season_id, row_index, columns, cells) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < len(records); i += constants.DBBatchSize {
		end := min(i+constants.DBBatchSize, len(records))

		for _, rec := range records[i:end] {
			id := rec.ID
			if id == "" {
				id, err = gonanoid.New()
				if err != nil {
					return fmt.Errorf("failed to generate nanoid: %w", err)
				}
			}

			columns, err := json.Marshal(rec.Record.Keys())
			if err != nil {
				return fmt.Errorf("failed to encode columns: %w", err)
			}
			cells, err := json.Marshal(rec.Record.Values())
			if err != nil {
				return fmt.Errorf("failed to encode cells: %w", err)
			}

			if _, err := stmt.ExecContext(ctx, id, run.ID, rec.SeasonID, rec.RowIndex, string(columns), string(cells)); err != nil {
				return fmt.Errorf("failed to insert ranking point: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	r.logger.Debug().
		Str("run_id", run.ID).
		Str("player_id", run.PlayerID).
		Int("records", len(records)).
		Msg("run stored")
	return nil
}

// LatestRun returns the most recently finished run for a player.
func (r *RankingRepository) LatestRun(ctx context.Context, playerID string) (*domain.ScrapeRun, error) {
	runs, err := r.ListRuns(ctx, playerID, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}
	return &runs[0], nil
}

func (r *RankingRepository) ListRuns(ctx context.Context, playerID string, limit int) ([]domain.ScrapeRun, error) {
	if limit <= 0 {
		limit = constants.HistoryRunLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, player_id, started_at, finished_at, record_count
		   FROM scrape_runs
		  WHERE player_id = ?
		  ORDER BY finished_at DESC
		  LIMIT ?`,
		playerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.ScrapeRun
	for rows.Next() {
		var run domain.ScrapeRun
		var started, finished time.Time
		if err := rows.Scan(&run.ID, &run.PlayerID, &started, &finished, &run.RecordCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt = started
		run.FinishedAt = finished
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Records returns a run's records in their original order. An empty season
// returns every season.
func (r *RankingRepository) Records(ctx context.Context, runID, season string) ([]domain.StoredRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, run_id, season_id, row_index, columns, cells
		   FROM ranking_points
		  WHERE run_id = ? AND (? = '' OR season_id = ?)
		  ORDER BY row_index`,
		runID, season, season,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking points: %w", err)
	}
	defer rows.Close()

	var result []domain.StoredRecord
	for rows.Next() {
		var rec domain.StoredRecord
		var columns, cells string
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.SeasonID, &rec.RowIndex, &columns, &cells); err != nil {
			return nil, fmt.Errorf("failed to scan ranking point: %w", err)
		}

		var keys, values []string
		if err := json.Unmarshal([]byte(columns), &keys); err != nil {
			return nil, fmt.Errorf("failed to decode columns of %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(cells), &values); err != nil {
			return nil, fmt.Errorf("failed to decode cells of %s: %w", rec.ID, err)
		}
		rec.Record = domain.RecordOf(keys, values)
		result = append(result, rec)
	}
	return result, rows.Err()
}
