package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"bordtennis-ranking/internal/constants"
	"bordtennis-ranking/internal/domain"
	"bordtennis-ranking/internal/export"
	"bordtennis-ranking/internal/middleware"
	"bordtennis-ranking/internal/repository"
	"bordtennis-ranking/internal/service"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// History is the read side of the run history.
type History interface {
	LatestRun(ctx context.Context, playerID string) (*domain.ScrapeRun, error)
	ListRuns(ctx context.Context, playerID string, limit int) ([]domain.ScrapeRun, error)
	Records(ctx context.Context, runID, season string) ([]domain.StoredRecord, error)
}

// Scraper runs the pipeline on demand.
type Scraper interface {
	Run(ctx context.Context, opts service.RunOptions) (*service.RunResult, error)
}

type RankingServer struct {
	history History
	scraper Scraper
	logger  zerolog.Logger
}

func NewRankingServer(history History, scraper Scraper, logger zerolog.Logger) *RankingServer {
	return &RankingServer{history: history, scraper: scraper, logger: logger}
}

type rankingPointsResponse struct {
	RunID    string              `json:"run_id"`
	PlayerID string              `json:"player_id"`
	Columns  []string            `json:"columns"`
	Rows     []map[string]string `json:"rows"`
}

type runResponse struct {
	ID          string `json:"id"`
	PlayerID    string `json:"player_id"`
	StartedAt   string `json:"started_at"`
	FinishedAt  string `json:"finished_at"`
	RecordCount int    `json:"record_count"`
}

func (s *RankingServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/players/{playerID}/ranking-points", s.getRankingPoints)
	mux.HandleFunc("GET /api/players/{playerID}/ranking-points.csv", s.getRankingPointsCSV)
	mux.HandleFunc("GET /api/players/{playerID}/runs", s.listRuns)
	mux.HandleFunc("POST /api/players/{playerID}/scrape", s.scrape)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	return middleware.RequestID(s.logger)(c.Handler(mux))
}

func (s *RankingServer) getRankingPoints(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("playerID")
	records, runID, ok := s.latestRecords(w, r, playerID)
	if !ok {
		return
	}

	resp := rankingPointsResponse{RunID: runID, PlayerID: playerID, Columns: []string{}, Rows: []map[string]string{}}
	if len(records) > 0 {
		resp.Columns = records[0].Keys()
	}
	for _, rec := range records {
		row := make(map[string]string, rec.Len())
		for _, k := range rec.Keys() {
			row[k], _ = rec.Get(k)
		}
		resp.Rows = append(resp.Rows, row)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *RankingServer) getRankingPointsCSV(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("playerID")
	records, _, ok := s.latestRecords(w, r, playerID)
	if !ok {
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, domain.ErrEmptyResult)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ranking-points-`+playerID+`.csv"`)
	if err := export.Write(w, records, export.MissingColumnEmpty); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write csv")
	}
}

func (s *RankingServer) listRuns(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
	defer cancel()

	runs, err := s.history.ListRuns(ctx, r.PathValue("playerID"), constants.HistoryRunLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, toRunResponse(run))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *RankingServer) scrape(w http.ResponseWriter, r *http.Request) {
	opts := service.RunOptions{PlayerID: r.PathValue("playerID")}
	if season := r.URL.Query().Get("season"); season != "" {
		id, err := domain.ParseSeason(season)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		opts.Seasons = domain.SeasonsOf(id)
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.ScrapeRunTimeout)
	defer cancel()

	result, err := s.scraper.Run(ctx, opts)
	switch {
	case errors.Is(err, domain.ErrEmptyResult):
		writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRunResponse(result.Run))
}

func (s *RankingServer) latestRecords(w http.ResponseWriter, r *http.Request, playerID string) ([]domain.RankingRecord, string, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
	defer cancel()

	run, err := s.history.LatestRun(ctx, playerID)
	if errors.Is(err, repository.ErrNoRuns) {
		writeError(w, http.StatusNotFound, err)
		return nil, "", false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return nil, "", false
	}

	stored, err := s.history.Records(ctx, run.ID, r.URL.Query().Get("season"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return nil, "", false
	}

	records := make([]domain.RankingRecord, 0, len(stored))
	for _, rec := range stored {
		records = append(records, rec.Record)
	}
	return records, run.ID, true
}

func toRunResponse(run domain.ScrapeRun) runResponse {
	return runResponse{
		ID:          run.ID,
		PlayerID:    run.PlayerID,
		StartedAt:   run.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:  run.FinishedAt.UTC().Format(time.RFC3339),
		RecordCount: run.RecordCount,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
