// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/gridiron/internal/adapters/repository"
	"github.com/okian/gridiron/internal/domain/feature"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/rating"
)

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to implementations in other
// packages.
type Dependencies interface {
	// Write operations
	IngestGames(ctx context.Context, games []model.Game) (int, error)
	EnqueueReplay(ctx context.Context, league string, season int) error
	RunReplay(ctx context.Context, league string, season int) (rating.Result, error)

	// Read operations
	Game(ctx context.Context, id string) (model.Game, error)
	Rankings(ctx context.Context, league string, season, limit int) ([]model.RatingSnapshot, error)
	TeamRating(ctx context.Context, league string, season int, teamID string, cutoffWeek int) (model.RatingSnapshot, error)
	FeaturesByWeek(ctx context.Context, gameID string, predictionWeek int) (feature.Vector, error)
	FeaturesByDate(ctx context.Context, gameID string, asOf time.Time) (feature.Vector, error)
	StrengthOfSchedule(ctx context.Context, league string, season int) ([]model.RatingSnapshot, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	gamesHandler    *GamesHandler
	rankingsHandler *RankingsHandler
	ratingsHandler  *RatingsHandler
	featuresHandler *FeaturesHandler
	srsHandler      *SRSHandler
	replayHandler   *ReplayHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		gamesHandler:    NewGamesHandler(deps),
		rankingsHandler: NewRankingsHandler(deps),
		ratingsHandler:  NewRatingsHandler(deps),
		featuresHandler: NewFeaturesHandler(deps),
		srsHandler:      NewSRSHandler(deps),
		replayHandler:   NewReplayHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/games", MetricsMiddleware(s.gamesHandler.HandlePostGames, "games"))
	mux.HandleFunc("/games/", MetricsMiddleware(s.gamesHandler.HandleGetGame, "game"))
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings"))
	mux.HandleFunc("/ratings/", MetricsMiddleware(s.ratingsHandler.HandleGetRating, "ratings"))
	mux.HandleFunc("/features/", MetricsMiddleware(s.featuresHandler.HandleGetFeatures, "features"))
	mux.HandleFunc("/srs", MetricsMiddleware(s.srsHandler.HandleGetSRS, "srs"))
	mux.HandleFunc("/replays", MetricsMiddleware(s.replayHandler.HandlePostReplay, "replays"))
}

// snapshotResponse mirrors the read shape of one rating snapshot.
type snapshotResponse struct {
	League     string  `json:"league"`
	Season     int     `json:"season"`
	TeamID     string  `json:"team_id"`
	Week       int     `json:"week"`
	Rating     float64 `json:"rating"`
	GamesCount int     `json:"games_count"`
	AsOfDate   string  `json:"as_of_date"`
	Kind       string  `json:"kind"`
}

func toSnapshotResponse(s model.RatingSnapshot) snapshotResponse {
	return snapshotResponse{
		League:     s.League,
		Season:     s.Season,
		TeamID:     s.TeamID,
		Week:       s.Week,
		Rating:     s.Rating,
		GamesCount: s.GamesCount,
		AsOfDate:   s.AsOfDate.UTC().Format(time.RFC3339),
		Kind:       string(s.Kind),
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound allows the API to translate upstream not-found errors to
// 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
