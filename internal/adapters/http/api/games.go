// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/gridiron/internal/domain/model"
)

// GameDependencies defines the interface for game operations.
type GameDependencies interface {
	IngestGames(ctx context.Context, games []model.Game) (int, error)
	Game(ctx context.Context, id string) (model.Game, error)
}

// GamesHandler handles game ingestion and lookup requests.
type GamesHandler struct {
	deps GameDependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GameDependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

// gameRequest mirrors the wire schema for one game record.
type gameRequest struct {
	GameID      string `json:"game_id"`
	League      string `json:"league"`
	Season      int    `json:"season"`
	Week        int    `json:"week"`
	Date        string `json:"date"`
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	HomeScore   *int   `json:"home_score"`
	AwayScore   *int   `json:"away_score"`
	Completed   bool   `json:"completed"`
	NeutralSite bool   `json:"neutral_site"`
}

func (g gameRequest) validate() error {
	switch {
	case strings.TrimSpace(g.GameID) == "":
		return errors.New("missing game_id")
	case strings.TrimSpace(g.League) == "":
		return errors.New("missing league")
	case g.Season <= 0:
		return errors.New("invalid season")
	case g.Week < 0:
		return errors.New("invalid week")
	case strings.TrimSpace(g.HomeTeam) == "":
		return errors.New("missing home_team")
	case strings.TrimSpace(g.AwayTeam) == "":
		return errors.New("missing away_team")
	case strings.TrimSpace(g.Date) == "":
		return errors.New("missing date")
	}
	if _, err := time.Parse(time.RFC3339, g.Date); err != nil {
		return errors.New("invalid date; must be RFC3339")
	}
	if g.Completed && (g.HomeScore == nil || g.AwayScore == nil) {
		return errors.New("completed game requires both scores")
	}
	return nil
}

func (g gameRequest) toModel() model.Game {
	date, _ := time.Parse(time.RFC3339, g.Date)
	return model.Game{
		ID:          g.GameID,
		League:      g.League,
		Season:      g.Season,
		Week:        g.Week,
		Date:        date,
		HomeTeamID:  g.HomeTeam,
		AwayTeamID:  g.AwayTeam,
		HomeScore:   g.HomeScore,
		AwayScore:   g.AwayScore,
		Completed:   g.Completed,
		NeutralSite: g.NeutralSite,
	}
}

// gameResponse mirrors the read shape of one stored game.
type gameResponse struct {
	GameID      string `json:"game_id"`
	League      string `json:"league"`
	Season      int    `json:"season"`
	Week        int    `json:"week"`
	Date        string `json:"date"`
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	HomeScore   *int   `json:"home_score"`
	AwayScore   *int   `json:"away_score"`
	Completed   bool   `json:"completed"`
	NeutralSite bool   `json:"neutral_site"`
}

func toGameResponse(g model.Game) gameResponse {
	return gameResponse{
		GameID:      g.ID,
		League:      g.League,
		Season:      g.Season,
		Week:        g.Week,
		Date:        g.Date.UTC().Format(time.RFC3339),
		HomeTeam:    g.HomeTeamID,
		AwayTeam:    g.AwayTeamID,
		HomeScore:   g.HomeScore,
		AwayScore:   g.AwayScore,
		Completed:   g.Completed,
		NeutralSite: g.NeutralSite,
	}
}

type ingestResponse struct {
	Status string `json:"status"`
	Stored int    `json:"stored"`
}

// HandlePostGames handles POST /games requests carrying a batch of
// game records.
func (h *GamesHandler) HandlePostGames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var reqs []gameRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid JSON body"))
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("empty game batch"))
		return
	}

	games := make([]model.Game, 0, len(reqs))
	for _, req := range reqs {
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		games = append(games, req.toModel())
	}

	n, err := h.deps.IngestGames(r.Context(), games)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusAccepted, ingestResponse{Status: "accepted", Stored: n})
}

// HandleGetGame handles GET /games/{game_id} requests.
func (h *GamesHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/games/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	g, err := h.deps.Game(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, toGameResponse(g))
}
