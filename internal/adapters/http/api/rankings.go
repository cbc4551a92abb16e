// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/gridiron/internal/domain/model"
)

// RankingsDependencies defines the interface for ranking queries.
type RankingsDependencies interface {
	Rankings(ctx context.Context, league string, season, limit int) ([]model.RatingSnapshot, error)
}

// RankingsHandler handles ranking requests.
type RankingsHandler struct {
	deps RankingsDependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingsDependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

// HandleGetRankings handles GET /rankings?league=&season=&limit=
// requests.
func (h *RankingsHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	league := r.URL.Query().Get("league")
	if league == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	season, err := strconv.Atoi(r.URL.Query().Get("season"))
	if err != nil || season <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
	}

	finals, err := h.deps.Rankings(r.Context(), league, season, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	out := make([]snapshotResponse, 0, len(finals))
	for _, s := range finals {
		out = append(out, toSnapshotResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}
