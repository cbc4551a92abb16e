// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/gridiron/internal/domain/model"
)

// RatingDependencies defines the interface for single-team rating
// lookups.
type RatingDependencies interface {
	TeamRating(ctx context.Context, league string, season int, teamID string, cutoffWeek int) (model.RatingSnapshot, error)
}

// RatingsHandler handles team rating requests.
type RatingsHandler struct {
	deps RatingDependencies
}

// NewRatingsHandler creates a new ratings handler.
func NewRatingsHandler(deps RatingDependencies) *RatingsHandler {
	return &RatingsHandler{deps: deps}
}

// HandleGetRating handles GET /ratings/{league}/{season}/{team_id}
// requests. An optional ?week= query bounds the lookup; omitted means
// latest available.
func (h *RatingsHandler) HandleGetRating(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/ratings/"), "/")
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	season, err := strconv.Atoi(parts[1])
	if err != nil || season <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	cutoffWeek := -1
	if raw := r.URL.Query().Get("week"); raw != "" {
		cutoffWeek, err = strconv.Atoi(raw)
		if err != nil || cutoffWeek < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
	}

	snap, err := h.deps.TeamRating(r.Context(), parts[0], season, parts[2], cutoffWeek)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotResponse(snap))
}
