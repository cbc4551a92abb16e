// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/gridiron/internal/domain/model"
)

// SRSDependencies defines the interface for strength-of-schedule
// queries.
type SRSDependencies interface {
	StrengthOfSchedule(ctx context.Context, league string, season int) ([]model.RatingSnapshot, error)
}

// SRSHandler handles strength-of-schedule requests.
type SRSHandler struct {
	deps SRSDependencies
}

// NewSRSHandler creates a new srs handler.
func NewSRSHandler(deps SRSDependencies) *SRSHandler {
	return &SRSHandler{deps: deps}
}

// HandleGetSRS handles GET /srs?league=&season= requests. The rows
// are exploratory whole-season averages, never training inputs.
func (h *SRSHandler) HandleGetSRS(w http.ResponseWriter, r *http.Request) {
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

	rows, err := h.deps.StrengthOfSchedule(r.Context(), league, season)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	out := make([]snapshotResponse, 0, len(rows))
	for _, s := range rows {
		out = append(out, toSnapshotResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}
