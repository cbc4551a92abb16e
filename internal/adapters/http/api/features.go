// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/gridiron/internal/domain/feature"
)

// FeatureDependencies defines the interface for feature derivation.
type FeatureDependencies interface {
	FeaturesByWeek(ctx context.Context, gameID string, predictionWeek int) (feature.Vector, error)
	FeaturesByDate(ctx context.Context, gameID string, asOf time.Time) (feature.Vector, error)
}

// FeaturesHandler handles feature vector requests.
type FeaturesHandler struct {
	deps FeatureDependencies
}

// NewFeaturesHandler creates a new features handler.
func NewFeaturesHandler(deps FeatureDependencies) *FeaturesHandler {
	return &FeaturesHandler{deps: deps}
}

type featureResponse struct {
	GameID   string         `json:"game_id"`
	Mode     string         `json:"mode"`
	Features feature.Vector `json:"features"`
}

// HandleGetFeatures handles GET /features/{game_id} requests.
// ?mode=week (default) takes an optional ?week= cutoff; ?mode=date
// takes an optional RFC3339 ?as_of= cutoff.
func (h *FeaturesHandler) HandleGetFeatures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	gameID := strings.TrimPrefix(r.URL.Path, "/features/")
	if gameID == "" || strings.Contains(gameID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "week"
	}

	var (
		vecOut feature.Vector
		err    error
	)
	switch mode {
	case "week":
		week := -1
		if raw := r.URL.Query().Get("week"); raw != "" {
			week, err = strconv.Atoi(raw)
			if err != nil || week < 0 {
				writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
				return
			}
		}
		vecOut, err = h.deps.FeaturesByWeek(r.Context(), gameID, week)
	case "date":
		var asOf time.Time
		if raw := r.URL.Query().Get("as_of"); raw != "" {
			asOf, err = time.Parse(time.RFC3339, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid as_of; must be RFC3339"))
				return
			}
		}
		vecOut, err = h.deps.FeaturesByDate(r.Context(), gameID, asOf)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("mode must be week or date"))
		return
	}
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, featureResponse{GameID: gameID, Mode: mode, Features: vecOut})
}
