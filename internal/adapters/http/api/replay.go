// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/gridiron/internal/domain/rating"
)

// ReplayDependencies defines the interface for replay operations.
type ReplayDependencies interface {
	EnqueueReplay(ctx context.Context, league string, season int) error
	RunReplay(ctx context.Context, league string, season int) (rating.Result, error)
}

// ReplayHandler handles replay trigger requests.
type ReplayHandler struct {
	deps ReplayDependencies
}

// NewReplayHandler creates a new replay handler.
func NewReplayHandler(deps ReplayDependencies) *ReplayHandler {
	return &ReplayHandler{deps: deps}
}

// replayRequest mirrors the wire schema for POST /replays.
type replayRequest struct {
	League string `json:"league"`
	Season int    `json:"season"`
	Sync   bool   `json:"sync"`
}

func (req replayRequest) validate() error {
	switch {
	case strings.TrimSpace(req.League) == "":
		return errors.New("missing league")
	case req.Season <= 0:
		return errors.New("invalid season")
	}
	return nil
}

type replayResponse struct {
	Status     string   `json:"status"`
	Processed  int      `json:"processed,omitempty"`
	Teams      int      `json:"teams,omitempty"`
	Skipped    []string `json:"skipped,omitempty"`
	Duplicates []string `json:"duplicates,omitempty"`
}

// HandlePostReplay handles POST /replays requests. The default is an
// asynchronous enqueue; sync=true replays inline and reports the
// result.
func (h *ReplayHandler) HandlePostReplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req replayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid JSON body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	if req.Sync {
		res, err := h.deps.RunReplay(r.Context(), req.League, req.Season)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		writeJSON(w, http.StatusOK, replayResponse{
			Status:     "complete",
			Processed:  res.Processed,
			Teams:      len(res.Snapshots),
			Skipped:    res.Skipped,
			Duplicates: res.Duplicates,
		})
		return
	}

	if err := h.deps.EnqueueReplay(r.Context(), req.League, req.Season); err != nil {
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, replayResponse{Status: "queued"})
}
