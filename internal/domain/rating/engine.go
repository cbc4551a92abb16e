// Package rating implements the deterministic Elo replay engine.
//
// A replay consumes one league+season game log in chronological order
// and produces a rating per observed team. Nothing computed for a game
// may depend on information dated at or after that game; the replay is
// the mechanism that enforces this.
package rating

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/gridiron/internal/domain/dedupe"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/team"
	"github.com/okian/gridiron/pkg/metrics"
)

// Default engine parameters. Effect-bearing values are configurable;
// these mirror the config package defaults.
const (
	defaultKFactor       = 20.0
	defaultBaseRating    = 1500.0
	defaultHomeAdvantage = 55.0
	defaultMeanReversion = 0.33

	eloScale = 400.0
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithKFactor sets the per-game update rate.
func WithKFactor(k float64) Option {
	return func(e *Engine) {
		if k > 0 {
			e.kFactor = k
		}
	}
}

// WithBaseRating sets the season-start anchor rating.
func WithBaseRating(base float64) Option {
	return func(e *Engine) {
		if base > 0 {
			e.baseRating = base
		}
	}
}

// WithHomeAdvantage sets the rating offset granted to the home side
// when computing the expected outcome. The offset is never stored.
func WithHomeAdvantage(h float64) Option {
	return func(e *Engine) {
		if h >= 0 {
			e.homeAdvantage = h
		}
	}
}

// WithMeanReversion sets the season-boundary carry-over damping
// fraction f: start = prior*(1-f) + base*f. Zero disables reversion.
func WithMeanReversion(f float64) Option {
	return func(e *Engine) {
		if f >= 0 && f <= 1 {
			e.meanReversion = f
		}
	}
}

// Engine replays game logs into rating snapshots. An Engine is
// immutable after construction and safe for concurrent replays; all
// mutable state lives in the per-call State.
type Engine struct {
	kFactor       float64
	baseRating    float64
	homeAdvantage float64
	meanReversion float64
}

// NewEngine creates an Engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		kFactor:       defaultKFactor,
		baseRating:    defaultBaseRating,
		homeAdvantage: defaultHomeAdvantage,
		meanReversion: defaultMeanReversion,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BaseRating exposes the configured anchor rating.
func (e *Engine) BaseRating() float64 { return e.baseRating }

// ExpectedHome returns the expected home win probability for the given
// pre-game ratings, including the home-advantage offset.
func (e *Engine) ExpectedHome(homeRating, awayRating float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (awayRating-(homeRating+e.homeAdvantage))/eloScale))
}

// StartRating returns the season-start rating given an optional
// prior-season final rating.
func (e *Engine) StartRating(prior float64, hasPrior bool) float64 {
	if !hasPrior {
		return e.baseRating
	}
	return prior*(1-e.meanReversion) + e.baseRating*e.meanReversion
}

// Result is the complete output of one replay. A partial result is
// never produced: either the whole log was replayed or an error is
// returned and nothing should be persisted.
type Result struct {
	// Snapshots holds the season-final rating per observed team,
	// ordered by team id.
	Snapshots []model.RatingSnapshot

	// Checkpoints holds one row per (team, week) a team played,
	// ordered by (team id, week). These back week-cutoff feature
	// lookups.
	Checkpoints []model.RatingSnapshot

	// Processed counts games applied to the rating state.
	Processed int

	// Skipped lists game ids dropped because a team identifier could
	// not be canonicalized. Callers are expected to log these.
	Skipped []string

	// Duplicates lists game ids that appeared more than once in the
	// log; only the first occurrence was applied.
	Duplicates []string
}

// Replay replays every completed game of one league+season exactly
// once, in (date, week, id) order, and returns the full snapshot set.
// priors maps canonical team ids to their prior-season final ratings;
// those teams start mean-reverted, everyone else starts at the base
// rating. An empty or fully-incomplete log yields an empty Result, not
// an error: "no ratings yet" is a valid state.
func (e *Engine) Replay(ctx context.Context, league string, season int, games []model.Game, priors map[string]float64) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("replay not started: %w", err)
	}

	ordered := make([]model.Game, len(games))
	copy(ordered, games)
	model.SortChronological(ordered)

	state := NewState(e.baseRating)
	for canonical, prior := range priors {
		state.Seed(canonical, e.StartRating(prior, true))
	}

	registry := team.NewRegistry()
	seen := dedupe.New()
	res := Result{}

	type weekKey struct {
		team string
		week int
	}
	checkpoints := make(map[weekKey]model.RatingSnapshot)
	var lastDate time.Time

	for _, g := range ordered {
		if !g.Playable() {
			continue
		}
		if seen.SeenAndRecord(ctx, g.ID) {
			metrics.RecordGameDuplicate()
			res.Duplicates = append(res.Duplicates, g.ID)
			continue
		}

		home := registry.Observe(g.HomeTeamID, league)
		away := registry.Observe(g.AwayTeamID, league)
		if home == "" || away == "" {
			metrics.RecordGameSkipped()
			res.Skipped = append(res.Skipped, g.ID)
			continue
		}

		rHome := state.Rating(home)
		rAway := state.Rating(away)

		eHome := e.ExpectedHome(rHome, rAway)
		aHome, aAway := outcome(g)

		state.Apply(home, e.kFactor*(aHome-eHome))
		state.Apply(away, e.kFactor*(aAway-(1-eHome)))

		lastDate = g.Date
		res.Processed++
		metrics.RecordGameProcessed()

		for _, id := range []string{home, away} {
			checkpoints[weekKey{team: id, week: g.Week}] = model.RatingSnapshot{
				League:     league,
				Season:     season,
				TeamID:     registry.Denormalize(id, league),
				Week:       g.Week,
				Rating:     state.Rating(id),
				GamesCount: state.Games(id),
				AsOfDate:   g.Date,
				Kind:       model.KindElo,
			}
		}
	}

	// Nothing applied: no snapshots to build, but the skip and
	// duplicate reports still stand.
	if res.Processed == 0 {
		return res, nil
	}

	lastWeek := make(map[string]int)
	for _, cp := range checkpoints {
		res.Checkpoints = append(res.Checkpoints, cp)
		if cp.Week >= lastWeek[cp.TeamID] {
			lastWeek[cp.TeamID] = cp.Week
		}
	}
	sort.Slice(res.Checkpoints, func(i, j int) bool {
		if res.Checkpoints[i].TeamID != res.Checkpoints[j].TeamID {
			return res.Checkpoints[i].TeamID < res.Checkpoints[j].TeamID
		}
		return res.Checkpoints[i].Week < res.Checkpoints[j].Week
	})

	// Season-final snapshot for every team the replay touched, not just
	// participants of the final game. Teams seeded from priors that
	// never played this season get no snapshot.
	for _, id := range state.Teams() {
		if state.Games(id) == 0 {
			continue
		}
		persistedID := registry.Denormalize(id, league)
		res.Snapshots = append(res.Snapshots, model.RatingSnapshot{
			League:     league,
			Season:     season,
			TeamID:     persistedID,
			Week:       lastWeek[persistedID],
			Rating:     state.Rating(id),
			GamesCount: state.Games(id),
			AsOfDate:   lastDate,
			Kind:       model.KindElo,
		})
	}
	sort.Slice(res.Snapshots, func(i, j int) bool {
		return res.Snapshots[i].TeamID < res.Snapshots[j].TeamID
	})

	return res, nil
}

// outcome maps a final score to actual outcome values: 1/0 for a
// decision, 0.5/0.5 for a tie.
func outcome(g model.Game) (home, away float64) {
	switch margin := g.HomeMargin(); {
	case margin > 0:
		return 1.0, 0.0
	case margin < 0:
		return 0.0, 1.0
	default:
		return 0.5, 0.5
	}
}
