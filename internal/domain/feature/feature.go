// Package feature derives leakage-safe model features for games.
//
// Every value in a vector is computed from information dated strictly
// before the game being featurized. Two cutoff mechanisms exist:
// week-cutoff reads stored weekly snapshots and rolling form,
// date-cutoff replays ratings from scratch up to the game's date.
package feature

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/gridiron/internal/adapters/repository"
	"github.com/okian/gridiron/internal/domain/form"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/rating"
	"github.com/okian/gridiron/internal/domain/team"
	"github.com/okian/gridiron/pkg/metrics"
)

// Vector is a flat string-keyed feature mapping. The key set is fixed
// per cutoff mode and never varies game to game.
type Vector map[string]float64

// Feature keys, week-cutoff mode.
const (
	KeyRatingDiff         = "rating_diff"
	KeyHomeFieldAdvantage = "home_field_advantage"
	KeyPointDiffDiff      = "point_diff_diff"
	KeyLeagueIndicator    = "league_indicator"
)

// Feature keys unique to date-cutoff mode.
const (
	KeyHomeField = "home_field"
	KeySeason    = "season"
	KeyWeek      = "week"
)

// Metric labels for the two cutoff modes.
const (
	modeWeek = "week"
	modeDate = "date"
)

// DefaultIndicatorLeague is the league whose games carry a 1.0
// league indicator.
const DefaultIndicatorLeague = "NFL"

// Option applies a configuration option to the Composer.
type Option func(*Composer)

// WithEngine sets the rating engine used for date-cutoff replays.
func WithEngine(e *rating.Engine) Option {
	return func(c *Composer) {
		if e != nil {
			c.engine = e
		}
	}
}

// WithFormCalculator sets the rolling form calculator.
func WithFormCalculator(calc *form.Calculator) Option {
	return func(c *Composer) {
		if calc != nil {
			c.form = calc
		}
	}
}

// WithIndicatorLeague sets the league that produces a 1.0 indicator.
func WithIndicatorLeague(league string) Option {
	return func(c *Composer) {
		if league != "" {
			c.indicatorLeague = league
		}
	}
}

// Composer derives feature vectors from stored games, snapshots and
// weekly stats. Safe for concurrent use.
type Composer struct {
	games           repository.GameRepo
	ratings         repository.RatingStore
	engine          *rating.Engine
	form            *form.Calculator
	indicatorLeague string
}

// NewComposer creates a Composer over the given stores.
func NewComposer(games repository.GameRepo, ratings repository.RatingStore, opts ...Option) *Composer {
	c := &Composer{
		games:           games,
		ratings:         ratings,
		engine:          rating.NewEngine(),
		form:            form.NewCalculator(),
		indicatorLeague: DefaultIndicatorLeague,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ByWeek derives the training feature vector for a game using stored
// weekly snapshots at or before predictionWeek. A negative
// predictionWeek selects the default cutoff: the week before the game
// (0 for a week-1 game). Missing history degrades to defaulted values;
// only an unknown game id is an error.
func (c *Composer) ByWeek(ctx context.Context, gameID string, predictionWeek int) (Vector, error) {
	g, err := c.games.GameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("feature lookup: %w", err)
	}
	if predictionWeek < 0 {
		predictionWeek = g.Week - 1
		if predictionWeek < 0 {
			predictionWeek = 0
		}
	}

	homeRating, homeKnown, err := c.snapshotRating(ctx, g, g.HomeTeamID, predictionWeek)
	if err != nil {
		return nil, err
	}
	awayRating, awayKnown, err := c.snapshotRating(ctx, g, g.AwayTeamID, predictionWeek)
	if err != nil {
		return nil, err
	}

	ratingDiff := 0.0
	if homeKnown && awayKnown {
		ratingDiff = homeRating - awayRating
	}

	homeForm, err := c.rollingForm(ctx, g, g.HomeTeamID, predictionWeek)
	if err != nil {
		return nil, err
	}
	awayForm, err := c.rollingForm(ctx, g, g.AwayTeamID, predictionWeek)
	if err != nil {
		return nil, err
	}

	homeField := 1.0
	if g.NeutralSite {
		homeField = 0.0
	}
	indicator := 0.0
	if g.League == c.indicatorLeague {
		indicator = 1.0
	}

	metrics.RecordFeatureVector(modeWeek)
	return Vector{
		KeyRatingDiff:         ratingDiff,
		KeyHomeFieldAdvantage: homeField,
		// The only place an unknown differential is coerced to zero.
		KeyPointDiffDiff:   homeForm - awayForm,
		KeyLeagueIndicator: indicator,
	}, nil
}

// snapshotRating reads the team's most recent stored rating at or
// before cutoffWeek. A missing snapshot is reported as unknown, not an
// error.
func (c *Composer) snapshotRating(ctx context.Context, g model.Game, teamID string, cutoffWeek int) (float64, bool, error) {
	snap, err := c.ratings.LatestBefore(ctx, g.League, g.Season, teamID, cutoffWeek)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("rating lookup for %q: %w", teamID, err)
	}
	if snap.Kind != model.KindElo {
		return 0, false, fmt.Errorf("snapshot for %q is %q: %w", teamID, snap.Kind, ErrUnsupportedKind)
	}
	return snap.Rating, true, nil
}

// rollingForm returns the team's rolling mean point differential at or
// before cutoffWeek, or zero when no qualifying stats exist.
func (c *Composer) rollingForm(ctx context.Context, g model.Game, teamID string, cutoffWeek int) (float64, error) {
	stats, err := c.ratings.StatsThrough(ctx, g.League, g.Season, teamID, cutoffWeek, c.form.Window())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("form lookup for %q: %w", teamID, err)
	}
	mean, ok := c.form.Mean(stats, cutoffWeek)
	if !ok {
		return 0, nil
	}
	return mean, nil
}

// ByDate derives the live-prediction feature vector for a game by
// replaying ratings from scratch over the season's games dated
// strictly before asOf. A zero asOf uses the game's own date. The
// scratch replay seeds no priors, so season-boundary reversion and
// rolling form play no part in this mode.
func (c *Composer) ByDate(ctx context.Context, gameID string, asOf time.Time) (Vector, error) {
	g, err := c.games.GameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("feature lookup: %w", err)
	}
	if asOf.IsZero() || asOf.After(g.Date) {
		asOf = g.Date
	}

	season, err := c.games.GamesFor(ctx, g.League, g.Season)
	if err != nil {
		return nil, fmt.Errorf("game log for %s/%d: %w", g.League, g.Season, err)
	}

	var history []model.Game
	for _, h := range season {
		if h.Date.Before(asOf) {
			history = append(history, h)
		}
	}

	res, err := c.engine.Replay(ctx, g.League, g.Season, history, nil)
	if err != nil {
		return nil, fmt.Errorf("scratch replay: %w", err)
	}

	// Teams with no replayed history read the base rating; two
	// first-timers therefore diff to exactly zero. Snapshots carry
	// originally-seen ids, so the match is on canonical form.
	homeKey := team.Normalize(g.HomeTeamID, g.League)
	awayKey := team.Normalize(g.AwayTeamID, g.League)
	homeRating := c.engine.BaseRating()
	awayRating := c.engine.BaseRating()
	for _, s := range res.Snapshots {
		switch team.Normalize(s.TeamID, g.League) {
		case homeKey:
			homeRating = s.Rating
		case awayKey:
			awayRating = s.Rating
		}
	}

	metrics.RecordFeatureVector(modeDate)
	return Vector{
		KeyRatingDiff: homeRating - awayRating,
		KeyHomeField:  1.0,
		KeySeason:     float64(g.Season),
		KeyWeek:       float64(g.Week),
	}, nil
}
