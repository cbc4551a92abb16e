// Package form computes the bounded-window rolling point-differential
// statistic.
package form

import (
	"sort"

	"github.com/okian/gridiron/internal/domain/model"
)

const defaultWindow = 8

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithWindow sets the maximum number of games averaged.
func WithWindow(n int) Option {
	return func(c *Calculator) {
		if n > 0 {
			c.window = n
		}
	}
}

// Calculator computes rolling form from materialized per-week stats.
type Calculator struct {
	window int
}

// NewCalculator creates a Calculator with configuration options.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{window: defaultWindow}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Window exposes the configured window size.
func (c *Calculator) Window() int { return c.window }

// Mean returns the average point differential over at most the last
// window stats rows at or before cutoffWeek. The boolean is false when
// no qualifying data exists; callers must not coerce that into zero
// here - that decision belongs to the feature composer.
func (c *Calculator) Mean(stats []model.TeamWeekStat, cutoffWeek int) (float64, bool) {
	qualifying := make([]model.TeamWeekStat, 0, len(stats))
	for _, s := range stats {
		if s.Week <= cutoffWeek {
			qualifying = append(qualifying, s)
		}
	}
	if len(qualifying) == 0 {
		return 0, false
	}

	sort.Slice(qualifying, func(i, j int) bool {
		return qualifying[i].Week > qualifying[j].Week
	})
	if len(qualifying) > c.window {
		qualifying = qualifying[:c.window]
	}

	sum := 0
	for _, s := range qualifying {
		sum += s.PointDiff
	}
	return float64(sum) / float64(len(qualifying)), true
}

// Materialize derives per-week team stats from completed games. One
// row per (team, week); a team playing twice in a week accumulates
// into the same row.
func Materialize(games []model.Game) []model.TeamWeekStat {
	type key struct {
		team string
		week int
	}
	rows := make(map[key]*model.TeamWeekStat)

	add := func(g model.Game, teamID string, pf, pa int) {
		k := key{team: teamID, week: g.Week}
		row, ok := rows[k]
		if !ok {
			row = &model.TeamWeekStat{
				League: g.League,
				Season: g.Season,
				TeamID: teamID,
				Week:   g.Week,
			}
			rows[k] = row
		}
		row.PointsFor += pf
		row.PointsAgainst += pa
		row.PointDiff += pf - pa
	}

	for _, g := range games {
		if !g.Playable() {
			continue
		}
		add(g, g.HomeTeamID, *g.HomeScore, *g.AwayScore)
		add(g, g.AwayTeamID, *g.AwayScore, *g.HomeScore)
	}

	out := make([]model.TeamWeekStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TeamID != out[j].TeamID {
			return out[i].TeamID < out[j].TeamID
		}
		return out[i].Week < out[j].Week
	})
	return out
}
