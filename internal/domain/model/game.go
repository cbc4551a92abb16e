// Package model contains domain models passed between layers.
package model

import (
	"sort"
	"time"
)

// Game represents one scheduled or completed game. Completed games are
// immutable: once Completed is true both scores are present and the
// record never changes.
type Game struct {
	ID          string
	League      string
	Season      int
	Week        int // season-relative; 0 is a pre-season placeholder
	Date        time.Time
	HomeTeamID  string
	AwayTeamID  string
	HomeScore   *int
	AwayScore   *int
	Completed   bool
	NeutralSite bool
}

// Playable reports whether the game can be applied to a rating replay.
func (g Game) Playable() bool {
	return g.Completed && g.HomeScore != nil && g.AwayScore != nil
}

// HomeMargin returns home score minus away score. Call only on
// playable games.
func (g Game) HomeMargin() int {
	return *g.HomeScore - *g.AwayScore
}

// SortChronological orders games by (date, week), tie-broken by game id.
// This is the only valid processing order for a replay; the id tie-break
// keeps intra-day ordering stable across runs.
func SortChronological(games []Game) {
	sort.SliceStable(games, func(i, j int) bool {
		if !games[i].Date.Equal(games[j].Date) {
			return games[i].Date.Before(games[j].Date)
		}
		if games[i].Week != games[j].Week {
			return games[i].Week < games[j].Week
		}
		return games[i].ID < games[j].ID
	})
}
