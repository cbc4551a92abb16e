package model

import "time"

// RatingKind tags which rating system produced a value. It is selected
// once and passed as data; nothing resolves a kind by name at call sites.
type RatingKind string

const (
	// KindElo is the causal, replay-derived rating. The only kind the
	// feature composer accepts.
	KindElo RatingKind = "elo"

	// KindSRS is the whole-season average point differential. Not
	// leakage-safe; exploratory use only.
	KindSRS RatingKind = "srs"
)

// RatingSnapshot is one team's rating as of the end of a week. A full
// replay writes one row per (league, season, team, week) it observed;
// the max-week row per team is the season-final snapshot.
type RatingSnapshot struct {
	League     string
	Season     int
	TeamID     string // persistence-facing (original) identifier
	Week       int
	Rating     float64
	GamesCount int
	AsOfDate   time.Time
	Kind       RatingKind
}

// TeamWeekStat is a materialized per-week team statistic, the only
// input the rolling form statistic reads.
type TeamWeekStat struct {
	League        string
	Season        int
	TeamID        string
	Week          int
	PointsFor     int
	PointsAgainst int
	PointDiff     int
}

// ReplayJob identifies one independent unit of replay work.
type ReplayJob struct {
	League string
	Season int
}
