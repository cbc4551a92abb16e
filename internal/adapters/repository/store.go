// Package repository defines the game and rating storage contracts.
//
// The core never touches storage technology directly: it consumes a
// read-only chronological game supplier and emits complete snapshot
// sets to a rating store, both behind these narrow interfaces.
package repository

import (
	"context"

	"github.com/okian/gridiron/internal/domain/model"
)

// GameRepo supplies chronological game logs. Implementations return
// games already scoped to one league+season and ordered by
// (date, week, id); the core does no filtering of its own.
type GameRepo interface {
	// GamesFor returns the complete game log for one league+season.
	GamesFor(ctx context.Context, league string, season int) ([]model.Game, error)

	// GameByID returns a single game. Returns ErrNotFound for an
	// unknown identifier.
	GameByID(ctx context.Context, id string) (model.Game, error)

	// InsertGames upserts game records and rematerializes the per-week
	// team stats for every league+season present in the batch.
	InsertGames(ctx context.Context, games []model.Game) error
}

// RatingStore persists rating snapshots keyed by
// (league, season, team, week).
type RatingStore interface {
	// UpsertSeason atomically replaces a season's snapshot rows of the
	// given rows' kind. Re-running the same replay leaves exactly one
	// row per key; partial writes are never observable.
	UpsertSeason(ctx context.Context, league string, season int, rows []model.RatingSnapshot) error

	// LatestBefore returns the team's most recent snapshot at or
	// before cutoffWeek, falling back to the nearest earlier week.
	// Returns ErrNotFound when no qualifying snapshot exists.
	LatestBefore(ctx context.Context, league string, season int, teamID string, cutoffWeek int) (model.RatingSnapshot, error)

	// FinalSnapshots returns each team's max-week snapshot for a
	// season, ordered by rating descending.
	FinalSnapshots(ctx context.Context, league string, season int) ([]model.RatingSnapshot, error)

	// StatsThrough returns up to limit per-week stats rows for a team
	// at or before cutoffWeek, most recent first.
	StatsThrough(ctx context.Context, league string, season int, teamID string, cutoffWeek, limit int) ([]model.TeamWeekStat, error)
}

// Store bundles both sides plus lifecycle.
type Store interface {
	GameRepo
	RatingStore

	Close() error
}
