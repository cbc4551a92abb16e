// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() defaults and Load(ctx) for layered loading.
// - Every effect-bearing rating parameter is an explicit field here;
//   call sites never bake in their own defaults.
package config

import "runtime"

// Rating parameter defaults. These anchor the Elo replay and the
// feature derivation; see the rating and feature packages for how
// each one is applied.
const (
	DefaultKFactor             = 20.0
	DefaultBaseRating          = 1500.0
	DefaultHomeAdvantageElo    = 55.0
	DefaultMeanReversionFactor = 0.33
	DefaultRollingWindowSize   = 8
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// DBDriver selects the SQL backend: "sqlite", "postgres", or
	// "memory" for an ephemeral in-process store.
	DBDriver string `koanf:"db_driver"`

	// DBDSN is the driver-specific data source name.
	DBDSN string `koanf:"db_dsn"`

	// KFactor is the maximum rating points exchanged per game.
	KFactor float64 `koanf:"k_factor"`

	// BaseRating anchors season starts and unseen teams.
	BaseRating float64 `koanf:"base_rating"`

	// HomeAdvantageElo is added to the home rating only when computing
	// the expected outcome; it is never stored.
	HomeAdvantageElo float64 `koanf:"home_advantage_elo"`

	// MeanReversionFactor damps prior-season carry-over at season
	// boundaries: start = prior*(1-f) + base*f.
	MeanReversionFactor float64 `koanf:"mean_reversion_factor"`

	// RollingWindowSize bounds the rolling form statistic.
	RollingWindowSize int `koanf:"rolling_window_size"`

	// ReplayQueueSize bounds the replay job queue.
	ReplayQueueSize int `koanf:"replay_queue_size"`

	// ReplayWorkerCount sets the number of replay workers. Replays for
	// distinct league+season pairs are independent; games within one
	// replay are always applied sequentially.
	ReplayWorkerCount int `koanf:"replay_worker_count"`

	// MaxRankingLimit caps GET /rankings?limit.
	MaxRankingLimit int `koanf:"max_ranking_limit"`

	// IndicatorLeague is the league whose games get league_indicator=1.0.
	IndicatorLeague string `koanf:"indicator_league"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8090",
		DBDriver:            "sqlite",
		DBDSN:               "data/gridiron.db",
		KFactor:             DefaultKFactor,
		BaseRating:          DefaultBaseRating,
		HomeAdvantageElo:    DefaultHomeAdvantageElo,
		MeanReversionFactor: DefaultMeanReversionFactor,
		RollingWindowSize:   DefaultRollingWindowSize,
		ReplayQueueSize:     1024,
		ReplayWorkerCount:   runtime.NumCPU(),
		MaxRankingLimit:     100,
		IndicatorLeague:     "NFL",
	}
}
