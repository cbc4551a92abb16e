package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/gridiron/internal/seedgames"
	"github.com/okian/gridiron/pkg/logger"
)

// Default run constants.
const (
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:8090", "Base URL of the service")
		league      = flag.String("league", seedgames.DefaultLeague, "League identifier")
		startSeason = flag.Int("start-season", 0, "First season to generate (default: derived from current year)")
		seasons     = flag.Int("seasons", seedgames.DefaultSeasons, "Number of consecutive seasons")
		teams       = flag.Int("teams", seedgames.DefaultTeams, "Number of teams in the league")
		weeks       = flag.Int("weeks", seedgames.DefaultWeeks, "Weeks per season")
		seed        = flag.Int64("seed", 0, "RNG seed; 0 derives one from the clock")
		batchSize   = flag.Int("batch", seedgames.DefaultBatchSize, "Games per submission batch")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose     = flag.Bool("verbose", false, "Log every submitted batch")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := seedgames.Config{
		BaseURL:     *baseURL,
		League:      *league,
		StartSeason: *startSeason,
		Seasons:     *seasons,
		Teams:       *teams,
		Weeks:       *weeks,
		Seed:        *seed,
		BatchSize:   *batchSize,
		Timeout:     *timeout,
		Verbose:     *verbose,
	}
	if err := seedgames.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "seed run failed", logger.Error(err))
		os.Exit(1)
	}
}
