package seedgames

import (
	"context"
	"fmt"
	"os"

	"github.com/okian/gridiron/pkg/logger"
)

// Run generates the configured schedule, submits it in batches,
// replays every season and prints the resulting rankings.
func Run(ctx context.Context, cfg Config) error {
	cfg.normalize()
	log := logger.Get().Named("seed-games")

	gen := NewGenerator(cfg)
	games := gen.Generate()
	log.Info(ctx, "generated schedule",
		logger.String("league", cfg.League),
		logger.Int("seasons", cfg.Seasons),
		logger.Int("teams", cfg.Teams),
		logger.Int("games", len(games)),
	)

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	for start := 0; start < len(games); start += cfg.BatchSize {
		end := start + cfg.BatchSize
		if end > len(games) {
			end = len(games)
		}
		if err := client.SubmitGames(ctx, games[start:end]); err != nil {
			return err
		}
		if cfg.Verbose {
			log.Info(ctx, "submitted batch",
				logger.Int("from", start), logger.Int("to", end))
		}
	}

	// Seasons replay oldest first so later seasons seed from priors.
	for s := 0; s < cfg.Seasons; s++ {
		season := cfg.StartSeason + s
		if err := client.TriggerReplay(ctx, cfg.League, season); err != nil {
			return err
		}
		log.Info(ctx, "season replayed",
			logger.String("league", cfg.League), logger.Int("season", season))
	}

	lastSeason := cfg.StartSeason + cfg.Seasons - 1
	rows, err := client.FetchRankings(ctx, cfg.League, lastSeason, cfg.Teams)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\n%s %d rankings\n", cfg.League, lastSeason)
	fmt.Fprintf(os.Stdout, "%-4s %-12s %8s %6s\n", "#", "team", "rating", "games")
	for i, row := range rows {
		fmt.Fprintf(os.Stdout, "%-4d %-12s %8.1f %6d\n", i+1, row.TeamID, row.Rating, row.GamesCount)
	}
	return nil
}
