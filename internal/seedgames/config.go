// Package seedgames generates synthetic season schedules and drives
// them through a running service instance.
package seedgames

import "time"

// Default generation parameters.
const (
	DefaultTeams     = 12
	DefaultWeeks     = 14
	DefaultSeasons   = 2
	DefaultLeague    = "NFL"
	DefaultBatchSize = 200
)

// Config controls schedule generation and submission.
type Config struct {
	BaseURL     string
	League      string
	StartSeason int
	Seasons     int
	Teams       int
	Weeks       int
	Seed        int64
	BatchSize   int
	Timeout     time.Duration
	Verbose     bool
}

// normalize fills zero values with defaults.
func (c *Config) normalize() {
	if c.League == "" {
		c.League = DefaultLeague
	}
	if c.Teams < 2 {
		c.Teams = DefaultTeams
	}
	if c.Weeks < 1 {
		c.Weeks = DefaultWeeks
	}
	if c.Seasons < 1 {
		c.Seasons = DefaultSeasons
	}
	if c.StartSeason <= 0 {
		c.StartSeason = time.Now().Year() - c.Seasons
	}
	if c.BatchSize < 1 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}
