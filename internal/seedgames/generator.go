package seedgames

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gridiron/internal/domain/model"
)

// Score generation ranges. Scores look like football scores without
// modeling drives: a base plus a few scoring events.
const (
	minScore        = 0
	scoreEvents     = 6
	scoreEventValue = 8
	homeBias        = 0.55
)

// Generator produces deterministic synthetic schedules for a fixed
// seed.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// NewGenerator creates a Generator. A zero seed derives one from the
// clock; any other seed reproduces the same schedule.
func NewGenerator(cfg Config) *Generator {
	cfg.normalize()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// teamIDs returns league-prefixed team identifiers, the raw form the
// service normalizes on ingest.
func (g *Generator) teamIDs() []string {
	ids := make([]string, g.cfg.Teams)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s_T%02d", g.cfg.League, i+1)
	}
	return ids
}

// Generate builds the full multi-season game list in chronological
// order. Every generated game is completed; each week pairs the teams
// off in a shuffled order, so a team plays at most once per week.
func (g *Generator) Generate() []model.Game {
	var games []model.Game
	teams := g.teamIDs()

	for s := 0; s < g.cfg.Seasons; s++ {
		season := g.cfg.StartSeason + s
		opening := time.Date(season, 9, 1, 17, 0, 0, 0, time.UTC)

		for week := 1; week <= g.cfg.Weeks; week++ {
			order := g.rng.Perm(len(teams))
			date := opening.AddDate(0, 0, (week-1)*7)

			for i := 0; i+1 < len(order); i += 2 {
				home, away := teams[order[i]], teams[order[i+1]]
				hs, as := g.score(true), g.score(false)
				games = append(games, model.Game{
					ID:         uuid.New().String(),
					League:     g.cfg.League,
					Season:     season,
					Week:       week,
					Date:       date,
					HomeTeamID: home,
					AwayTeamID: away,
					HomeScore:  &hs,
					AwayScore:  &as,
					Completed:  true,
				})
			}
		}
	}
	return games
}

// score rolls a handful of scoring events; the home side converts
// slightly more often.
func (g *Generator) score(home bool) int {
	chance := 1 - homeBias
	if home {
		chance = homeBias
	}
	total := minScore
	for i := 0; i < scoreEvents; i++ {
		if g.rng.Float64() < chance {
			total += g.rng.Intn(scoreEventValue)
		}
	}
	return total
}
