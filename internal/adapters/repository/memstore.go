package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/gridiron/internal/domain/form"
	"github.com/okian/gridiron/internal/domain/model"
)

// MemStore is an in-memory Store used for tests and ephemeral runs.
type MemStore struct {
	mu      sync.RWMutex
	games   map[string]model.Game
	ratings map[string][]model.RatingSnapshot // league/season -> rows
	stats   map[string][]model.TeamWeekStat   // league/season -> rows
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		games:   make(map[string]model.Game),
		ratings: make(map[string][]model.RatingSnapshot),
		stats:   make(map[string][]model.TeamWeekStat),
	}
}

func seasonKey(league string, season int) string {
	return fmt.Sprintf("%s/%d", league, season)
}

// InsertGames upserts games and rematerializes weekly stats for every
// league+season in the batch.
func (m *MemStore) InsertGames(_ context.Context, games []model.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	touched := make(map[string]model.ReplayJob)
	for _, g := range games {
		m.games[g.ID] = g
		touched[seasonKey(g.League, g.Season)] = model.ReplayJob{League: g.League, Season: g.Season}
	}

	for key, scope := range touched {
		var scoped []model.Game
		for _, g := range m.games {
			if g.League == scope.League && g.Season == scope.Season {
				scoped = append(scoped, g)
			}
		}
		m.stats[key] = form.Materialize(scoped)
	}
	return nil
}

// GamesFor returns the ordered game log for one league+season.
func (m *MemStore) GamesFor(_ context.Context, league string, season int) ([]model.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Game
	for _, g := range m.games {
		if g.League == league && g.Season == season {
			out = append(out, g)
		}
	}
	model.SortChronological(out)
	return out, nil
}

// GameByID returns one game or ErrNotFound.
func (m *MemStore) GameByID(_ context.Context, id string) (model.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.games[id]
	if !ok {
		return model.Game{}, fmt.Errorf("game %q: %w", id, ErrNotFound)
	}
	return g, nil
}

// UpsertSeason atomically replaces a season's rows of the given kind.
func (m *MemStore) UpsertSeason(_ context.Context, league string, season int, rows []model.RatingSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := seasonKey(league, season)
	var kind model.RatingKind
	if len(rows) > 0 {
		kind = rows[0].Kind
	}

	kept := m.ratings[key][:0:0]
	for _, r := range m.ratings[key] {
		if r.Kind != kind {
			kept = append(kept, r)
		}
	}
	kept = append(kept, rows...)
	m.ratings[key] = kept
	return nil
}

// LatestBefore returns the most recent snapshot at or before cutoffWeek.
func (m *MemStore) LatestBefore(_ context.Context, league string, season int, teamID string, cutoffWeek int) (model.RatingSnapshot, error) {
	if cutoffWeek < 0 {
		return model.RatingSnapshot{}, fmt.Errorf("cutoff week %d: %w", cutoffWeek, ErrInvalidCutoff)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var best model.RatingSnapshot
	found := false
	for _, r := range m.ratings[seasonKey(league, season)] {
		if r.TeamID != teamID || r.Kind != model.KindElo || r.Week > cutoffWeek {
			continue
		}
		if !found || r.Week > best.Week {
			best = r
			found = true
		}
	}
	if !found {
		return model.RatingSnapshot{}, fmt.Errorf("no snapshot for %s/%d team %q through week %d: %w",
			league, season, teamID, cutoffWeek, ErrNotFound)
	}
	return best, nil
}

// FinalSnapshots returns each team's max-week row, best rating first.
func (m *MemStore) FinalSnapshots(_ context.Context, league string, season int) ([]model.RatingSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byTeam := make(map[string]model.RatingSnapshot)
	for _, r := range m.ratings[seasonKey(league, season)] {
		if r.Kind != model.KindElo {
			continue
		}
		if cur, ok := byTeam[r.TeamID]; !ok || r.Week > cur.Week {
			byTeam[r.TeamID] = r
		}
	}

	out := make([]model.RatingSnapshot, 0, len(byTeam))
	for _, r := range byTeam {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out, nil
}

// StatsThrough returns up to limit stats rows at or before cutoffWeek,
// most recent first.
func (m *MemStore) StatsThrough(_ context.Context, league string, season int, teamID string, cutoffWeek, limit int) ([]model.TeamWeekStat, error) {
	if cutoffWeek < 0 {
		return nil, fmt.Errorf("cutoff week %d: %w", cutoffWeek, ErrInvalidCutoff)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.TeamWeekStat
	for _, s := range m.stats[seasonKey(league, season)] {
		if s.TeamID == teamID && s.Week <= cutoffWeek {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week > out[j].Week })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close satisfies Store.
func (m *MemStore) Close() error { return nil }
