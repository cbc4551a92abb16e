package rating

import "sort"

// State is the mutable rating table of exactly one replay. It is
// constructed per replay and threaded through every update; it is never
// shared between replays, so concurrent replays cannot interfere. Not
// safe for concurrent use - a replay is strictly sequential.
type State struct {
	base    float64
	ratings map[string]float64
	games   map[string]int
}

// NewState creates an empty State anchored at the given base rating.
func NewState(base float64) *State {
	return &State{
		base:    base,
		ratings: make(map[string]float64),
		games:   make(map[string]int),
	}
}

// Seed sets a team's starting rating without counting a game. Used for
// mean-reverted season carry-over.
func (s *State) Seed(teamID string, rating float64) {
	s.ratings[teamID] = rating
}

// Rating returns the team's current rating, or the base rating for a
// team not seen yet. Read-only.
func (s *State) Rating(teamID string) float64 {
	if r, ok := s.ratings[teamID]; ok {
		return r
	}
	return s.base
}

// Apply adds delta to the team's rating and increments its
// games-processed counter, initializing an unseen team at the base
// rating first.
func (s *State) Apply(teamID string, delta float64) {
	if _, ok := s.ratings[teamID]; !ok {
		s.ratings[teamID] = s.base
	}
	s.ratings[teamID] += delta
	s.games[teamID]++
}

// Games returns the team's games-processed count.
func (s *State) Games(teamID string) int {
	return s.games[teamID]
}

// Teams returns every seeded or observed team id, sorted for
// deterministic iteration.
func (s *State) Teams() []string {
	out := make([]string, 0, len(s.ratings))
	for id := range s.ratings {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
