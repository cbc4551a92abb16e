package rating

import (
	"sort"
	"time"

	"github.com/okian/gridiron/internal/domain/model"
)

// SRS computes the simplified strength-of-schedule rating: each team's
// whole-season average point differential.
//
// This statistic reads the entire season at once and is therefore NOT
// leakage-safe. It is kept as an exploratory signal only and must never
// be substituted into causal code paths; the feature composer rejects
// model.KindSRS outright.
func SRS(league string, season int, games []model.Game) []model.RatingSnapshot {
	diffs := make(map[string]int)
	counts := make(map[string]int)
	weeks := make(map[string]int)
	var lastDate time.Time

	for _, g := range games {
		if !g.Playable() {
			continue
		}
		margin := g.HomeMargin()
		diffs[g.HomeTeamID] += margin
		diffs[g.AwayTeamID] -= margin
		counts[g.HomeTeamID]++
		counts[g.AwayTeamID]++
		for _, id := range []string{g.HomeTeamID, g.AwayTeamID} {
			if g.Week >= weeks[id] {
				weeks[id] = g.Week
			}
		}
		if g.Date.After(lastDate) {
			lastDate = g.Date
		}
	}

	out := make([]model.RatingSnapshot, 0, len(diffs))
	for id, diff := range diffs {
		out = append(out, model.RatingSnapshot{
			League:     league,
			Season:     season,
			TeamID:     id,
			Week:       weeks[id],
			Rating:     float64(diff) / float64(counts[id]),
			GamesCount: counts[id],
			AsOfDate:   lastDate,
			Kind:       model.KindSRS,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out
}
