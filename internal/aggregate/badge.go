// Package aggregate rolls per-challenge results up into course, pathway,
// and progress summaries. All rollups are full recomputations; nothing in
// this package merges with previous runs.
package aggregate

import "github.com/devpathway/challenge-engine/internal/types"

// ResolveBadge walks the tiers gold, silver, bronze and returns the first
// whose score and completion conditions both hold. Order matters: a learner
// meeting gold must never be handed silver because silver also matches.
func ResolveBadge(score, completion float64, thresholds types.BadgeThresholds) types.BadgeLevel {
	tiers := []struct {
		level types.BadgeLevel
		tier  types.BadgeTier
	}{
		{types.BadgeGold, thresholds.Gold},
		{types.BadgeSilver, thresholds.Silver},
		{types.BadgeBronze, thresholds.Bronze},
	}
	for _, t := range tiers {
		if score >= t.tier.MinScore && completion >= t.tier.MinCompletion {
			return t.level
		}
	}
	return types.BadgeNone
}
