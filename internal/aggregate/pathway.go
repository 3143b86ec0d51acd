package aggregate

import (
	"time"

	"github.com/devpathway/challenge-engine/internal/types"
)

// Pathway rolls course standings into the headline PathwaySummary.
//
// The overall score is a weight-normalized average of course scores; any
// course whose weight is zero or missing gets the uniform 1/N fallback.
// Completion is computed at the challenge-instance level across all
// courses rather than averaging per-course percentages, so a two-challenge
// course cannot distort the headline number the way an average of
// percentages would.
func Pathway(name, version string, standings []types.CourseStanding, weights []float64, thresholds types.BadgeThresholds) types.PathwaySummary {
	summary := types.PathwaySummary{
		PathwayName:      name,
		Version:          version,
		LastUpdated:      time.Now().UTC(),
		Courses:          standings,
		SkillStrengths:   []string{},
		ImprovementAreas: []string{},
	}
	if len(standings) == 0 {
		summary.BadgeLevel = types.BadgeNone
		return summary
	}

	uniform := 1.0 / float64(len(standings))
	var weightedSum, weightTotal float64
	for i, s := range standings {
		w := uniform
		if i < len(weights) && weights[i] > 0 {
			w = weights[i]
		}
		weightedSum += s.Score * w
		weightTotal += w

		summary.TotalChallenges += s.TotalChallenges
		summary.CompletedChallenges += s.CompletedChallenges
		summary.SkillStrengths = dedupAppend(summary.SkillStrengths, s.SkillStrengths)
		summary.ImprovementAreas = dedupAppend(summary.ImprovementAreas, s.ImprovementAreas)
	}

	if weightTotal > 0 {
		summary.OverallScore = round1(weightedSum / weightTotal)
	}
	if summary.TotalChallenges > 0 {
		summary.CompletionPercentage = round1(float64(summary.CompletedChallenges) / float64(summary.TotalChallenges) * 100)
	}
	summary.BadgeLevel = ResolveBadge(summary.OverallScore, summary.CompletionPercentage, thresholds)
	return summary
}

// Standing reduces a CourseSummary to the fields the pathway rollup reads.
func Standing(s types.CourseSummary) types.CourseStanding {
	return types.CourseStanding{
		CourseID:            s.CourseID,
		CourseName:          s.CourseName,
		Score:               s.AverageScore,
		Completion:          s.CompletionPercentage,
		BadgeLevel:          s.BadgeLevel,
		TotalChallenges:     s.TotalChallenges,
		CompletedChallenges: s.CompletedChallenges,
		SkillStrengths:      s.SkillStrengths,
		ImprovementAreas:    s.ImprovementAreas,
	}
}

// dedupAppend appends the items of add not already present in dst,
// preserving first-appearance order.
func dedupAppend(dst []string, add []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, s := range dst {
		seen[s] = struct{}{}
	}
	for _, s := range add {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		dst = append(dst, s)
	}
	return dst
}
