package aggregate

import (
	"math"
	"time"

	"github.com/devpathway/challenge-engine/internal/types"
)

// Score bands for the course-level strength/improvement filters. Challenges
// scoring between the two bands appear in neither list.
const (
	strengthThreshold    = 80.0
	improvementThreshold = 70.0
)

// Course folds the challenge results present for one course into a
// CourseSummary. Absent challenges are not scored as zero: the average runs
// over present results only, while completion runs against the declared
// challenge count so unattempted work still depresses it.
func Course(courseID, courseName string, results []types.ChallengeResult, totalChallenges int, thresholds types.BadgeThresholds) types.CourseSummary {
	summary := types.CourseSummary{
		CourseID:         courseID,
		CourseName:       courseName,
		LastUpdated:      time.Now().UTC(),
		TotalChallenges:  totalChallenges,
		ChallengeResults: make([]types.ChallengeOutcome, 0, len(results)),
		SkillStrengths:   []string{},
		ImprovementAreas: []string{},
	}

	var scoreSum float64
	for _, r := range results {
		summary.ChallengeResults = append(summary.ChallengeResults, types.ChallengeOutcome{
			ChallengeID:   r.ChallengeID,
			ChallengeName: r.ChallengeName,
			Score:         r.TotalScore,
			Passed:        r.Passed,
		})
		scoreSum += r.TotalScore
		if r.Passed {
			summary.CompletedChallenges++
		}
		if r.TotalScore >= strengthThreshold {
			summary.SkillStrengths = append(summary.SkillStrengths, r.ChallengeName)
		} else if r.TotalScore < improvementThreshold {
			summary.ImprovementAreas = append(summary.ImprovementAreas, r.ChallengeName)
		}
	}

	if len(results) > 0 {
		summary.AverageScore = round1(scoreSum / float64(len(results)))
	}
	if totalChallenges > 0 {
		summary.CompletionPercentage = round1(float64(summary.CompletedChallenges) / float64(totalChallenges) * 100)
	}
	summary.BadgeLevel = ResolveBadge(summary.AverageScore, summary.CompletionPercentage, thresholds)
	return summary
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
