package aggregate

import (
	"time"

	"github.com/devpathway/challenge-engine/internal/types"
)

// CourseRecord pairs a course summary with the challenge results that
// produced it, for rollups that need both granularities.
type CourseRecord struct {
	Summary types.CourseSummary
	Results []types.ChallengeResult
}

// BuildProgress flattens the pathway and course state into the snapshot
// the dashboard polls. Rewritten wholesale on every run.
func BuildProgress(pathway types.PathwaySummary, records []CourseRecord) types.Progress {
	progress := types.Progress{
		LastUpdated: time.Now().UTC(),
		Pathway: types.PathwayProgress{
			Name:                 pathway.PathwayName,
			Version:              pathway.Version,
			OverallScore:         pathway.OverallScore,
			CompletionPercentage: pathway.CompletionPercentage,
			BadgeLevel:           pathway.BadgeLevel,
			TotalChallenges:      pathway.TotalChallenges,
			CompletedChallenges:  pathway.CompletedChallenges,
		},
		Courses: make(map[string]types.CourseProgress, len(records)),
	}

	for _, record := range records {
		s := record.Summary
		course := types.CourseProgress{
			CourseID:             s.CourseID,
			CourseName:           s.CourseName,
			AverageScore:         s.AverageScore,
			CompletionPercentage: s.CompletionPercentage,
			BadgeLevel:           s.BadgeLevel,
			TotalChallenges:      s.TotalChallenges,
			CompletedChallenges:  s.CompletedChallenges,
			Challenges:           make(map[string]types.ChallengeProgress, len(record.Results)),
		}
		for _, r := range record.Results {
			ts := r.Timestamp
			scores := make(map[string]float64, len(r.Signals))
			for name, sig := range r.Signals {
				scores[name] = sig.Score
			}
			course.Challenges[r.ChallengeID] = types.ChallengeProgress{
				ChallengeID:   r.ChallengeID,
				ChallengeName: r.ChallengeName,
				Passed:        r.Passed,
				Score:         r.TotalScore,
				LastRun:       &ts,
				Scores:        scores,
			}
		}
		progress.Courses[s.CourseID] = course
	}
	return progress
}
