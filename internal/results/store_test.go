package results

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpathway/challenge-engine/internal/config"
	"github.com/devpathway/challenge-engine/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(config.Layout{Root: t.TempDir()})
}

func TestChallengeResultsRoundTrip(t *testing.T) {
	store := newTestStore(t)

	results := []types.ChallengeResult{
		{
			ChallengeID:   "01-intro",
			ChallengeName: "Intro",
			Timestamp:     time.Now().UTC().Truncate(time.Second),
			TotalScore:    88.5,
			Passed:        true,
			Signals: map[string]types.SignalResult{
				types.SignalFunctionalTests: {Score: 90, Passed: true},
			},
			Errors: []string{},
		},
	}

	require.NoError(t, store.WriteChallengeResults("react-basics", results))

	loaded, err := store.ReadChallengeResults("react-basics")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "01-intro", loaded[0].ChallengeID)
	assert.InDelta(t, 88.5, loaded[0].TotalScore, 0.001)
	assert.InDelta(t, 90.0, loaded[0].Signals[types.SignalFunctionalTests].Score, 0.001)
}

func TestReadChallengeResultsMissingIsEmpty(t *testing.T) {
	store := newTestStore(t)

	results, err := store.ReadChallengeResults("never-reviewed")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCourseSummaryRoundTrip(t *testing.T) {
	store := newTestStore(t)

	summary := types.CourseSummary{
		CourseID:     "react-basics",
		CourseName:   "React Basics",
		AverageScore: 78.3,
		BadgeLevel:   types.BadgeBronze,
	}
	require.NoError(t, store.WriteCourseSummary("react-basics", summary))

	loaded, err := store.ReadCourseSummary("react-basics")
	require.NoError(t, err)
	assert.Equal(t, types.BadgeBronze, loaded.BadgeLevel)
}

func TestCourseSummaryMissingIsError(t *testing.T) {
	store := newTestStore(t)
	_, err := store.ReadCourseSummary("nope")
	assert.Error(t, err)
}

func TestWriteOverwritesWholesale(t *testing.T) {
	store := newTestStore(t)

	first := []types.ChallengeResult{
		{ChallengeID: "01-intro"},
		{ChallengeID: "02-props"},
	}
	require.NoError(t, store.WriteChallengeResults("c1", first))

	second := []types.ChallengeResult{{ChallengeID: "03-state"}}
	require.NoError(t, store.WriteChallengeResults("c1", second))

	loaded, err := store.ReadChallengeResults("c1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "03-state", loaded[0].ChallengeID)
}

func TestAIFeedbackRoundTrip(t *testing.T) {
	store := newTestStore(t)

	entries := []types.AIFeedbackEntry{
		{ChallengeID: "01-intro", ChallengeName: "Intro", AIReview: map[string]any{"readability": 80.0}},
	}
	require.NoError(t, store.WriteAIFeedback("c1", entries))

	loaded, err := store.ReadAIFeedback("c1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	payload, ok := loaded[0].AIReview.(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 80.0, payload["readability"].(float64), 0.001)
}

func TestProgressAndPathwayRoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.WritePathwaySummary(types.PathwaySummary{
		PathwayName:  "Frontend",
		OverallScore: 81,
		BadgeLevel:   types.BadgeSilver,
	}))
	require.NoError(t, store.WriteProgress(types.Progress{
		LastUpdated: time.Now().UTC(),
		Pathway:     types.PathwayProgress{Name: "Frontend"},
		Courses:     map[string]types.CourseProgress{},
	}))

	pathway, err := store.ReadPathwaySummary()
	require.NoError(t, err)
	assert.Equal(t, types.BadgeSilver, pathway.BadgeLevel)

	progress, err := store.ReadProgress()
	require.NoError(t, err)
	assert.Equal(t, "Frontend", progress.Pathway.Name)

	fresh, info := store.ProgressFresh()
	assert.True(t, fresh)
	assert.NotNil(t, info)
}

func TestProgressFreshWhenMissing(t *testing.T) {
	store := newTestStore(t)
	fresh, info := store.ProgressFresh()
	assert.False(t, fresh)
	assert.Nil(t, info)
}
