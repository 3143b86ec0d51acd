package review

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpathway/challenge-engine/internal/config"
	"github.com/devpathway/challenge-engine/internal/monitoring"
	"github.com/devpathway/challenge-engine/internal/types"
)

func writeFixture(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fixturePathway builds a minimal checkout whose challenge has no test
// suite, no lint requirement, and no e2e spec, so a review runs without
// spawning any external tool.
func fixturePathway(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFixture(t, root, "pathway-review/pathway-config.json", `{
  "pathwayName": "Frontend",
  "pathwayVersion": "1.0",
  "courses": [{"id": "react-basics", "name": "React Basics"}]
}`)
	writeFixture(t, root, "courses/react-basics/course-config.json", `{
  "courseId": "react-basics",
  "courseName": "React Basics",
  "challenges": [{"id": "01-intro", "name": "Intro"}]
}`)
	writeFixture(t, root, "courses/react-basics/project/challenges/01-intro/metadata.json", `{
  "id": "01-intro",
  "name": "Intro",
  "filesToCheck": ["src/Intro.tsx"],
  "patternsRequired": []
}`)
	writeFixture(t, root, "courses/react-basics/project/src/Intro.tsx",
		"export const Intro = () => <p>hi</p>;\n")

	return root
}

func newTestEngine(root string) *Engine {
	return NewEngine(config.Layout{Root: root}, monitoring.NewLogger(), monitoring.NewMetrics())
}

func TestReviewCourseSurvivesUnrunnableSignals(t *testing.T) {
	root := fixturePathway(t)
	t.Setenv("GROQ_API_KEY", "")
	engine := newTestEngine(root)

	summary, results, err := engine.ReviewCourse(context.Background(), "react-basics", "")
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.Equal(t, "01-intro", result.ChallengeID)

	// Every signal reported in, runnable or not.
	require.Len(t, result.Signals, len(types.SignalOrder))
	assert.NotEmpty(t, result.Signals[types.SignalFunctionalTests].Error)
	assert.NotEmpty(t, result.Signals[types.SignalE2ETests].Error)
	assert.NotEmpty(t, result.Signals[types.SignalAIReview].Error)

	// Vacuous-pass signals at 100, the rest at 0, default weights:
	// 100*(0.20+0.15+0.10) out of weight 1.0.
	assert.InDelta(t, 45.0, result.TotalScore, 0.001)
	assert.False(t, result.Passed)
	assert.Len(t, result.Errors, 3)

	assert.Equal(t, 0, summary.CompletedChallenges)
	assert.Equal(t, 1, summary.TotalChallenges)

	// Artifacts landed on disk.
	for _, artifact := range []string{"challenge-results.json", "course-summary.json", "ai-feedback.json"} {
		_, err := os.Stat(filepath.Join(root, "courses/react-basics/results", artifact))
		assert.NoError(t, err, artifact)
	}
}

func TestReviewCourseBrokenMetadataContinues(t *testing.T) {
	root := fixturePathway(t)
	t.Setenv("GROQ_API_KEY", "")
	writeFixture(t, root, "courses/react-basics/course-config.json", `{
  "courseId": "react-basics",
  "courseName": "React Basics",
  "challenges": [
    {"id": "00-ghost", "name": "Ghost"},
    {"id": "01-intro", "name": "Intro"}
  ]
}`)
	engine := newTestEngine(root)

	_, results, err := engine.ReviewCourse(context.Background(), "react-basics", "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Contains(t, results[0].Errors[0], "metadata")
	assert.Equal(t, "01-intro", results[1].ChallengeID)
}

func TestReviewPathwayWritesAggregates(t *testing.T) {
	root := fixturePathway(t)
	t.Setenv("GROQ_API_KEY", "")
	engine := newTestEngine(root)

	pathway, err := engine.ReviewPathway(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Frontend", pathway.PathwayName)
	assert.Equal(t, 1, pathway.TotalChallenges)
	assert.Equal(t, types.BadgeNone, pathway.BadgeLevel)

	_, err = os.Stat(filepath.Join(root, "pathway-review", "pathway-summary.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "learner-results", "progress.json"))
	assert.NoError(t, err)

	progress, err := engine.Store().ReadProgress()
	require.NoError(t, err)
	assert.Contains(t, progress.Courses, "react-basics")
}

func TestSingleChallengeRunMergesWithStoredResults(t *testing.T) {
	root := fixturePathway(t)
	t.Setenv("GROQ_API_KEY", "")
	engine := newTestEngine(root)

	// Seed stored results with a second challenge the fixture can't review.
	previous := []types.ChallengeResult{
		{ChallengeID: "01-intro", ChallengeName: "Intro", TotalScore: 10},
		{ChallengeID: "99-legacy", ChallengeName: "Legacy", TotalScore: 80, Passed: true},
	}
	require.NoError(t, engine.Store().WriteChallengeResults("react-basics", previous))

	_, results, err := engine.ReviewCourse(context.Background(), "react-basics", "01-intro")
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The fresh run replaced 01-intro in place, keeping the untouched one.
	assert.Equal(t, "01-intro", results[0].ChallengeID)
	assert.NotEqual(t, 10.0, results[0].TotalScore)
	assert.Equal(t, "99-legacy", results[1].ChallengeID)
}

func TestMergeResults(t *testing.T) {
	previous := []types.ChallengeResult{
		{ChallengeID: "a", TotalScore: 1},
		{ChallengeID: "b", TotalScore: 2},
	}
	fresh := []types.ChallengeResult{
		{ChallengeID: "b", TotalScore: 20},
		{ChallengeID: "c", TotalScore: 30},
	}

	merged := mergeResults(previous, fresh)
	require.Len(t, merged, 3)
	assert.Equal(t, "a", merged[0].ChallengeID)
	assert.Equal(t, 20.0, merged[1].TotalScore)
	assert.Equal(t, "c", merged[2].ChallengeID)
}

func TestHintFor(t *testing.T) {
	assert.Empty(t, hintFor(""))
	assert.Contains(t, hintFor("browser binaries missing; run 'npx playwright install'"), "playwright install")
	assert.Contains(t, hintFor("no API key found"), "GROQ_API_KEY")
	assert.Empty(t, hintFor("some unrelated failure"))
}
