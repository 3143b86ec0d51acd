package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devpathway/challenge-engine/internal/types"
)

// vitestSummary is the structured result summary the test runner prints
// with --reporter=json.
type vitestSummary struct {
	NumTotalTests  int             `json:"numTotalTests"`
	NumPassedTests int             `json:"numPassedTests"`
	NumFailedTests int             `json:"numFailedTests"`
	TestResults    json.RawMessage `json:"testResults"`
}

// FunctionalTestAdapter runs a challenge's associated test suite file and
// normalizes the runner's summary into a SignalResult.
type FunctionalTestAdapter struct {
	runner  CommandRunner
	timeout time.Duration
}

// NewFunctionalTestAdapter creates the adapter with the production runner.
func NewFunctionalTestAdapter() *FunctionalTestAdapter {
	return &FunctionalTestAdapter{runner: ExecRunner, timeout: DefaultToolTimeout}
}

// testFileName maps a challenge id like "03-counter" to its suite file.
func testFileName(challengeID string) string {
	num := challengeID
	if i := strings.Index(challengeID, "-"); i > 0 {
		num = challengeID[:i]
	}
	return fmt.Sprintf("challenge-%s.test.tsx", num)
}

// Run executes the suite and scores passed/total. A missing test file is a
// hard requirement-not-met (score 0 with error), not a skip.
func (a *FunctionalTestAdapter) Run(ctx context.Context, meta types.ChallengeMetadata, projectDir string) types.SignalResult {
	testFile := filepath.Join(projectDir, "tests", testFileName(meta.ID))
	if _, err := os.Stat(testFile); err != nil {
		return types.Errored(fmt.Sprintf("test file not found: %s", testFile))
	}

	runCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	output, runErr := a.runner(runCtx, projectDir, nil,
		"npm", "test", "--", testFile, "--run", "--reporter=json")

	if runCtx.Err() == context.DeadlineExceeded {
		return types.Errored(fmt.Sprintf("test run timed out after %s", a.timeout))
	}

	summary, ok := parseTestSummary(output)
	if !ok {
		if runErr != nil {
			return types.Errored(fmt.Sprintf("test run failed: %v", runErr))
		}
		return types.Errored("could not parse test runner output")
	}

	score := 0.0
	if summary.NumTotalTests > 0 {
		score = float64(summary.NumPassedTests) / float64(summary.NumTotalTests) * 100
	}

	result := types.SignalResult{
		Score:       round1(clampScore(score)),
		Passed:      summary.NumFailedTests == 0 && summary.NumTotalTests > 0,
		TotalTests:  summary.NumTotalTests,
		PassedTests: summary.NumPassedTests,
		FailedTests: summary.NumFailedTests,
		Details:     summary.TestResults,
	}
	if runErr != nil && summary.NumFailedTests > 0 {
		// Non-zero exit with a parsed summary just means failing tests.
		result.Passed = false
	}
	return result
}

// parseTestSummary extracts and decodes the runner's JSON summary from
// possibly prefixed output.
func parseTestSummary(output string) (vitestSummary, bool) {
	var summary vitestSummary

	span, ok := jsonObjectWithKey(output, "numTotalTests")
	if !ok {
		return summary, false
	}
	if err := json.Unmarshal([]byte(span), &summary); err != nil {
		return summary, false
	}
	return summary, true
}
