package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/devpathway/challenge-engine/internal/types"
)

// playwrightStats is the tally block of the browser runner's JSON summary.
type playwrightStats struct {
	Expected   int `json:"expected"`
	Unexpected int `json:"unexpected"`
	Skipped    int `json:"skipped"`
	Flaky      int `json:"flaky"`
}

// playwrightSummary wraps the runner's top-level JSON report.
type playwrightSummary struct {
	Stats playwrightStats `json:"stats"`
}

var (
	portInUseRe      = regexp.MustCompile(`(?i)already used|EADDRINUSE|port.* in use|port.*is in use`)
	browserMissingRe = regexp.MustCompile(`(?i)executable doesn't exist|browserType\.launch|please run.*playwright install`)
)

// alternatePorts is the bounded retry list tried after the default port
// turns out to be occupied.
var alternatePorts = []int{5175, 5176, 5177, 5178, 5179, 5180}

// E2EAdapter drives the browser test runner against the packaged app. A
// port conflict with another local process is the one transient failure
// worth retrying; each retry starts a fresh runner on the next port.
type E2EAdapter struct {
	runner  CommandRunner
	timeout time.Duration
}

// NewE2EAdapter creates the adapter with the production runner.
func NewE2EAdapter() *E2EAdapter {
	return &E2EAdapter{runner: ExecRunner, timeout: DefaultToolTimeout}
}

// specFileName maps a challenge id like "03-counter" to its browser suite.
func specFileName(challengeID string) string {
	num := challengeID
	if i := strings.Index(challengeID, "-"); i > 0 {
		num = challengeID[:i]
	}
	return fmt.Sprintf("challenge-%s.spec.ts", num)
}

// Run executes the browser suite, retrying on alternate ports when the app
// port is occupied.
func (a *E2EAdapter) Run(ctx context.Context, meta types.ChallengeMetadata, projectDir string) types.SignalResult {
	specFile := filepath.Join("e2e", specFileName(meta.ID))
	if _, err := os.Stat(filepath.Join(projectDir, specFile)); err != nil {
		return types.Errored(fmt.Sprintf("e2e spec not found: %s", specFile))
	}

	// First attempt on the runner's default port, then the alternates.
	_, result, done := a.attempt(ctx, projectDir, specFile, 0)
	if done {
		return result
	}
	for _, port := range alternatePorts {
		_, result, done = a.attempt(ctx, projectDir, specFile, port)
		if done {
			return result
		}
	}

	return types.Errored("e2e run failed: app port in use on all candidate ports")
}

// attempt runs the suite once. done=false means the specific port-in-use
// signature was seen and the caller should retry on the next port; any
// other outcome, success or failure, is final.
func (a *E2EAdapter) attempt(ctx context.Context, projectDir, specFile string, port int) (string, types.SignalResult, bool) {
	runCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	env := append(os.Environ(), "CI=1")
	if port > 0 {
		env = append(env, fmt.Sprintf("PLAYWRIGHT_APP_PORT=%d", port))
	}

	output, runErr := a.runner(runCtx, projectDir, env,
		"npx", "playwright", "test", specFile, "--reporter=json")

	if runCtx.Err() == context.DeadlineExceeded {
		return output, types.Errored(fmt.Sprintf("e2e run timed out after %s", a.timeout)), true
	}

	stats, ok := parseE2EStats(output)
	if ok {
		total := stats.Expected + stats.Unexpected + stats.Flaky
		score := 0.0
		if total > 0 {
			score = float64(stats.Expected) / float64(total) * 100
		}
		return output, types.SignalResult{
			Score:       round1(clampScore(score)),
			Passed:      stats.Unexpected == 0 && total > 0,
			TotalTests:  total,
			PassedTests: stats.Expected,
			FailedTests: stats.Unexpected,
			Details: map[string]any{
				"expected":   stats.Expected,
				"unexpected": stats.Unexpected,
				"skipped":    stats.Skipped,
				"flaky":      stats.Flaky,
			},
		}, true
	}

	if portInUseRe.MatchString(output) {
		return output, types.SignalResult{}, false
	}
	if browserMissingRe.MatchString(output) {
		return output, types.Errored("browser binaries missing; run 'npx playwright install' and retry"), true
	}
	if runErr != nil {
		return output, types.Errored(fmt.Sprintf("e2e run failed: %v", runErr)), true
	}
	return output, types.Errored("could not parse e2e runner output"), true
}

// parseE2EStats pulls the stats tally out of possibly prefixed output.
func parseE2EStats(output string) (playwrightStats, bool) {
	if span, ok := jsonObjectWithKey(output, "stats"); ok {
		var summary playwrightSummary
		if err := json.Unmarshal([]byte(span), &summary); err == nil {
			return summary.Stats, true
		}
	}
	// Some reporter configurations emit the tally object bare.
	if span, ok := jsonObjectWithKey(output, "unexpected"); ok {
		var stats playwrightStats
		if err := json.Unmarshal([]byte(span), &stats); err == nil {
			return stats, true
		}
	}
	return playwrightStats{}, false
}
