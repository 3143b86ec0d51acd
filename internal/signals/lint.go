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

// eslintFileReport is one entry of eslint's --format json output.
type eslintFileReport struct {
	FilePath     string `json:"filePath"`
	ErrorCount   int    `json:"errorCount"`
	WarningCount int    `json:"warningCount"`
	Messages     []struct {
		RuleID   string `json:"ruleId"`
		Severity int    `json:"severity"`
		Message  string `json:"message"`
		Line     int    `json:"line"`
	} `json:"messages"`
}

// LintAdapter runs the linter over a challenge's declared files and scores
// the aggregate diagnostics.
type LintAdapter struct {
	runner  CommandRunner
	timeout time.Duration
}

// NewLintAdapter creates the adapter with the production runner.
func NewLintAdapter() *LintAdapter {
	return &LintAdapter{runner: ExecRunner, timeout: DefaultToolTimeout}
}

// mentionsLint reports whether any code-quality requirement asks for linting.
func mentionsLint(reqs []string) bool {
	for _, r := range reqs {
		lower := strings.ToLower(r)
		if strings.Contains(lower, "lint") || strings.Contains(lower, "eslint") {
			return true
		}
	}
	return false
}

// Run lints the challenge's filesToCheck. A challenge whose requirements
// never mention linting passes with full credit, and a challenge whose
// declared files are all absent gets partial credit rather than a zero,
// because the functional signal already penalizes missing work.
func (a *LintAdapter) Run(ctx context.Context, meta types.ChallengeMetadata, projectDir string) types.SignalResult {
	if !mentionsLint(meta.Requirements.CodeQuality) {
		return types.SignalResult{
			Score:  100,
			Passed: true,
			Note:   "no lint requirement declared for this challenge",
		}
	}

	var targets []string
	for _, f := range meta.FilesToCheck {
		path := filepath.Join(projectDir, f)
		if _, err := os.Stat(path); err == nil {
			targets = append(targets, f)
		}
	}
	if len(targets) == 0 {
		return types.SignalResult{
			Score:  50,
			Passed: false,
			Note:   "no lintable files found among declared files",
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	args := append([]string{"eslint"}, targets...)
	args = append(args, "--format", "json")
	output, runErr := a.runner(runCtx, projectDir, nil, "npx", args...)

	if runCtx.Err() == context.DeadlineExceeded {
		return types.Errored(fmt.Sprintf("lint run timed out after %s", a.timeout))
	}

	reports, ok := parseLintReports(output)
	if !ok {
		if runErr != nil {
			return types.Errored(fmt.Sprintf("lint run failed: %v", runErr))
		}
		return types.Errored("could not parse linter output")
	}

	errors, warnings := 0, 0
	for _, r := range reports {
		errors += r.ErrorCount
		warnings += r.WarningCount
	}

	score := clampScore(100 - float64(errors)*10 - float64(warnings)*2)
	return types.SignalResult{
		Score:  round1(score),
		Passed: errors == 0,
		Note:   fmt.Sprintf("%d errors, %d warnings across %d files", errors, warnings, len(targets)),
		Details: map[string]any{
			"errors":   errors,
			"warnings": warnings,
			"files":    targets,
		},
	}
}

// parseLintReports decodes eslint's JSON array, tolerating npm banner lines
// before the payload.
func parseLintReports(output string) ([]eslintFileReport, bool) {
	start := strings.Index(output, "[")
	if start < 0 {
		return nil, false
	}
	end := strings.LastIndex(output, "]")
	if end <= start {
		return nil, false
	}

	var reports []eslintFileReport
	if err := json.Unmarshal([]byte(output[start:end+1]), &reports); err != nil {
		return nil, false
	}
	return reports, true
}
