package signals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/devpathway/challenge-engine/internal/types"
)

func lintMeta(files []string, codeQuality ...string) types.ChallengeMetadata {
	return types.ChallengeMetadata{
		ID:           "01-intro",
		FilesToCheck: files,
		Requirements: types.Requirements{CodeQuality: codeQuality},
	}
}

func TestLintNoRequirementShortCircuits(t *testing.T) {
	calls := 0
	a := &LintAdapter{
		runner:  stubRunner(&calls, nil, []string{""}, nil),
		timeout: time.Second,
	}
	result := a.Run(context.Background(),
		lintMeta([]string{"src/App.tsx"}, "Use descriptive variable names"), t.TempDir())

	assert.InDelta(t, 100.0, result.Score, 0.001)
	assert.True(t, result.Passed)
	assert.Contains(t, result.Note, "no lint requirement")
	assert.Zero(t, calls, "the linter must not run at all")
}

func TestLintMissingFilesGetPartialCredit(t *testing.T) {
	calls := 0
	a := &LintAdapter{
		runner:  stubRunner(&calls, nil, []string{""}, nil),
		timeout: time.Second,
	}
	result := a.Run(context.Background(),
		lintMeta([]string{"src/Missing.tsx"}, "Code must pass ESLint"), t.TempDir())

	assert.InDelta(t, 50.0, result.Score, 0.001)
	assert.False(t, result.Passed)
	assert.Zero(t, calls)
}

func TestLintScoresDiagnostics(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/App.tsx", "export const App = () => null;")

	output := `[{"filePath":"src/App.tsx","errorCount":2,"warningCount":3,"messages":[]}]`
	calls := 0
	a := &LintAdapter{
		runner:  stubRunner(&calls, nil, []string{output}, []error{errors.New("exit status 1")}),
		timeout: time.Second,
	}
	result := a.Run(context.Background(),
		lintMeta([]string{"src/App.tsx"}, "Code must pass eslint with no errors"), dir)

	// 100 - 2*10 - 3*2
	assert.InDelta(t, 74.0, result.Score, 0.001)
	assert.False(t, result.Passed)
	assert.Equal(t, 1, calls)
}

func TestLintCleanRunPasses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/App.tsx", "export const App = () => null;")

	output := `[{"filePath":"src/App.tsx","errorCount":0,"warningCount":1,"messages":[]}]`
	calls := 0
	a := &LintAdapter{
		runner:  stubRunner(&calls, nil, []string{output}, nil),
		timeout: time.Second,
	}
	result := a.Run(context.Background(),
		lintMeta([]string{"src/App.tsx"}, "lint clean"), dir)

	assert.InDelta(t, 98.0, result.Score, 0.001)
	assert.True(t, result.Passed, "warnings alone do not fail the signal")
}

func TestLintScoreClampedAtZero(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/App.tsx", "export const App = () => null;")

	output := `[{"filePath":"src/App.tsx","errorCount":15,"warningCount":0,"messages":[]}]`
	calls := 0
	a := &LintAdapter{
		runner:  stubRunner(&calls, nil, []string{output}, []error{errors.New("exit status 1")}),
		timeout: time.Second,
	}
	result := a.Run(context.Background(),
		lintMeta([]string{"src/App.tsx"}, "lint clean"), dir)

	assert.Zero(t, result.Score)
}

func TestLintUnparseableOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/App.tsx", "export const App = () => null;")

	calls := 0
	a := &LintAdapter{
		runner:  stubRunner(&calls, nil, []string{"Cannot find module 'eslint'"}, []error{errors.New("exit status 1")}),
		timeout: time.Second,
	}
	result := a.Run(context.Background(),
		lintMeta([]string{"src/App.tsx"}, "lint clean"), dir)

	assert.Zero(t, result.Score)
	assert.NotEmpty(t, result.Error)
}
