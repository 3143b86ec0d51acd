package signals

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devpathway/challenge-engine/internal/patterns"
	"github.com/devpathway/challenge-engine/internal/types"
)

// ArchitectureAdapter checks that the required code capabilities appear
// somewhere across a challenge's declared files.
type ArchitectureAdapter struct {
	matcher *patterns.Matcher
}

// NewArchitectureAdapter creates the adapter with a fresh matcher.
func NewArchitectureAdapter() *ArchitectureAdapter {
	return &ArchitectureAdapter{matcher: patterns.NewMatcher()}
}

// architectureFileDetail records what one file contributed to the search.
type architectureFileDetail struct {
	File    string   `json:"file"`
	Found   []string `json:"patternsFound"`
	Missing []string `json:"patternsMissing"`
	Error   string   `json:"error,omitempty"`
}

// Run scores found/required over the union of capabilities detected in any
// declared file. A capability found in one file satisfies the requirement
// even when other files lack it. The threshold for passing is 80.
func (a *ArchitectureAdapter) Run(ctx context.Context, meta types.ChallengeMetadata, projectDir string) types.SignalResult {
	required := meta.PatternsRequired
	if len(required) == 0 {
		return types.SignalResult{
			Score:  100,
			Passed: true,
			Note:   "no architecture patterns required",
		}
	}

	union := make(map[string]struct{})
	details := make([]architectureFileDetail, 0, len(meta.FilesToCheck))

	for _, f := range meta.FilesToCheck {
		if err := ctx.Err(); err != nil {
			return types.Errored(fmt.Sprintf("architecture check canceled: %v", err))
		}

		path := filepath.Join(projectDir, f)
		content, err := os.ReadFile(path)
		if err != nil {
			details = append(details, architectureFileDetail{
				File:    f,
				Found:   []string{},
				Missing: required,
				Error:   "file not found",
			})
			continue
		}

		match := a.matcher.Match(f, content, required)
		for _, cap := range match.Found {
			union[cap] = struct{}{}
		}
		details = append(details, architectureFileDetail{
			File:    f,
			Found:   match.Found,
			Missing: match.Missing,
		})
	}

	found := make([]string, 0, len(required))
	missing := make([]string, 0)
	for _, cap := range required {
		if _, ok := union[cap]; ok {
			found = append(found, cap)
		} else {
			missing = append(missing, cap)
		}
	}

	score := round1(float64(len(found)) / float64(len(required)) * 100)
	result := types.SignalResult{
		Score:  score,
		Passed: score >= 80,
		Details: map[string]any{
			"patternsFound":   found,
			"patternsMissing": missing,
			"files":           details,
		},
	}
	if len(missing) > 0 {
		result.Note = fmt.Sprintf("missing patterns: %v", missing)
	}
	return result
}
