package signals

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/devpathway/challenge-engine/internal/types"
)

// practiceCheck is one best-practice probe. A check only runs when a
// requirement's text mentions one of its keywords, so challenges are never
// penalized for practices they were not asked to follow.
type practiceCheck struct {
	name     string
	keywords []string
	eval     func(content string) bool
}

var (
	consoleStatementRe = regexp.MustCompile(`console\.(log|warn|error|debug|info)\s*\(`)
	typeAnnotationRe   = regexp.MustCompile(`(?::\s*(?:string|number|boolean|[A-Z][A-Za-z0-9]*(?:\[\])?)\b|\binterface\s+[A-Z]|\btype\s+[A-Z][A-Za-z0-9]*\s*=)`)
	componentDeclRe    = regexp.MustCompile(`(?:function\s+[A-Z][A-Za-z0-9]*\s*\(|const\s+[A-Z][A-Za-z0-9]*\s*=\s*(?:\([^)]*\)\s*=>|function))`)
	classComponentRe   = regexp.MustCompile(`class\s+\w+\s+extends\s+(?:React\.)?Component`)
	exportStatementRe  = regexp.MustCompile(`\bexport\s+(?:default\s+)?`)
	hardcodedURLRe     = regexp.MustCompile(`["']https?://[^"']+["']`)
	commentBlockRe     = regexp.MustCompile(`(?m)^\s*//`)
)

// practiceChecks is the closed battery the adapter can draw from.
var practiceChecks = []practiceCheck{
	{
		name:     "no-console-statements",
		keywords: []string{"console"},
		eval: func(content string) bool {
			return !consoleStatementRe.MatchString(content)
		},
	},
	{
		name:     "typescript-types",
		keywords: []string{"typescript", "typed", "type annotation", "types"},
		eval: func(content string) bool {
			return typeAnnotationRe.MatchString(content)
		},
	},
	{
		name:     "functional-components",
		keywords: []string{"functional component", "function component"},
		eval: func(content string) bool {
			return componentDeclRe.MatchString(content) && !classComponentRe.MatchString(content)
		},
	},
	{
		name:     "exports-declared",
		keywords: []string{"export"},
		eval: func(content string) bool {
			return exportStatementRe.MatchString(content)
		},
	},
	{
		name:     "no-hardcoded-urls",
		keywords: []string{"hardcod", "url"},
		eval: func(content string) bool {
			for _, match := range hardcodedURLRe.FindAllString(content, -1) {
				if !strings.Contains(match, "localhost") && !strings.Contains(match, "127.0.0.1") {
					return false
				}
			}
			return true
		},
	},
	{
		name:     "reasonable-comment-density",
		keywords: []string{"comment"},
		eval: func(content string) bool {
			lines := strings.Count(content, "\n") + 1
			comments := len(commentBlockRe.FindAllString(content, -1))
			return lines == 0 || float64(comments)/float64(lines) <= 0.5
		},
	},
}

// BestPracticesAdapter scores a challenge against the subset of practice
// checks its requirements actually ask for.
type BestPracticesAdapter struct{}

// NewBestPracticesAdapter creates the adapter.
func NewBestPracticesAdapter() *BestPracticesAdapter {
	return &BestPracticesAdapter{}
}

// applicableChecks selects checks whose keywords appear in any best-practice
// requirement line.
func applicableChecks(reqs []string) []practiceCheck {
	var selected []practiceCheck
	for _, check := range practiceChecks {
		for _, req := range reqs {
			lower := strings.ToLower(req)
			matched := false
			for _, kw := range check.keywords {
				if strings.Contains(lower, kw) {
					selected = append(selected, check)
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
	}
	return selected
}

// Run evaluates each applicable check against the concatenated declared
// files. A challenge with no applicable checks passes with full credit.
// The passing threshold is 70.
func (a *BestPracticesAdapter) Run(ctx context.Context, meta types.ChallengeMetadata, projectDir string) types.SignalResult {
	checks := applicableChecks(meta.Requirements.BestPractices)
	if len(checks) == 0 {
		return types.SignalResult{
			Score:  100,
			Passed: true,
			Note:   "no applicable best-practice checks",
		}
	}

	var builder strings.Builder
	readFiles := 0
	for _, f := range meta.FilesToCheck {
		if err := ctx.Err(); err != nil {
			return types.Errored(fmt.Sprintf("best-practices check canceled: %v", err))
		}
		content, err := os.ReadFile(filepath.Join(projectDir, f))
		if err != nil {
			continue
		}
		builder.Write(content)
		builder.WriteByte('\n')
		readFiles++
	}
	if readFiles == 0 {
		return types.Errored("no declared files could be read")
	}
	content := builder.String()

	passed := 0
	checkResults := make(map[string]bool, len(checks))
	for _, check := range checks {
		ok := check.eval(content)
		checkResults[check.name] = ok
		if ok {
			passed++
		}
	}

	score := round1(float64(passed) / float64(len(checks)) * 100)
	return types.SignalResult{
		Score:  score,
		Passed: score >= 70,
		Note:   fmt.Sprintf("%d/%d practice checks passed", passed, len(checks)),
		Details: map[string]any{
			"checks": checkResults,
		},
	}
}
