// Package signals wraps the external measurement tools (test runner,
// linter, pattern matcher, best-practices scan, browser runner, LLM
// reviewer) behind a common contract: every adapter returns a well-formed
// SignalResult and never lets an error escape its boundary. A signal that
// cannot be computed comes back zero-scored with Error set, so the scorer
// can always produce a total.
package signals

import (
	"bytes"
	"context"
	"math"
	"os/exec"
	"strings"
	"time"
)

// DefaultToolTimeout bounds one external tool invocation.
const DefaultToolTimeout = 2 * time.Minute

// CommandRunner executes an external tool and returns its combined
// stdout+stderr. Implementations must honor ctx cancellation. The error, if
// any, still carries whatever output the tool produced, because runners
// like test frameworks exit non-zero while printing a valid JSON summary.
type CommandRunner func(ctx context.Context, dir string, env []string, name string, args ...string) (string, error)

// ExecRunner is the production CommandRunner built on os/exec.
func ExecRunner(ctx context.Context, dir string, env []string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = env
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	return buf.String(), err
}

// jsonObjectWithKey scans tool output for the first balanced {...} span
// containing the given key. Tools frequently prefix their JSON summary with
// npm banners or progress lines; decoding the raw output directly would
// fail on those.
func jsonObjectWithKey(s, key string) (string, bool) {
	needle := `"` + key + `"`
	offset := 0
	for offset < len(s) {
		span, ok := firstJSONObject(s[offset:])
		if !ok {
			return "", false
		}
		if strings.Contains(span, needle) {
			return span, true
		}
		idx := strings.Index(s[offset:], span)
		offset += idx + len(span)
	}
	return "", false
}

// firstJSONObject extracts the first balanced {...} span.
func firstJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// clampScore keeps a computed score inside [0, 100].
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// round1 rounds to one decimal place, the precision all artifacts carry.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
