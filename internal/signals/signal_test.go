package signals

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubRunner returns a CommandRunner that replays canned outputs in order
// and records each invocation's environment.
func stubRunner(calls *int, envs *[][]string, outputs []string, errs []error) CommandRunner {
	return func(ctx context.Context, dir string, env []string, name string, args ...string) (string, error) {
		i := *calls
		*calls++
		if envs != nil {
			*envs = append(*envs, env)
		}
		if i >= len(outputs) {
			i = len(outputs) - 1
		}
		var err error
		if errs != nil && i < len(errs) {
			err = errs[i]
		}
		return outputs[i], err
	}
}

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"prefixed by banner", "npm warn something\n> test\n{\"a\":1}", `{"a":1}`, true},
		{"nested braces", `{"a":{"b":2}}`, `{"a":{"b":2}}`, true},
		{"braces inside strings ignored", `{"a":"}{"}`, `{"a":"}{"}`, true},
		{"no object", "just text", "", false},
		{"unbalanced", `{"a":1`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := firstJSONObject(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestJSONObjectWithKey(t *testing.T) {
	input := `{"progress":true} {"numTotalTests":3,"inner":{"x":1}}`
	span, ok := jsonObjectWithKey(input, "numTotalTests")
	assert.True(t, ok)
	assert.Contains(t, span, "numTotalTests")
	assert.NotContains(t, span, "progress")

	_, ok = jsonObjectWithKey(input, "absent")
	assert.False(t, ok)
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, clampScore(-5))
	assert.Equal(t, 100.0, clampScore(120))
	assert.Equal(t, 42.5, clampScore(42.5))
}
