package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpathway/challenge-engine/internal/types"
)

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name     string
		scores   map[string]float64
		weights  map[string]float64
		expected float64
	}{
		{
			name:     "uniform weights reduce to mean",
			scores:   map[string]float64{"a": 80, "b": 60},
			weights:  map[string]float64{"a": 1, "b": 1},
			expected: 70,
		},
		{
			name:     "weights need not sum to one",
			scores:   map[string]float64{"a": 100, "b": 0},
			weights:  map[string]float64{"a": 3, "b": 1},
			expected: 75,
		},
		{
			name:     "partial weight table ignores unweighted scores",
			scores:   map[string]float64{"a": 100, "b": 0, "c": 40},
			weights:  map[string]float64{"a": 0.5, "c": 0.5},
			expected: 70,
		},
		{
			name:     "zero total weight yields zero",
			scores:   map[string]float64{"a": 100},
			weights:  map[string]float64{},
			expected: 0,
		},
		{
			name:     "weighted score missing from scores is skipped",
			scores:   map[string]float64{"a": 90},
			weights:  map[string]float64{"a": 0.5, "missing": 0.5},
			expected: 90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, WeightedAverage(tt.scores, tt.weights), 0.001)
		})
	}
}

func TestScoreErroredSignalCountsAsZero(t *testing.T) {
	signals := map[string]types.SignalResult{
		types.SignalFunctionalTests: {Score: 100, Passed: true},
		types.SignalCodeQuality:     types.Errored("linter crashed"),
	}
	weights := map[string]float64{
		types.SignalFunctionalTests: 0.5,
		types.SignalCodeQuality:     0.5,
	}

	result := Score("01-intro", "Intro", signals, weights, 70)

	// The errored signal's zero drags the total down instead of being
	// excluded from the average.
	assert.InDelta(t, 50.0, result.TotalScore, 0.001)
	assert.False(t, result.Passed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "codeQuality")
	assert.Contains(t, result.Errors[0], "linter crashed")
}

func TestScorePassThreshold(t *testing.T) {
	signals := map[string]types.SignalResult{
		types.SignalFunctionalTests: {Score: 70, Passed: true},
	}
	weights := map[string]float64{types.SignalFunctionalTests: 1}

	result := Score("01-intro", "Intro", signals, weights, 70)
	assert.True(t, result.Passed, "totalScore == minPassScore should pass")

	result = Score("01-intro", "Intro", signals, weights, 70.1)
	assert.False(t, result.Passed)
}

func TestScoreCarriesIdentityAndSignals(t *testing.T) {
	signals := map[string]types.SignalResult{
		types.SignalFunctionalTests: {Score: 90, Passed: true},
	}
	result := Score("03-counter", "Counter", signals, map[string]float64{types.SignalFunctionalTests: 1}, 70)

	assert.Equal(t, "03-counter", result.ChallengeID)
	assert.Equal(t, "Counter", result.ChallengeName)
	assert.False(t, result.Timestamp.IsZero())
	assert.Len(t, result.Signals, 1)
	assert.Empty(t, result.Errors)
}
