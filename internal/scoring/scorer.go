// Package scoring combines normalized signal results into challenge totals.
// It holds only the combination math; the weight table and pass threshold
// are configuration supplied by the caller.
package scoring

import (
	"math"
	"time"

	"github.com/devpathway/challenge-engine/internal/types"
)

// WeightedAverage computes Σ(score*weight)/Σ(weight) over the entries of
// scores that have a weight. Weights need not sum to 1; a partial weight
// table simply renormalizes over the weights present. Zero total weight
// yields 0.
func WeightedAverage(scores map[string]float64, weights map[string]float64) float64 {
	var weightedSum, weightTotal float64
	for name, weight := range weights {
		score, ok := scores[name]
		if !ok || weight <= 0 {
			continue
		}
		weightedSum += score * weight
		weightTotal += weight
	}
	if weightTotal == 0 {
		return 0
	}
	return weightedSum / weightTotal
}

// Score folds a challenge's signals into a ChallengeResult. A signal whose
// adapter reported an error participates with its zero score rather than
// being excluded, so an unrunnable signal always lowers the total in
// proportion to its weight.
func Score(challengeID, challengeName string, signals map[string]types.SignalResult, weights map[string]float64, minPassScore float64) types.ChallengeResult {
	scores := make(map[string]float64, len(signals))
	errors := []string{}
	for _, name := range types.SignalOrder {
		sig, ok := signals[name]
		if !ok {
			continue
		}
		scores[name] = sig.Score
		if sig.Error != "" {
			errors = append(errors, name+": "+sig.Error)
		}
	}

	total := round1(WeightedAverage(scores, weights))
	return types.ChallengeResult{
		ChallengeID:   challengeID,
		ChallengeName: challengeName,
		Timestamp:     time.Now().UTC(),
		Signals:       signals,
		TotalScore:    total,
		Passed:        total >= minPassScore,
		Errors:        errors,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
