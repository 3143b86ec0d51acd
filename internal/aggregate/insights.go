package aggregate

import (
	"encoding/json"
	"sort"

	"github.com/devpathway/challenge-engine/internal/types"
)

// insightListCap bounds each top-N insight list.
const insightListCap = 5

// reviewLists is the slice of an AI review payload the insights rollup
// reads. Payloads arrive either as live verdict structs or as generic maps
// decoded from ai-feedback.json, so extraction goes through a JSON
// round-trip instead of type switches.
type reviewLists struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// BuildInsights tallies strength/improvement mentions across all AI
// feedback entries and keeps the most frequent of each, ties broken by
// first appearance.
func BuildInsights(entries []types.AIFeedbackEntry) *types.PathwayInsights {
	if len(entries) == 0 {
		return nil
	}

	strengthCounts := map[string]int{}
	improvementCounts := map[string]int{}
	var strengthOrder, improvementOrder []string

	for _, entry := range entries {
		lists, ok := extractLists(entry.AIReview)
		if !ok {
			continue
		}
		for _, s := range lists.Strengths {
			if strengthCounts[s] == 0 {
				strengthOrder = append(strengthOrder, s)
			}
			strengthCounts[s]++
		}
		for _, s := range lists.Improvements {
			if improvementCounts[s] == 0 {
				improvementOrder = append(improvementOrder, s)
			}
			improvementCounts[s]++
		}
	}

	return &types.PathwayInsights{
		TopStrengths:    topN(strengthOrder, strengthCounts, insightListCap),
		TopImprovements: topN(improvementOrder, improvementCounts, insightListCap),
		ReviewedCount:   len(entries),
	}
}

func extractLists(payload any) (reviewLists, bool) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return reviewLists{}, false
	}
	var lists reviewLists
	if err := json.Unmarshal(raw, &lists); err != nil {
		return reviewLists{}, false
	}
	return lists, len(lists.Strengths) > 0 || len(lists.Improvements) > 0
}

// topN sorts by count descending, stable over first-appearance order.
func topN(order []string, counts map[string]int, n int) []string {
	sorted := make([]string, len(order))
	copy(sorted, order)
	sort.SliceStable(sorted, func(i, j int) bool {
		return counts[sorted[i]] > counts[sorted[j]]
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []string{}
	}
	return sorted
}
