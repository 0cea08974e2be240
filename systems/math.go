// Package systems implements the per-tick transforms of the gridworld:
// movement, action effects, reproduction, sun and plant dynamics,
// aggregate channels and observations.
package systems

import (
	"math"
	"slices"
)

// Logits outside this range saturate the logistic function.
const (
	logitMin = -10.0
	logitMax = 10.0
)

// clamp clamps v between minVal and maxVal.
func clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps v to [0, 1].
func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// logit is the inverse of sigmoid.
func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}

// sigmoid is the logistic function.
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// targetPair is a (target cell, slot) candidate for a contested cell.
type targetPair struct {
	target int
	slot   int
}

// DedupByTarget resolves many-to-one claims on cells. candidates[i] reports
// whether slot i claims targets[i]. Pairs are stable-sorted by target then
// slot, and only the first slot of each run of equal targets keeps its claim.
// The returned mask is indexed by slot.
func DedupByTarget(targets []int, candidates []bool) []bool {
	pairs := make([]targetPair, 0, len(targets))
	for i, ok := range candidates {
		if ok {
			pairs = append(pairs, targetPair{target: targets[i], slot: i})
		}
	}
	slices.SortStableFunc(pairs, func(a, b targetPair) int {
		if a.target != b.target {
			return a.target - b.target
		}
		return a.slot - b.slot
	})

	keep := make([]bool, len(targets))
	for k, p := range pairs {
		if k > 0 && pairs[k-1].target == p.target {
			continue
		}
		keep[p.slot] = true
	}
	return keep
}
