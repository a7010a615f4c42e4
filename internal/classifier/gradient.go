package classifier

import "math"

// gradientProbabilities accumulates per-class margins from the boosted
// trees (base score plus learning-rate-scaled leaf values) and maps
// them to probabilities with a softmax.
func gradientProbabilities(a *Artifact, features []float64) []float64 {
	margins := make([]float64, len(a.Classes))
	for c := range margins {
		margins[c] = a.BaseScore
	}

	lr := a.LearningRate
	if lr <= 0 {
		lr = 1.0
	}
	for i := range a.Trees {
		tree := &a.Trees[i]
		leaf := tree.evaluate(features)
		margins[tree.Class] += lr * leaf.Value
	}

	return softmax(margins)
}

// softmax converts margins to a probability distribution, shifted by
// the max margin for numerical stability.
func softmax(margins []float64) []float64 {
	maxMargin := margins[0]
	for _, m := range margins[1:] {
		if m > maxMargin {
			maxMargin = m
		}
	}

	probs := make([]float64, len(margins))
	var sum float64
	for i, m := range margins {
		probs[i] = math.Exp(m - maxMargin)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
