package classifier

// forestProbabilities averages the leaf class distributions across all
// trees, the standard random-forest soft vote. Distributions are
// normalized per tree so malformed leaves cannot skew the vote.
func forestProbabilities(a *Artifact, features []float64) []float64 {
	probs := make([]float64, len(a.Classes))

	for i := range a.Trees {
		leaf := a.Trees[i].evaluate(features)

		var total float64
		for _, v := range leaf.Distribution {
			total += v
		}
		if total <= 0 {
			continue
		}
		for c, v := range leaf.Distribution {
			probs[c] += v / total
		}
	}

	inv := 1.0 / float64(len(a.Trees))
	for c := range probs {
		probs[c] *= inv
	}
	return probs
}
