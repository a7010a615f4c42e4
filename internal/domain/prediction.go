package domain

import "sort"

// RankedPrediction is one (condition, probability) entry from a
// classifier or the pattern fallback.
type RankedPrediction struct {
	ConditionID   int     `json:"condition_id"`
	ConditionName string  `json:"condition"`
	Probability   float64 `json:"probability"`
}

// Attribution is a signed per-feature contribution explaining a
// classifier's prediction.
type Attribution struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
}

// ClassifierScore is the uniform output of every classifier adapter:
// a ranked list of predictions, best first, plus optional per-feature
// attributions for the top prediction.
type ClassifierScore struct {
	Model        string             `json:"model"`
	Predictions  []RankedPrediction `json:"predictions"`
	Attributions []Attribution      `json:"attributions,omitempty"`
}

// Top returns the highest-ranked prediction, or false when the score
// carries no predictions at all.
func (s *ClassifierScore) Top() (RankedPrediction, bool) {
	if len(s.Predictions) == 0 {
		return RankedPrediction{}, false
	}
	return s.Predictions[0], true
}

// TopK returns up to k leading predictions.
func (s *ClassifierScore) TopK(k int) []RankedPrediction {
	if k > len(s.Predictions) {
		k = len(s.Predictions)
	}
	return s.Predictions[:k]
}

// SortPredictions orders predictions by probability descending, with
// condition ID ascending as the deterministic tie-break.
func SortPredictions(preds []RankedPrediction) {
	sort.SliceStable(preds, func(i, j int) bool {
		if preds[i].Probability != preds[j].Probability {
			return preds[i].Probability > preds[j].Probability
		}
		return preds[i].ConditionID < preds[j].ConditionID
	})
}

// SortAttributions orders attributions by absolute contribution
// descending, feature name ascending on ties.
func SortAttributions(attrs []Attribution) {
	sort.SliceStable(attrs, func(i, j int) bool {
		ai, aj := abs(attrs[i].Contribution), abs(attrs[j].Contribution)
		if ai != aj {
			return ai > aj
		}
		return attrs[i].Feature < attrs[j].Feature
	})
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
