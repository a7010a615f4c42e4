package engine

import (
	"github.com/respicare/triage-engine/internal/domain"
)

// buildExplanation assembles the ordered explanation list: classifier
// attributions when present (already sorted by absolute contribution,
// truncated to topN), otherwise the pattern fallback's matched
// symptoms, with validator warnings appended as caveats. Deterministic
// given identical inputs.
func buildExplanation(attributions []domain.Attribution, matchedSymptoms []string, warnings []string, topN int) []domain.ExplanationEntry {
	var entries []domain.ExplanationEntry

	if len(attributions) > 0 {
		n := min(topN, len(attributions))
		for _, attr := range attributions[:n] {
			entries = append(entries, domain.ExplanationEntry{
				Label:  attr.Feature,
				Weight: attr.Contribution,
				Source: domain.ExplainSourceClassifier,
			})
		}
	} else {
		for _, symptom := range matchedSymptoms {
			entries = append(entries, domain.ExplanationEntry{
				Label:  symptom,
				Weight: 1,
				Source: domain.ExplainSourcePattern,
			})
		}
	}

	for _, warning := range warnings {
		entries = append(entries, domain.ExplanationEntry{
			Label:  warning,
			Source: domain.ExplainSourceValidator,
		})
	}
	return entries
}
