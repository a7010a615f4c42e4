// Package pattern implements the keyword-pattern fallback classifier:
// a deterministic scorer over the reference catalog used when no model
// adapter is available, and as a cross-check besides them.
package pattern

import (
	"sort"

	"github.com/respicare/triage-engine/internal/catalog"
	"github.com/respicare/triage-engine/internal/domain"
)

// Confidence ceiling for pattern matches. The fallback never claims
// more certainty than a trained model could.
const confidenceCap = 0.9

// Match is one condition's pattern score.
type Match struct {
	Condition       domain.Condition
	MatchedSymptoms []string
	MatchCount      int
	Score           float64
	Confidence      float64
}

// Result is the fallback's answer for one extraction. Generic results
// carry the unspecified-infection sentinel instead of a catalog
// condition: the evidence was too thin for a specific diagnosis.
type Result struct {
	Prediction      domain.RankedPrediction
	Urgency         domain.UrgencyLevel
	Severity        domain.SeverityLevel
	Category        string
	Generic         bool
	MatchedSymptoms []string
	Alternatives    []domain.RankedPrediction
}

// Matcher scores extractions against a catalog snapshot.
type Matcher struct {
	minMatches        int
	genericConfidence float64
}

// NewMatcher configures the fallback. minMatches is the evidence gate:
// a condition needs at least that many distinctive symptom matches to
// be eligible as the top hypothesis.
func NewMatcher(minMatches int, genericConfidence float64) *Matcher {
	return &Matcher{minMatches: minMatches, genericConfidence: genericConfidence}
}

// Match scores every catalog condition by the sum of its per-condition
// weight over matched reference symptoms, gates on the minimum match
// count, and degrades to the generic hypothesis when nothing clears the
// gate. Deterministic: ties rank by lower condition ID.
func (m *Matcher) Match(cat *catalog.Catalog, extraction *domain.ExtractionResult) *Result {
	names := extraction.SymptomNames()

	var eligible []Match
	for _, cond := range cat.All() {
		match := scoreCondition(cond, names)
		if match.MatchCount >= m.minMatches {
			eligible = append(eligible, match)
		}
	}

	// Too little evidence for any specific diagnosis: low urgency and
	// mild severity, same tiers as the no-symptom path. Text-derived
	// emergency floors still raise the urgency downstream.
	if len(eligible) == 0 {
		return &Result{
			Prediction: domain.RankedPrediction{
				ConditionName: domain.ConditionUnclassified,
				Probability:   m.genericConfidence,
			},
			Urgency:  domain.UrgencyLow,
			Severity: domain.SeverityMild,
			Generic:  true,
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].Score != eligible[j].Score {
			return eligible[i].Score > eligible[j].Score
		}
		return eligible[i].Condition.ID < eligible[j].Condition.ID
	})

	top := eligible[0]
	result := &Result{
		Prediction: domain.RankedPrediction{
			ConditionID:   top.Condition.ID,
			ConditionName: top.Condition.Name,
			Probability:   top.Confidence,
		},
		Urgency:         top.Condition.Urgency,
		Severity:        top.Condition.Severity,
		Category:        top.Condition.Category,
		MatchedSymptoms: top.MatchedSymptoms,
	}
	for _, match := range eligible[:min(3, len(eligible))] {
		result.Alternatives = append(result.Alternatives, domain.RankedPrediction{
			ConditionID:   match.Condition.ID,
			ConditionName: match.Condition.Name,
			Probability:   match.Confidence,
		})
	}
	return result
}

// scoreCondition counts detected symptoms matching the condition's
// reference list (loose containment, each detected symptom counted
// once) and weights the count by the condition's match weight.
func scoreCondition(cond domain.Condition, detected []string) Match {
	match := Match{Condition: cond}
	for _, name := range detected {
		if cond.HasSymptom(name) {
			match.MatchCount++
			match.MatchedSymptoms = append(match.MatchedSymptoms, name)
		}
	}
	match.Score = float64(match.MatchCount) * cond.MatchWeight
	match.Confidence = match.Score / 10
	if match.Confidence > confidenceCap {
		match.Confidence = confidenceCap
	}
	return match
}
