package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/respicare/triage-engine/internal/catalog"
	"github.com/respicare/triage-engine/internal/domain"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]domain.Condition{
		{
			ID: 1, Name: "Resfriado común", Category: "superiores",
			Symptoms:    []string{"congestión nasal", "estornudos", "dolor de garganta", "secreción nasal"},
			SymptomText: "congestión nasal, estornudos, dolor de garganta, secreción nasal",
			Urgency:     domain.UrgencyLow, Severity: domain.SeverityMild,
			MatchWeight: 1,
		},
		{
			ID: 9, Name: "Influenza A (H1N1)", Category: "virales",
			Symptoms:    []string{"fiebre alta", "escalofríos", "dolores musculares", "fatiga extrema", "tos seca"},
			SymptomText: "fiebre alta, escalofríos, dolores musculares, fatiga extrema, tos seca",
			Urgency:     domain.UrgencyMedium, Severity: domain.SeverityHigh,
			MatchWeight: 2,
		},
		{
			ID: 16, Name: "Neumonía grave", Category: "neumonías",
			Symptoms:    []string{"fiebre alta", "dificultad respiratoria", "taquipnea", "confusión"},
			SymptomText: "fiebre alta, dificultad respiratoria, taquipnea, confusión",
			Urgency:     domain.UrgencyHigh, Severity: domain.SeverityExtreme,
			MatchWeight: 4,
		},
	})
	require.NoError(t, err)
	return cat
}

func extractionOf(symptoms ...string) *domain.ExtractionResult {
	r := &domain.ExtractionResult{}
	for _, s := range symptoms {
		r.Symptoms = append(r.Symptoms, domain.DetectedSymptom{
			Symptom: domain.Symptom{Canonical: s},
		})
	}
	return r
}

func TestMatch_TopHypothesisNeedsEnoughMatches(t *testing.T) {
	matcher := NewMatcher(3, 0.4)
	cat := testCatalog(t)

	// Three influenza symptoms clear the gate.
	result := matcher.Match(cat, extractionOf("fiebre alta", "escalofríos", "tos seca"))

	require.False(t, result.Generic)
	assert.Equal(t, 9, result.Prediction.ConditionID)
	assert.Equal(t, domain.UrgencyMedium, result.Urgency)
	assert.Equal(t, domain.SeverityHigh, result.Severity)
	assert.Len(t, result.MatchedSymptoms, 3)
	// score = 3 matches x weight 2 = 6; confidence = 6/10.
	assert.InDelta(t, 0.6, result.Prediction.Probability, 1e-9)
}

func TestMatch_TooFewMatchesDegradesToGeneric(t *testing.T) {
	matcher := NewMatcher(3, 0.4)
	cat := testCatalog(t)

	result := matcher.Match(cat, extractionOf("fiebre alta", "tos seca"))

	assert.True(t, result.Generic)
	assert.Equal(t, domain.ConditionUnclassified, result.Prediction.ConditionName)
	assert.InDelta(t, 0.4, result.Prediction.Probability, 1e-9)
	assert.Equal(t, domain.UrgencyLow, result.Urgency)
	assert.Equal(t, domain.SeverityMild, result.Severity)
	assert.Empty(t, result.Alternatives)
}

func TestMatch_HigherWeightWins(t *testing.T) {
	matcher := NewMatcher(3, 0.4)
	cat := testCatalog(t)

	// Both influenza and severe pneumonia match "fiebre alta"; pneumonia
	// matches three of its four symptoms at weight 4.
	result := matcher.Match(cat, extractionOf("fiebre alta", "dificultad respiratoria", "taquipnea", "escalofríos", "tos seca"))

	require.False(t, result.Generic)
	assert.Equal(t, 16, result.Prediction.ConditionID)
	// score = 3 x 4 = 12; confidence capped at 0.9.
	assert.InDelta(t, 0.9, result.Prediction.Probability, 1e-9)
}

func TestMatch_AlternativesAreTopThree(t *testing.T) {
	matcher := NewMatcher(1, 0.4)
	cat := testCatalog(t)

	result := matcher.Match(cat, extractionOf("fiebre alta", "estornudos", "tos seca"))

	require.False(t, result.Generic)
	require.NotEmpty(t, result.Alternatives)
	assert.LessOrEqual(t, len(result.Alternatives), 3)
	assert.Equal(t, result.Prediction.ConditionID, result.Alternatives[0].ConditionID)
	for i := 1; i < len(result.Alternatives); i++ {
		assert.GreaterOrEqual(t, result.Alternatives[i-1].Probability, result.Alternatives[i].Probability)
	}
}

func TestMatch_DeterministicTieBreakByID(t *testing.T) {
	cat, err := catalog.New([]domain.Condition{
		{
			ID: 5, Name: "B", Category: "x",
			Symptoms: []string{"tos", "fiebre", "fatiga"}, SymptomText: "tos, fiebre, fatiga",
			Urgency: domain.UrgencyLow, Severity: domain.SeverityMild, MatchWeight: 1,
		},
		{
			ID: 2, Name: "A", Category: "x",
			Symptoms: []string{"tos", "fiebre", "fatiga"}, SymptomText: "tos, fiebre, fatiga",
			Urgency: domain.UrgencyLow, Severity: domain.SeverityMild, MatchWeight: 1,
		},
	})
	require.NoError(t, err)
	matcher := NewMatcher(3, 0.4)

	result := matcher.Match(cat, extractionOf("tos", "fiebre", "fatiga"))

	assert.Equal(t, 2, result.Prediction.ConditionID)
}

func TestMatch_NoSymptoms(t *testing.T) {
	matcher := NewMatcher(3, 0.4)
	cat := testCatalog(t)

	result := matcher.Match(cat, extractionOf())

	assert.True(t, result.Generic)
}
