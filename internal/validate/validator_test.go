package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/respicare/triage-engine/internal/domain"
)

func extractionOf(symptoms ...string) *domain.ExtractionResult {
	r := &domain.ExtractionResult{}
	for _, s := range symptoms {
		r.Symptoms = append(r.Symptoms, domain.DetectedSymptom{
			Symptom: domain.Symptom{Canonical: s},
		})
	}
	return r
}

func pneumonia() domain.Condition {
	return domain.Condition{
		ID: 13, Name: "Neumonía viral", Category: "neumonías",
		Symptoms:    []string{"fiebre", "tos seca progresiva", "dificultad respiratoria"},
		Urgency:     domain.UrgencyHigh,
		Severity:    domain.SeverityHigh,
		Required:    []string{"fiebre", "tos"},
		MatchWeight: 3,
	}
}

func bronchiolitis() domain.Condition {
	return domain.Condition{
		ID: 19, Name: "Bronquiolitis aguda", Category: "inferiores",
		Symptoms:    []string{"tos", "sibilancias", "taquipnea"},
		Urgency:     domain.UrgencyHigh,
		Severity:    domain.SeverityHigh,
		Ages:        domain.AgeRange{Min: 0, Max: 3},
		MatchWeight: 3,
	}
}

func TestValidate_AllRequiredPresent(t *testing.T) {
	v := NewValidator(0.15, 0.20)

	outcome := v.Validate(pneumonia(), extractionOf("fiebre alta", "tos seca"), 40, 0.8)

	assert.Equal(t, domain.ValidationPassed, outcome.Status)
	assert.InDelta(t, 0.8, outcome.Confidence, 1e-9)
	assert.Empty(t, outcome.Warnings)
}

func TestValidate_MissingRequiredSymptom(t *testing.T) {
	v := NewValidator(0.15, 0.20)

	outcome := v.Validate(pneumonia(), extractionOf("tos seca"), 40, 0.8)

	assert.Equal(t, domain.ValidationWarning, outcome.Status)
	assert.InDelta(t, 0.65, outcome.Confidence, 1e-9)
	assert.Len(t, outcome.Warnings, 1)
	assert.Contains(t, outcome.Warnings[0], "fiebre")
}

func TestValidate_SinglePenaltyForMultipleMissing(t *testing.T) {
	v := NewValidator(0.15, 0.20)

	outcome := v.Validate(pneumonia(), extractionOf("fatiga"), 40, 0.8)

	// One penalty, one warning per missing symptom.
	assert.InDelta(t, 0.65, outcome.Confidence, 1e-9)
	assert.Len(t, outcome.Warnings, 2)
}

func TestValidate_AgeOutOfRange(t *testing.T) {
	v := NewValidator(0.15, 0.20)

	outcome := v.Validate(bronchiolitis(), extractionOf("tos", "sibilancias"), 34, 0.7)

	assert.Equal(t, domain.ValidationWarning, outcome.Status)
	assert.InDelta(t, 0.5, outcome.Confidence, 1e-9)
	assert.Len(t, outcome.Warnings, 1)
}

func TestValidate_NoAgeSuppliedSkipsAgeRule(t *testing.T) {
	v := NewValidator(0.15, 0.20)

	outcome := v.Validate(bronchiolitis(), extractionOf("tos", "sibilancias"), -1, 0.7)

	assert.Equal(t, domain.ValidationPassed, outcome.Status)
	assert.InDelta(t, 0.7, outcome.Confidence, 1e-9)
}

func TestValidate_PenaltiesAccumulateAndClamp(t *testing.T) {
	v := NewValidator(0.15, 0.20)
	cond := bronchiolitis()
	cond.Required = []string{"sibilancias"}

	t.Run("both rules violated", func(t *testing.T) {
		outcome := v.Validate(cond, extractionOf("fiebre"), 34, 0.5)

		assert.Equal(t, domain.ValidationWarning, outcome.Status)
		assert.InDelta(t, 0.15, outcome.Confidence, 1e-9)
		assert.Len(t, outcome.Warnings, 2)
	})

	t.Run("clamped at zero", func(t *testing.T) {
		outcome := v.Validate(cond, extractionOf("fiebre"), 34, 0.2)

		assert.Zero(t, outcome.Confidence)
	})
}

func TestValidate_NeverChangesCondition(t *testing.T) {
	v := NewValidator(0.15, 0.20)
	cond := bronchiolitis()
	before := cond

	v.Validate(cond, extractionOf(), 50, 0.9)

	// The validator adjusts confidence and warnings only.
	assert.Equal(t, before, cond)
}
