// Package validate sanity-checks a chosen disease hypothesis against
// medical plausibility rules. The validator only adjusts confidence and
// attaches warnings; it never changes the condition or its urgency.
package validate

import (
	"fmt"

	"github.com/respicare/triage-engine/internal/domain"
)

// Outcome is the validator's adjustment for one hypothesis.
type Outcome struct {
	Status     domain.ValidationStatus
	Confidence float64
	Warnings   []string
}

// Validator applies the required-symptom and age-plausibility rules
// with fixed penalties. Penalties accumulate additively and the final
// confidence is clamped at zero.
type Validator struct {
	requiredPenalty float64
	agePenalty      float64
}

// NewValidator configures the penalties for a missing required symptom
// set and an out-of-range age.
func NewValidator(requiredPenalty, agePenalty float64) *Validator {
	return &Validator{requiredPenalty: requiredPenalty, agePenalty: agePenalty}
}

// Validate checks the hypothesis independently against both rules. An
// age below zero means no age was supplied and skips the age rule.
// Rule conflicts are never an error: both penalties apply and the
// status degrades to warning.
func (v *Validator) Validate(cond domain.Condition, extraction *domain.ExtractionResult, age int, confidence float64) Outcome {
	outcome := Outcome{Status: domain.ValidationPassed, Confidence: confidence}

	if missing := missingRequired(cond, extraction); len(missing) > 0 {
		outcome.Status = domain.ValidationWarning
		outcome.Confidence -= v.requiredPenalty
		for _, symptom := range missing {
			outcome.Warnings = append(outcome.Warnings,
				fmt.Sprintf("Síntoma esperado no detectado para %s: %s", cond.Name, symptom))
		}
	}

	if age >= 0 && cond.Ages.IsRestricted() && !cond.Ages.Contains(age) {
		outcome.Status = domain.ValidationWarning
		outcome.Confidence -= v.agePenalty
		outcome.Warnings = append(outcome.Warnings,
			fmt.Sprintf("%s es atípica a los %d años (rango habitual %d-%d)",
				cond.Name, age, cond.Ages.Min, cond.Ages.Max))
	}

	if outcome.Confidence < 0 {
		outcome.Confidence = 0
	}
	return outcome
}

// missingRequired lists declared required symptoms absent from the
// extraction. One penalty applies regardless of how many are missing;
// each missing symptom still gets its own warning.
func missingRequired(cond domain.Condition, extraction *domain.ExtractionResult) []string {
	var missing []string
	for _, required := range cond.Required {
		if !extraction.Has(required) {
			missing = append(missing, required)
		}
	}
	return missing
}
