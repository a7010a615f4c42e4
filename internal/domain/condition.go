package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Symptom is a canonical lowercase phrase, optionally annotated with an
// intensity qualifier and a category tag. Symptoms are value objects:
// equality is by canonical text.
type Symptom struct {
	Canonical string             `json:"canonical"`
	Intensity IntensityQualifier `json:"intensity,omitempty"`
	Category  SymptomCategory    `json:"category,omitempty"`
}

// Equal reports whether two symptoms name the same canonical phrase.
func (s Symptom) Equal(other Symptom) bool {
	return s.Canonical == other.Canonical
}

// AgeRange bounds the patient ages for which a condition is plausible.
// A zero-value range (0,0) means no age restriction.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// IsRestricted reports whether the range actually constrains ages.
func (r AgeRange) IsRestricted() bool {
	return r.Min != 0 || r.Max != 0
}

// Contains reports whether age falls inside the range. Unrestricted
// ranges contain every age.
func (r AgeRange) Contains(age int) bool {
	if !r.IsRestricted() {
		return true
	}
	return age >= r.Min && age <= r.Max
}

// Condition is a disease record from the reference catalog. Conditions
// are loaded once at startup and are immutable for the lifetime of a
// catalog snapshot; a reload replaces the whole set atomically.
type Condition struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Symptoms    []string        `json:"symptoms"`
	SymptomText string          `json:"symptom_text"`
	Urgency     UrgencyLevel    `json:"urgency"`
	Severity    SeverityLevel   `json:"severity"`
	Pathogen    string          `json:"pathogen,omitempty"`
	Keywords    []string        `json:"keywords"`
	Required    []string        `json:"required_symptoms,omitempty"`
	Ages        AgeRange        `json:"age_range,omitempty"`
	MatchWeight float64         `json:"match_weight"`
}

// Validate ensures the condition record meets catalog integrity
// requirements before it is admitted into a snapshot.
func (c *Condition) Validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("condition validation: %w", errors.New("ID must be positive"))
	}
	if c.Name == "" {
		return fmt.Errorf("condition validation: %w", errors.New("name is required"))
	}
	if len(c.Symptoms) == 0 {
		return fmt.Errorf("condition validation: %w", errors.New("at least one reference symptom is required"))
	}
	if !c.Urgency.IsValid() {
		return fmt.Errorf("condition validation: %w", ErrInvalidUrgency)
	}
	if !c.Severity.IsValid() {
		return fmt.Errorf("condition validation: %w", ErrInvalidSeverity)
	}
	if c.MatchWeight <= 0 {
		return fmt.Errorf("condition validation: %w", errors.New("match weight must be positive"))
	}
	return nil
}

// HasSymptom reports whether phrase matches one of the condition's
// reference symptoms by containment in either direction, the same loose
// matching the scorer uses.
func (c *Condition) HasSymptom(phrase string) bool {
	for _, ref := range c.Symptoms {
		if containsEither(ref, phrase) {
			return true
		}
	}
	return false
}

// Canonical phrases are lowercase already, so plain containment works.
func containsEither(a, b string) bool {
	return a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a))
}
