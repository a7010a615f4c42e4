// Package domain contains the core business entities and types for
// respiratory symptom triage: urgency and severity tiers, symptom and
// condition value objects, and the data that flows through the triage
// pipeline from free-text extraction to the final triage result.
package domain

import "errors"

// UrgencyLevel is the ordinal classification of how fast medical
// attention is needed. Tier values are the Spanish labels used by the
// reference catalog and the API surface.
type UrgencyLevel string

const (
	UrgencyCritical UrgencyLevel = "critica"
	UrgencyHigh     UrgencyLevel = "alta"
	UrgencyMedium   UrgencyLevel = "media"
	UrgencyLow      UrgencyLevel = "baja"
)

// SeverityLevel is the ordinal classification of symptom intensity,
// independent of urgency.
type SeverityLevel string

const (
	SeverityExtreme  SeverityLevel = "extrema"
	SeverityHigh     SeverityLevel = "alta"
	SeverityModerate SeverityLevel = "moderada"
	SeverityMild     SeverityLevel = "leve"
)

// SymptomCategory tags a symptom with its clinical family.
type SymptomCategory string

const (
	CategoryRespiratory  SymptomCategory = "respiratory"
	CategoryFever        SymptomCategory = "fever"
	CategoryPain         SymptomCategory = "pain"
	CategoryFatigue      SymptomCategory = "fatigue"
	CategoryDigestive    SymptomCategory = "digestive"
	CategoryNeurological SymptomCategory = "neurological"
)

// IntensityQualifier annotates a symptom with how strongly it presents.
type IntensityQualifier string

const (
	IntensityMild     IntensityQualifier = "leve"
	IntensityModerate IntensityQualifier = "moderado"
	IntensityIntense  IntensityQualifier = "intenso"
)

// Validation errors for triage data integrity.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidUrgency  = errors.New("invalid urgency level")
	ErrInvalidSeverity = errors.New("invalid severity level")
	ErrInvalidCategory = errors.New("invalid symptom category")
)

// IsValid reports whether the urgency level is a known tier. Only valid
// tiers may enter clinical decision-making.
func (u UrgencyLevel) IsValid() bool {
	switch u {
	case UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	default:
		return false
	}
}

// String returns the catalog label for the urgency level.
func (u UrgencyLevel) String() string {
	return string(u)
}

// Rank returns the ordinal position of the urgency level, highest
// first: critical=3, high=2, medium=1, low=0. Unknown levels rank
// below low so they can never displace a real tier.
func (u UrgencyLevel) Rank() int {
	switch u {
	case UrgencyCritical:
		return 3
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	case UrgencyLow:
		return 0
	default:
		return -1
	}
}

// AtLeast reports whether u is at least as urgent as floor.
func (u UrgencyLevel) AtLeast(floor UrgencyLevel) bool {
	return u.Rank() >= floor.Rank()
}

// Max returns the more urgent of the two levels.
func (u UrgencyLevel) Max(other UrgencyLevel) UrgencyLevel {
	if other.Rank() > u.Rank() {
		return other
	}
	return u
}

// LogFields returns structured logging fields for audit trails.
func (u UrgencyLevel) LogFields() map[string]any {
	return map[string]any{
		"urgency":          string(u),
		"urgency_rank":     u.Rank(),
		"requires_urgency": u.RequiresImmediateCare(),
	}
}

// RequiresImmediateCare reports whether the tier demands attention
// within hours rather than days.
func (u UrgencyLevel) RequiresImmediateCare() bool {
	switch u {
	case UrgencyCritical, UrgencyHigh:
		return true
	default:
		return false
	}
}

// IsValid reports whether the severity level is a known tier.
func (s SeverityLevel) IsValid() bool {
	switch s {
	case SeverityExtreme, SeverityHigh, SeverityModerate, SeverityMild:
		return true
	default:
		return false
	}
}

// String returns the catalog label for the severity level.
func (s SeverityLevel) String() string {
	return string(s)
}

// Rank returns the ordinal position of the severity level, highest
// first: extreme=3 down to mild=0.
func (s SeverityLevel) Rank() int {
	switch s {
	case SeverityExtreme:
		return 3
	case SeverityHigh:
		return 2
	case SeverityModerate:
		return 1
	case SeverityMild:
		return 0
	default:
		return -1
	}
}

// IsValid reports whether the category belongs to the fixed enumeration.
func (c SymptomCategory) IsValid() bool {
	switch c {
	case CategoryRespiratory, CategoryFever, CategoryPain,
		CategoryFatigue, CategoryDigestive, CategoryNeurological:
		return true
	default:
		return false
	}
}

// IsValid reports whether the intensity qualifier is recognized.
func (q IntensityQualifier) IsValid() bool {
	switch q {
	case IntensityMild, IntensityModerate, IntensityIntense:
		return true
	default:
		return false
	}
}
