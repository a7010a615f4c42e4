package domain

import "time"

// Sentinel condition names for results that are not a specific catalog
// diagnosis.
const (
	ConditionEmergency    = "EMERGENCIA MÉDICA"
	ConditionUnclassified = "Infección respiratoria aguda (no especificada)"
	ConditionNeedsInfo    = "Información insuficiente"
)

// EmergencyAction is the fixed action message attached to a critical
// emergency verdict.
const EmergencyAction = "Buscar atención médica inmediata"

// ValidationStatus reflects whether the medical validator accepted the
// hypothesis cleanly or flagged it.
type ValidationStatus string

const (
	ValidationPassed  ValidationStatus = "passed"
	ValidationWarning ValidationStatus = "warning"
)

// IsValid reports whether the status is one of the known values.
func (v ValidationStatus) IsValid() bool {
	return v == ValidationPassed || v == ValidationWarning
}

// ExplanationEntry names one symptom or model feature that influenced
// the final hypothesis, most influential first in the result list.
type ExplanationEntry struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
	Source string  `json:"source"` // "classifier", "pattern", "validator"
}

// Explanation entry sources.
const (
	ExplainSourceClassifier = "classifier"
	ExplainSourcePattern    = "pattern"
	ExplainSourceValidator  = "validator"
)

// TriageResult is the final, immutable output of the triage pipeline:
// one per request.
type TriageResult struct {
	RequestID      string             `json:"request_id"`
	ConditionID    int                `json:"condition_id,omitempty"`
	ConditionName  string             `json:"condition"`
	Category       string             `json:"category,omitempty"`
	Confidence     float64            `json:"confidence"`
	Urgency        UrgencyLevel       `json:"urgency"`
	Severity       SeverityLevel      `json:"severity"`
	IsEmergency    bool               `json:"is_emergency"`
	EmergencyMatch string             `json:"emergency_match,omitempty"`
	Action         string             `json:"action,omitempty"`
	Validation     ValidationStatus   `json:"validation_status"`
	Warnings       []string           `json:"warnings,omitempty"`
	Explanation    []ExplanationEntry `json:"explanation,omitempty"`
	Alternatives   []RankedPrediction `json:"top_alternatives,omitempty"`
	Symptoms       []string           `json:"detected_symptoms,omitempty"`
	NeedsFollowUp  bool               `json:"needs_followup,omitempty"`
	Recommendation string             `json:"recommendation,omitempty"`
	ProcessingTime time.Duration      `json:"processing_time_ms"`
	Timestamp      time.Time          `json:"timestamp"`
	ModelUsed      string             `json:"model_used,omitempty"`
}

// Clone returns a deep copy. Cached results are shared across
// requests; callers that mutate a result (urgency floor, warnings)
// must work on a clone so concurrent requests never touch the same
// backing arrays.
func (t *TriageResult) Clone() *TriageResult {
	copied := *t
	if t.Warnings != nil {
		copied.Warnings = append([]string(nil), t.Warnings...)
	}
	if t.Explanation != nil {
		copied.Explanation = append([]ExplanationEntry(nil), t.Explanation...)
	}
	if t.Alternatives != nil {
		copied.Alternatives = append([]RankedPrediction(nil), t.Alternatives...)
	}
	if t.Symptoms != nil {
		copied.Symptoms = append([]string(nil), t.Symptoms...)
	}
	return &copied
}

// LogFields returns structured logging fields for the triage audit
// trail.
func (t *TriageResult) LogFields() map[string]any {
	return map[string]any{
		"request_id":    t.RequestID,
		"condition":     t.ConditionName,
		"confidence":    t.Confidence,
		"urgency":       string(t.Urgency),
		"severity":      string(t.Severity),
		"is_emergency":  t.IsEmergency,
		"validation":    string(t.Validation),
		"symptom_count": len(t.Symptoms),
		"model_used":    t.ModelUsed,
	}
}

// EmergencyVerdict is the output of the emergency rule checker when a
// critical-tier keyword matched. It overrides every downstream stage.
type EmergencyVerdict struct {
	IsEmergency bool         `json:"is_emergency"`
	Urgency     UrgencyLevel `json:"urgency"`
	Matched     string       `json:"matched_keyword"`
	Warning     string       `json:"warning"`
	Action      string       `json:"action"`
}
