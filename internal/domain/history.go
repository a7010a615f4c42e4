package domain

import "time"

// TriageRecord is the persisted audit form of a triage result. The
// input text itself is not stored, only its hash, so the audit trail
// carries no free-text patient data.
type TriageRecord struct {
	ID             string        `json:"id"`
	RequestID      string        `json:"request_id"`
	InputHash      string        `json:"input_hash"`
	Symptoms       []string      `json:"symptoms"`
	ConditionName  string        `json:"condition"`
	Confidence     float64       `json:"confidence"`
	Urgency        UrgencyLevel  `json:"urgency"`
	Severity       SeverityLevel `json:"severity"`
	IsEmergency    bool          `json:"is_emergency"`
	Validation     string        `json:"validation_status"`
	ModelUsed      string        `json:"model_used"`
	DurationMS     int64         `json:"duration_ms"`
	CreatedAt      time.Time     `json:"created_at"`
}
