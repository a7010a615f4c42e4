package domain

import "context"

// Extractor converts raw user text into a deduplicated symptom set with
// provenance. Pure function of the input and its static tables.
type Extractor interface {
	Extract(text string) *ExtractionResult
}

// EmergencyChecker runs the deterministic highest-priority pass over
// the raw text and extraction. A critical verdict terminates the
// pipeline; Floor reports the minimum urgency implied by high/medium
// tier matches without terminating.
type EmergencyChecker interface {
	Check(text string, extraction *ExtractionResult) (EmergencyVerdict, bool)
	Floor(text string, extraction *ExtractionResult) (UrgencyLevel, string, bool)
}

// Classifier is the uniform adapter over an externally trained, frozen
// model. Score and Explain return ErrClassifierUnavailable when the
// model artifact could not be loaded or the adapter is tripped;
// identical symptom sets must yield identical scores.
type Classifier interface {
	Name() string
	Available() bool
	Score(ctx context.Context, extraction *ExtractionResult, age int) (*ClassifierScore, error)
	Explain(ctx context.Context, extraction *ExtractionResult, age int) (*ClassifierScore, error)
}

// CatalogSource loads condition records from a backing store. Fails
// with an error rather than a partial catalog when the source is
// malformed.
type CatalogSource interface {
	Load(ctx context.Context) ([]Condition, error)
}

// Triager is the orchestrator surface exposed to transport layers.
type Triager interface {
	Triage(ctx context.Context, text string, age int) (*TriageResult, error)
}

// HistoryStore persists completed triage results for audit and
// dashboard queries.
type HistoryStore interface {
	Save(ctx context.Context, record *TriageRecord) error
	Recent(ctx context.Context, limit int) ([]*TriageRecord, error)
	CountByCondition(ctx context.Context) (map[string]int, error)
	Ping(ctx context.Context) error
	Close() error
}
