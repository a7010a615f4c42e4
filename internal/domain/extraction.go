package domain

// DetectedSymptom is one symptom recognized in the user's text, with
// provenance back to the phrase or token that matched it.
type DetectedSymptom struct {
	Symptom    Symptom `json:"symptom"`
	MatchedOn  string  `json:"matched_on"`
	Span       [2]int  `json:"span"`
	Confidence float64 `json:"confidence"`
}

// ExtractionResult is the per-request output of the symptom extractor:
// the deduplicated symptom set plus the raw token sequence. It is
// created fresh per request and never persisted.
type ExtractionResult struct {
	Symptoms []DetectedSymptom `json:"symptoms"`
	Tokens   []string          `json:"tokens"`
	RawText  string            `json:"-"`
}

// SymptomNames returns the canonical names of all detected symptoms,
// in detection order. The extractor guarantees no duplicates.
func (r *ExtractionResult) SymptomNames() []string {
	names := make([]string, 0, len(r.Symptoms))
	for _, s := range r.Symptoms {
		names = append(names, s.Symptom.Canonical)
	}
	return names
}

// Has reports whether the extraction contains a symptom whose canonical
// name loosely matches phrase.
func (r *ExtractionResult) Has(phrase string) bool {
	for _, s := range r.Symptoms {
		if containsEither(s.Symptom.Canonical, phrase) {
			return true
		}
	}
	return false
}

// Count returns the number of distinct symptoms detected.
func (r *ExtractionResult) Count() int {
	return len(r.Symptoms)
}
