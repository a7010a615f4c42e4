// Package extract converts free-text Spanish symptom descriptions into
// a deduplicated, categorized symptom set. Extraction is deterministic:
// the same input always yields the same symptom set in the same order.
package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/respicare/triage-engine/internal/domain"
)

// Match confidences by provenance. A multi-word phrase is stronger
// evidence than a lone token.
const (
	phraseConfidence = 0.9
	tokenConfidence  = 0.8
)

// SymptomExtractor implements domain.Extractor over the static phrase
// and token tables. Stateless and safe for concurrent use.
type SymptomExtractor struct{}

// NewSymptomExtractor returns the extractor.
func NewSymptomExtractor() *SymptomExtractor {
	return &SymptomExtractor{}
}

// Extract tokenizes the text and runs the phrase pass followed by the
// token pass. Each canonical symptom appears at most once; a phrase
// match always wins over a later token match for the same symptom.
func (e *SymptomExtractor) Extract(text string) *domain.ExtractionResult {
	lower := strings.ToLower(text)
	result := &domain.ExtractionResult{
		Tokens:  Tokenize(text),
		RawText: text,
	}

	seen := make(map[string]bool)
	var spans [][2]int

	for _, phrase := range symptomPhrases {
		idx := strings.Index(lower, phrase)
		if idx < 0 {
			continue
		}
		span := [2]int{idx, idx + len(phrase)}
		if coveredBy(spans, span) {
			continue
		}
		canonical := canonicalFor(phrase)
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		spans = append(spans, span)
		result.Symptoms = append(result.Symptoms, domain.DetectedSymptom{
			Symptom: domain.Symptom{
				Canonical: canonical,
				Intensity: intensityAfter(lower, span[1]),
				Category:  categoryTable[canonical],
			},
			MatchedOn:  phrase,
			Span:       span,
			Confidence: phraseConfidence,
		})
	}

	for _, token := range result.Tokens {
		canonical, ok := tokenPatterns[token]
		if !ok || seen[canonical] {
			continue
		}
		seen[canonical] = true
		idx := strings.Index(lower, token)
		span := [2]int{idx, idx + len(token)}
		result.Symptoms = append(result.Symptoms, domain.DetectedSymptom{
			Symptom: domain.Symptom{
				Canonical: canonical,
				Intensity: intensityAfter(lower, span[1]),
				Category:  categoryTable[canonical],
			},
			MatchedOn:  token,
			Span:       span,
			Confidence: tokenConfidence,
		})
	}

	return result
}

// Tokenize lowercases the text, strips punctuation while preserving
// accented letters and ñ, and drops stop words and tokens shorter than
// three characters.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	var tokens []string
	for _, token := range strings.Fields(clean) {
		if utf8.RuneCountInString(token) < 3 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// canonicalFor collapses spelling variants of a phrase to the canonical
// symptom name.
func canonicalFor(phrase string) string {
	if canonical, ok := phraseCanonical[phrase]; ok {
		return canonical
	}
	return phrase
}

// coveredBy reports whether span lies entirely inside an already
// matched span. Keeps "dolor de garganta" from re-matching inside a
// longer phrase that was matched first.
func coveredBy(spans [][2]int, span [2]int) bool {
	for _, s := range spans {
		if span[0] >= s[0] && span[1] <= s[1] {
			return true
		}
	}
	return false
}

// intensityAfter inspects the word immediately following a match for an
// intensity qualifier, as in "tos leve" or "dolor de cabeza intenso".
func intensityAfter(lower string, end int) domain.IntensityQualifier {
	rest := strings.TrimLeft(lower[min(end, len(lower)):], " \t,.;:")
	next, _, _ := strings.Cut(rest, " ")
	next = strings.Trim(next, ",.;:!?")
	return intensityWords[next]
}
