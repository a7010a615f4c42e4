// Package catalog holds the reference catalog of known respiratory
// conditions: parsing from the disease list source, derived lookup
// indices, and atomic snapshot publication for hot reload.
package catalog

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/respicare/triage-engine/internal/domain"
)

// entryPattern matches one disease entry in the markdown list:
// "12. **Name**: symptom, symptom, ...".
var entryPattern = regexp.MustCompile(`^(\d+)\.\s*\*\*(.*?)\*\*:\s*(.+)$`)

// ParseMarkdown parses the disease list format used by the catalog
// source: "## SECTION" headings followed by numbered bold entries.
// Urgency, severity, keyword aliases and validation rules are derived
// from the symptom text, the same heuristics the catalog has always
// used for entries without explicit labels.
func ParseMarkdown(content string) ([]domain.Condition, error) {
	var conditions []domain.Condition
	section := "general"

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "## ") {
			section = strings.TrimSpace(strings.TrimPrefix(line, "## "))
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		m := entryPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		id, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("parsing condition id %q: %w", m[1], err)
		}
		name := strings.TrimSpace(m[2])
		symptomText := strings.TrimSpace(m[3])

		var symptoms []string
		for _, s := range strings.Split(symptomText, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				symptoms = append(symptoms, strings.ToLower(s))
			}
		}

		urgency := determineUrgency(symptomText)
		severity := determineSeverity(symptomText)

		cond := domain.Condition{
			ID:          id,
			Name:        name,
			Category:    section,
			Symptoms:    symptoms,
			SymptomText: symptomText,
			Urgency:     urgency,
			Severity:    severity,
			Keywords:    extractKeywords(symptomText),
			Required:    requiredSymptomsFor(name),
			Ages:        ageRangeFor(name),
			MatchWeight: matchWeight(urgency, severity),
		}
		if err := cond.Validate(); err != nil {
			return nil, fmt.Errorf("condition %d (%s): %w", id, name, err)
		}

		conditions = append(conditions, cond)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning disease list: %w", err)
	}
	if len(conditions) == 0 {
		return nil, fmt.Errorf("disease list contained no condition entries")
	}

	return conditions, nil
}

// criticalKeywords through lowKeywords grade the urgency of a symptom
// description. Checked highest tier first; first hit wins.
var (
	criticalKeywords = []string{
		"insuficiencia respiratoria", "shock séptico", "falla multiorgánica",
		"cianosis severa", "alteración de conciencia", "dificultad extrema",
		"dificultad respiratoria extrema", "hipoxemia refractaria",
		"incapacidad para hablar", "síncope",
	}
	highKeywords = []string{
		"dificultad respiratoria marcada", "taquipnea", "hipotensión",
		"requiere hospitalización", "dificultad respiratoria severa",
		"cianosis", "hemoptisis", "disnea severa", "disnea súbita",
		"esputo con sangre",
	}
	mediumKeywords = []string{
		"fiebre alta", "dolor intenso", "dificultad respiratoria",
		"confusión", "fiebre moderada", "dolor muscular intenso",
		"estridor", "disnea",
	}
)

func determineUrgency(symptomText string) domain.UrgencyLevel {
	text := strings.ToLower(symptomText)

	for _, kw := range criticalKeywords {
		if strings.Contains(text, kw) {
			return domain.UrgencyCritical
		}
	}
	for _, kw := range highKeywords {
		if strings.Contains(text, kw) {
			return domain.UrgencyHigh
		}
	}
	for _, kw := range mediumKeywords {
		if strings.Contains(text, kw) {
			return domain.UrgencyMedium
		}
	}
	return domain.UrgencyLow
}

func determineSeverity(symptomText string) domain.SeverityLevel {
	text := strings.ToLower(symptomText)

	for _, kw := range []string{"extrema", "marcada", "severa", "severo", "insuficiencia", "shock"} {
		if strings.Contains(text, kw) {
			return domain.SeverityExtreme
		}
	}
	for _, kw := range []string{"alta", "intenso", "intensa", "grave", "súbita", "hemoptisis"} {
		if strings.Contains(text, kw) {
			return domain.SeverityHigh
		}
	}
	for _, kw := range []string{"moderada", "moderado", "persistente", "progresiva"} {
		if strings.Contains(text, kw) {
			return domain.SeverityModerate
		}
	}
	return domain.SeverityMild
}

// keyTerms are the alias keywords mined from symptom descriptions for
// fast phrase matching.
var keyTerms = []string{
	"tos", "fiebre", "dolor", "dificultad respiratoria", "disnea",
	"esputo", "flema", "fatiga", "escalofríos", "cianosis", "hemoptisis",
	"sibilancias", "dolor torácico", "dolor de pecho", "estridor",
	"taquipnea", "congestión", "secreción nasal", "ronquera",
	"confusión", "vómito", "náusea", "diarrea", "estornudos",
	"picazón", "lagrimeo",
}

func extractKeywords(symptomText string) []string {
	text := strings.ToLower(symptomText)
	var keywords []string
	for _, term := range keyTerms {
		if strings.Contains(text, term) {
			keywords = append(keywords, term)
		}
	}
	return keywords
}

// requiredRules declares symptoms a condition cannot plausibly be
// diagnosed without, keyed by a substring of the condition name.
var requiredRules = []struct {
	nameContains string
	required     []string
}{
	{"asma", []string{"sibilancias", "dificultad respiratoria"}},
	{"asmático", []string{"sibilancias", "dificultad respiratoria"}},
	{"neumonía", []string{"fiebre", "tos"}},
	{"bronquitis", []string{"tos"}},
	{"covid", []string{"fiebre", "tos"}},
}

func requiredSymptomsFor(name string) []string {
	lower := strings.ToLower(name)
	for _, rule := range requiredRules {
		if strings.Contains(lower, rule.nameContains) {
			return rule.required
		}
	}
	return nil
}

// ageRules restrict conditions that present almost exclusively in a
// given age band.
var ageRules = []struct {
	nameContains string
	ages         domain.AgeRange
}{
	{"bronquiolitis", domain.AgeRange{Min: 0, Max: 3}},
	{"crup", domain.AgeRange{Min: 0, Max: 6}},
}

func ageRangeFor(name string) domain.AgeRange {
	lower := strings.ToLower(name)
	for _, rule := range ageRules {
		if strings.Contains(lower, rule.nameContains) {
			return rule.ages
		}
	}
	return domain.AgeRange{}
}

// matchWeight computes the per-condition pattern-match weight. Rarer,
// more diagnostic symptom sets sit in higher urgency/severity tiers and
// earn a higher per-match weight than common mild presentations.
func matchWeight(urgency domain.UrgencyLevel, severity domain.SeverityLevel) float64 {
	weight := 1.0 + float64(urgency.Rank())
	if severity.Rank() >= domain.SeverityHigh.Rank() {
		weight++
	}
	return weight
}
