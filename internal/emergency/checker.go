// Package emergency implements the deterministic keyword pass that runs
// before any scoring. A critical-tier match declares a medical
// emergency and terminates the pipeline; high and medium tier matches
// only establish a minimum urgency that later stages cannot lower.
package emergency

import (
	"fmt"
	"strings"

	"github.com/respicare/triage-engine/internal/domain"
)

// Keyword tiers. Scanned critical first; within a tier, declaration
// order decides which keyword gets reported.
var (
	criticalKeywords = []string{
		"cianosis",
		"dificultad respiratoria extrema",
		"dificultad extrema para respirar",
		"no puedo respirar",
		"asfixia",
		"confusion severa",
		"confusión severa",
		"hipotension marcada",
		"hipotensión marcada",
		"taquicardia extrema",
		"hemoptisis masiva",
		"shock",
		"coma",
		"convulsiones respiratorias",
	}

	highKeywords = []string{
		"dificultad respiratoria marcada",
		"fiebre muy alta",
		"dolor toracico severo",
		"dolor torácico severo",
		"escalofrios intensos",
		"escalofríos intensos",
		"desorientacion",
		"desorientación",
		"taquicardia",
		"hipotensión",
		"hipotension",
		"hemoptisis",
	}

	mediumKeywords = []string{
		"dificultad respiratoria moderada",
		"fiebre",
		"tos persistente",
		"dolor de garganta severo",
		"fatiga extrema",
		"malestar general intenso",
	}

	lowKeywords = []string{
		"congestion nasal",
		"congestión nasal",
		"estornudos",
		"tos leve",
		"malestar ligero",
		"dolor de cabeza leve",
		"picazon nasal",
		"picazón nasal",
	}
)

// RuleChecker implements domain.EmergencyChecker over the static tier
// tables. Stateless and safe for concurrent use.
type RuleChecker struct{}

// NewRuleChecker returns the checker.
func NewRuleChecker() *RuleChecker {
	return &RuleChecker{}
}

// Check scans the raw text and the extracted symptom names for a
// critical-tier keyword. On a match it returns a terminal verdict:
// urgency critical, fixed action, confidence handled by the caller at
// 1.0. No match returns ok=false and the pipeline continues.
func (c *RuleChecker) Check(text string, extraction *domain.ExtractionResult) (domain.EmergencyVerdict, bool) {
	haystack := buildHaystack(text, extraction)

	for _, keyword := range criticalKeywords {
		if strings.Contains(haystack, keyword) {
			return domain.EmergencyVerdict{
				IsEmergency: true,
				Urgency:     domain.UrgencyCritical,
				Matched:     keyword,
				Warning:     fmt.Sprintf("ATENCIÓN MÉDICA URGENTE REQUERIDA - Síntoma crítico detectado: %s", keyword),
				Action:      domain.EmergencyAction,
			}, true
		}
	}
	return domain.EmergencyVerdict{}, false
}

// Floor scans the high and medium tiers and reports the minimum urgency
// the input implies, with the keyword that triggered it. Like Check it
// scans the extracted canonical names too, so a spelling the extractor
// collapses into a tier keyword still raises the floor. The floor never
// terminates the pipeline and never lowers a higher urgency decided
// elsewhere.
func (c *RuleChecker) Floor(text string, extraction *domain.ExtractionResult) (domain.UrgencyLevel, string, bool) {
	haystack := buildHaystack(text, extraction)

	for _, keyword := range highKeywords {
		if strings.Contains(haystack, keyword) {
			return domain.UrgencyHigh, keyword, true
		}
	}
	for _, keyword := range mediumKeywords {
		if strings.Contains(haystack, keyword) {
			return domain.UrgencyMedium, keyword, true
		}
	}
	return domain.UrgencyLow, "", false
}

// buildHaystack joins the lowered raw text with the canonical symptom
// names, so a keyword detected by extraction still trips the rules even
// when the raw spelling differs.
func buildHaystack(text string, extraction *domain.ExtractionResult) string {
	parts := []string{strings.ToLower(text)}
	if extraction != nil {
		parts = append(parts, extraction.SymptomNames()...)
	}
	return strings.Join(parts, " ")
}
