package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/respicare/triage-engine/internal/domain"
)

func TestBuildExplanation_AttributionsPreferred(t *testing.T) {
	attributions := []domain.Attribution{
		{Feature: "fiebre", Contribution: 0.4},
		{Feature: "tos seca", Contribution: -0.2},
		{Feature: "fatiga", Contribution: 0.1},
	}

	entries := buildExplanation(attributions, []string{"fiebre"}, nil, 2)

	require.Len(t, entries, 2)
	assert.Equal(t, "fiebre", entries[0].Label)
	assert.Equal(t, domain.ExplainSourceClassifier, entries[0].Source)
	assert.InDelta(t, 0.4, entries[0].Weight, 1e-9)
	assert.Equal(t, "tos seca", entries[1].Label)
}

func TestBuildExplanation_FallsBackToMatchedSymptoms(t *testing.T) {
	entries := buildExplanation(nil, []string{"fiebre alta", "tos seca"}, nil, 5)

	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, domain.ExplainSourcePattern, e.Source)
	}
}

func TestBuildExplanation_WarningsAppendedAsCaveats(t *testing.T) {
	warnings := []string{"Síntoma esperado no detectado para Neumonía viral: fiebre"}

	entries := buildExplanation(nil, []string{"tos seca"}, warnings, 5)

	require.Len(t, entries, 2)
	last := entries[len(entries)-1]
	assert.Equal(t, domain.ExplainSourceValidator, last.Source)
	assert.Equal(t, warnings[0], last.Label)
}

func TestBuildExplanation_Deterministic(t *testing.T) {
	attributions := []domain.Attribution{
		{Feature: "fiebre", Contribution: 0.4},
		{Feature: "tos", Contribution: 0.4},
	}

	first := buildExplanation(attributions, nil, []string{"w"}, 5)
	second := buildExplanation(attributions, nil, []string{"w"}, 5)

	assert.Equal(t, first, second)
}

func TestRecommendationFor(t *testing.T) {
	assert.Contains(t, recommendationFor(domain.UrgencyCritical), "EMERGENCIA")
	assert.Contains(t, recommendationFor(domain.UrgencyHigh), "URGENTE")
	assert.Contains(t, recommendationFor(domain.UrgencyMedium), "24 horas")
	assert.Contains(t, recommendationFor(domain.UrgencyLow), "monitorear")
	// Unknown tiers fall back to the low-urgency guidance.
	assert.Equal(t, recommendationFor(domain.UrgencyLow), recommendationFor(domain.UrgencyLevel("otra")))
}
