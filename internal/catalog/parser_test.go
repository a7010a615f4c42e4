package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/respicare/triage-engine/internal/domain"
)

func TestParseMarkdown_EmbeddedDiseaseList(t *testing.T) {
	// Arrange & Act
	conditions, err := ParseMarkdown(embeddedDiseaseList)

	// Assert
	require.NoError(t, err)
	assert.Len(t, conditions, 30)

	byName := make(map[string]domain.Condition, len(conditions))
	for _, c := range conditions {
		assert.NoError(t, c.Validate())
		byName[c.Name] = c
	}

	cold := byName["Rinofaringitis aguda (resfriado común)"]
	assert.Equal(t, 1, cold.ID)
	assert.Equal(t, domain.UrgencyLow, cold.Urgency)
	assert.Contains(t, cold.Symptoms, "congestión nasal")
	assert.Equal(t, "INFECCIONES AGUDAS DE VÍAS RESPIRATORIAS SUPERIORES", cold.Category)

	severe := byName["Neumonía grave"]
	assert.Equal(t, domain.UrgencyHigh, severe.Urgency)
	assert.Equal(t, domain.SeverityExtreme, severe.Severity)
	assert.Equal(t, []string{"fiebre", "tos"}, severe.Required)

	critical := byName["Neumonía muy grave"]
	assert.Equal(t, domain.UrgencyCritical, critical.Urgency)
	assert.Equal(t, domain.SeverityExtreme, critical.Severity)
	assert.Greater(t, critical.MatchWeight, severe.MatchWeight)
}

func TestParseMarkdown_DerivedFields(t *testing.T) {
	// Arrange
	const list = `# Lista

## PRUEBA

1. **Bronquiolitis aguda**: tos, sibilancias, dificultad respiratoria, taquipnea
2. **Laringitis obstructiva aguda (crup)**: tos perruna, estridor inspiratorio, fiebre
`

	// Act
	conditions, err := ParseMarkdown(list)

	// Assert
	require.NoError(t, err)
	require.Len(t, conditions, 2)

	bronchiolitis := conditions[0]
	assert.Equal(t, domain.AgeRange{Min: 0, Max: 3}, bronchiolitis.Ages)
	assert.True(t, bronchiolitis.Ages.IsRestricted())
	assert.Empty(t, bronchiolitis.Required)
	assert.Equal(t, domain.UrgencyHigh, bronchiolitis.Urgency)
	assert.Contains(t, bronchiolitis.Keywords, "sibilancias")

	croup := conditions[1]
	assert.Equal(t, domain.AgeRange{Min: 0, Max: 6}, croup.Ages)
	assert.Equal(t, domain.UrgencyMedium, croup.Urgency)
}

func TestParseMarkdown_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty document", content: ""},
		{name: "headings only", content: "# Lista\n\n## SECCIÓN\n"},
		{name: "no matching entries", content: "just prose, no numbered entries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conditions, err := ParseMarkdown(tt.content)

			assert.Error(t, err)
			assert.Nil(t, conditions)
		})
	}
}

func TestDetermineUrgency_TierPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected domain.UrgencyLevel
	}{
		{"critical beats high", "cianosis severa, taquipnea", domain.UrgencyCritical},
		{"high beats medium", "hemoptisis, fiebre alta", domain.UrgencyHigh},
		{"medium alone", "fiebre alta, tos", domain.UrgencyMedium},
		{"no keywords", "tos leve, estornudos", domain.UrgencyLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, determineUrgency(tt.text))
		})
	}
}
