package classifier

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/respicare/triage-engine/internal/domain"
)

// forestArtifact is a tiny two-class forest: class 0 when "fiebre" is
// absent, class 1 when present.
func forestArtifact() *Artifact {
	return &Artifact{
		Kind:       KindForest,
		Version:    "test",
		Vocabulary: []string{"fiebre", "tos", "dolor de garganta"},
		Classes: []Class{
			{ConditionID: 1, ConditionName: "Resfriado común"},
			{ConditionID: 9, ConditionName: "Influenza A (H1N1)"},
		},
		Trees: []Tree{
			{Nodes: []Node{
				{Feature: 0, Threshold: 0.5, Left: 1, Right: 2},
				{Feature: -1, Distribution: []float64{1, 0}},
				{Feature: -1, Distribution: []float64{0, 1}},
			}},
			{Nodes: []Node{
				{Feature: 0, Threshold: 0.5, Left: 1, Right: 2},
				{Feature: -1, Distribution: []float64{3, 1}},
				{Feature: -1, Distribution: []float64{1, 3}},
			}},
		},
	}
}

func gradientArtifact() *Artifact {
	return &Artifact{
		Kind:       KindGradient,
		Version:    "test",
		Vocabulary: []string{"fiebre", "tos"},
		Classes: []Class{
			{ConditionID: 1, ConditionName: "Resfriado común"},
			{ConditionID: 9, ConditionName: "Influenza A (H1N1)"},
		},
		LearningRate: 0.3,
		Trees: []Tree{
			{Class: 0, Nodes: []Node{
				{Feature: 0, Threshold: 0.5, Left: 1, Right: 2},
				{Feature: -1, Value: 2.0},
				{Feature: -1, Value: -1.0},
			}},
			{Class: 1, Nodes: []Node{
				{Feature: 0, Threshold: 0.5, Left: 1, Right: 2},
				{Feature: -1, Value: -1.0},
				{Feature: -1, Value: 2.0},
			}},
		},
	}
}

func extractionOf(symptoms ...string) *domain.ExtractionResult {
	r := &domain.ExtractionResult{}
	for _, s := range symptoms {
		r.Symptoms = append(r.Symptoms, domain.DetectedSymptom{
			Symptom: domain.Symptom{Canonical: s},
		})
	}
	return r
}

func TestArtifactValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Artifact)
		errMsg string
	}{
		{"valid", func(*Artifact) {}, ""},
		{"unknown kind", func(a *Artifact) { a.Kind = "svm" }, "unknown model kind"},
		{"empty vocabulary", func(a *Artifact) { a.Vocabulary = nil }, "empty feature vocabulary"},
		{"empty classes", func(a *Artifact) { a.Classes = nil }, "empty class list"},
		{"no trees", func(a *Artifact) { a.Trees = nil }, "no trees"},
		{"feature out of range", func(a *Artifact) { a.Trees[0].Nodes[0].Feature = 99 }, "feature index 99 out of range"},
		{"child out of range", func(a *Artifact) { a.Trees[0].Nodes[0].Left = 7 }, "child index out of range"},
		{"bad leaf distribution", func(a *Artifact) { a.Trees[0].Nodes[1].Distribution = []float64{1} }, "leaf distribution"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := forestArtifact()
			tt.mutate(a)

			err := a.Validate()

			if tt.errMsg == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.errMsg)
			}
		})
	}
}

func TestLoadArtifact(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "forest.json")
		data, err := json.Marshal(forestArtifact())
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, data, 0o644))

		loaded, err := LoadArtifact(path)

		require.NoError(t, err)
		assert.Equal(t, KindForest, loaded.Kind)
		assert.Len(t, loaded.Trees, 2)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadArtifact(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		_, err := LoadArtifact(path)
		assert.ErrorContains(t, err, "parsing model artifact")
	})
}

func TestVectorize(t *testing.T) {
	a := forestArtifact()
	extraction := extractionOf("fiebre alta", "tos seca", "fatiga extrema")

	features := a.Vectorize(extraction, 40)

	require.Len(t, features, a.FeatureCount())
	// Vocabulary slots: loose containment matches "fiebre alta" to
	// "fiebre" and "tos seca" to "tos".
	assert.Equal(t, 1.0, features[0])
	assert.Equal(t, 1.0, features[1])
	assert.Equal(t, 0.0, features[2])

	base := len(a.Vocabulary)
	assert.Equal(t, 3.0, features[base])       // symptom_count
	assert.InDelta(t, 3.0/7.0, features[base+1], 1e-9) // symptom_density
	assert.Equal(t, 1.0, features[base+2])     // has_fever
	assert.Equal(t, 0.0, features[base+3])     // respiratory_distress
	assert.Equal(t, 1.0, features[base+5])     // severity: "extrema"
	assert.Equal(t, 1.0, features[base+7])     // respiratory count: tos seca
	assert.Equal(t, 2.0, features[base+8])     // systemic: fiebre alta, fatiga extrema
	assert.InDelta(t, 0.4, features[base+9], 1e-9)
}

func TestFeatureName(t *testing.T) {
	a := forestArtifact()

	assert.Equal(t, "fiebre", a.FeatureName(0))
	assert.Equal(t, "symptom_count", a.FeatureName(len(a.Vocabulary)))
	assert.Equal(t, "patient_age_normalized", a.FeatureName(a.FeatureCount()-1))
}
