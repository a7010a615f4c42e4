// Package classifier adapts externally trained, frozen model artifacts
// into a uniform scoring interface, combines several of them through an
// ensemble resolver, and shields callers from model failures with a
// circuit breaker. Models are never trained here; an artifact that
// cannot be loaded makes its adapter unavailable, not broken.
package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/respicare/triage-engine/internal/domain"
)

// Model kinds a frozen artifact may declare.
const (
	KindForest   = "random_forest"
	KindGradient = "gradient_boosting"
)

// Engineered feature count appended after the symptom vocabulary:
// symptom_count, symptom_density, has_fever, respiratory_distress,
// has_pain, severity_indicators, chronic_indicators,
// respiratory_symptom_count, systemic_symptom_count, patient_age_normalized.
const engineeredFeatures = 10

// Artifact is a frozen model serialized at training time: the feature
// vocabulary, the class list, and the tree structures. Immutable after
// load.
type Artifact struct {
	Kind         string   `json:"kind"`
	Version      string   `json:"version"`
	Vocabulary   []string `json:"vocabulary"`
	Classes      []Class  `json:"classes"`
	Trees        []Tree   `json:"trees"`
	LearningRate float64  `json:"learning_rate,omitempty"`
	BaseScore    float64  `json:"base_score,omitempty"`
}

// Class ties a model output index to a catalog condition.
type Class struct {
	ConditionID   int    `json:"condition_id"`
	ConditionName string `json:"condition_name"`
}

// Tree is one decision tree. Gradient trees additionally carry the
// class index whose margin they boost.
type Tree struct {
	Class int    `json:"class,omitempty"`
	Nodes []Node `json:"nodes"`
}

// Node is one tree node, in a flat array addressed by index. A leaf
// has Feature == -1; a forest leaf carries a per-class distribution in
// Distribution, a gradient leaf carries a single margin in Value.
type Node struct {
	Feature      int       `json:"feature"`
	Threshold    float64   `json:"threshold"`
	Left         int       `json:"left"`
	Right        int       `json:"right"`
	Value        float64   `json:"value,omitempty"`
	Distribution []float64 `json:"distribution,omitempty"`
}

// IsLeaf reports whether the node terminates a path.
func (n Node) IsLeaf() bool {
	return n.Feature < 0
}

// LoadArtifact reads and validates a frozen model artifact from disk.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model artifact %s: %w", path, err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing model artifact %s: %w", path, err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	return &a, nil
}

// Validate checks structural integrity: known kind, non-empty
// vocabulary and classes, and every tree node index and feature index
// in range.
func (a *Artifact) Validate() error {
	if a.Kind != KindForest && a.Kind != KindGradient {
		return fmt.Errorf("unknown model kind %q", a.Kind)
	}
	if len(a.Vocabulary) == 0 {
		return fmt.Errorf("empty feature vocabulary")
	}
	if len(a.Classes) == 0 {
		return fmt.Errorf("empty class list")
	}
	if len(a.Trees) == 0 {
		return fmt.Errorf("no trees")
	}

	featureCount := a.FeatureCount()
	for ti, tree := range a.Trees {
		if a.Kind == KindGradient && (tree.Class < 0 || tree.Class >= len(a.Classes)) {
			return fmt.Errorf("tree %d: class index %d out of range", ti, tree.Class)
		}
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d: no nodes", ti)
		}
		for ni, node := range tree.Nodes {
			if node.IsLeaf() {
				if a.Kind == KindForest && len(node.Distribution) != len(a.Classes) {
					return fmt.Errorf("tree %d node %d: leaf distribution size %d, want %d",
						ti, ni, len(node.Distribution), len(a.Classes))
				}
				continue
			}
			if node.Feature >= featureCount {
				return fmt.Errorf("tree %d node %d: feature index %d out of range", ti, ni, node.Feature)
			}
			if node.Left < 0 || node.Left >= len(tree.Nodes) ||
				node.Right < 0 || node.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d: child index out of range", ti, ni)
			}
		}
	}
	return nil
}

// FeatureCount is the length of the feature vector the artifact was
// trained on: the symptom vocabulary plus the engineered tail.
func (a *Artifact) FeatureCount() int {
	return len(a.Vocabulary) + engineeredFeatures
}

// FeatureName returns the human-readable name of a feature index, used
// in attributions.
func (a *Artifact) FeatureName(i int) string {
	if i < len(a.Vocabulary) {
		return a.Vocabulary[i]
	}
	names := [engineeredFeatures]string{
		"symptom_count", "symptom_density", "has_fever",
		"respiratory_distress", "has_pain", "severity_indicators",
		"chronic_indicators", "respiratory_symptom_count",
		"systemic_symptom_count", "patient_age_normalized",
	}
	if j := i - len(a.Vocabulary); j >= 0 && j < len(names) {
		return names[j]
	}
	return fmt.Sprintf("feature_%d", i)
}

// Keyword groups for the engineered features. Frozen alongside the
// models: changing them invalidates every trained artifact.
var (
	respDistressKeywords = []string{"dificultad", "respirar", "disnea", "ahogo", "sibilancia"}
	painKeywords         = []string{"dolor", "ardor", "opresion", "opresión", "molestia"}
	severityKeywords     = []string{"intenso", "severa", "extremo", "extrema", "grave", "alto"}
	chronicKeywords      = []string{"semanas", "meses", "cronico", "crónico", "persistente"}
	respSymptomKeywords  = []string{"tos", "congestion", "congestión", "secrecion", "secreción", "estornudos", "picazon", "picazón"}
	systemicKeywords     = []string{"fiebre", "fatiga", "malestar", "cansancio", "debilidad"}
)

// Vectorize converts an extraction into the artifact's feature vector:
// one binary slot per vocabulary symptom (loose containment match, both
// directions) followed by the engineered tail.
func (a *Artifact) Vectorize(extraction *domain.ExtractionResult, age int) []float64 {
	names := extraction.SymptomNames()
	joined := strings.Join(names, " ")

	features := make([]float64, 0, a.FeatureCount())
	for _, vocab := range a.Vocabulary {
		features = append(features, boolFeature(extraction.Has(vocab)))
	}

	count := float64(len(names))
	features = append(features,
		count,
		count/7.0,
		boolFeature(strings.Contains(joined, "fiebre")),
		boolFeature(containsAny(joined, respDistressKeywords)),
		boolFeature(containsAny(joined, painKeywords)),
		boolFeature(containsAny(joined, severityKeywords)),
		boolFeature(containsAny(joined, chronicKeywords)),
		countMatching(names, respSymptomKeywords),
		countMatching(names, systemicKeywords),
		float64(age)/100.0,
	)
	return features
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func countMatching(symptoms, keywords []string) float64 {
	var n float64
	for _, s := range symptoms {
		if containsAny(s, keywords) {
			n++
		}
	}
	return n
}

// evaluate walks one tree for a feature vector and returns the leaf.
func (t *Tree) evaluate(features []float64) Node {
	node := t.Nodes[0]
	for !node.IsLeaf() {
		if features[node.Feature] <= node.Threshold {
			node = t.Nodes[node.Left]
		} else {
			node = t.Nodes[node.Right]
		}
	}
	return node
}
