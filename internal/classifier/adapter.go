package classifier

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/respicare/triage-engine/internal/domain"
)

// Adapter exposes one frozen model artifact through domain.Classifier.
// A missing or malformed artifact makes the adapter permanently
// unavailable; it never errors at construction so the rest of the
// pipeline can start without it.
type Adapter struct {
	name     string
	artifact *Artifact
	log      *logrus.Logger
}

// NewAdapter loads the artifact at path. Load failures are logged and
// leave the adapter unavailable.
func NewAdapter(name, path string, logger *logrus.Logger) *Adapter {
	artifact, err := LoadArtifact(path)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"model": name,
			"path":  path,
		}).Warn("Model artifact unavailable, adapter disabled")
		return &Adapter{name: name, log: logger}
	}

	logger.WithFields(logrus.Fields{
		"model":      name,
		"kind":       artifact.Kind,
		"version":    artifact.Version,
		"vocabulary": len(artifact.Vocabulary),
		"classes":    len(artifact.Classes),
		"trees":      len(artifact.Trees),
	}).Info("Model artifact loaded")
	return &Adapter{name: name, artifact: artifact, log: logger}
}

// NewAdapterFromArtifact wraps an already validated artifact.
func NewAdapterFromArtifact(name string, artifact *Artifact, logger *logrus.Logger) *Adapter {
	return &Adapter{name: name, artifact: artifact, log: logger}
}

// Name identifies the adapter in ensemble votes and logs.
func (a *Adapter) Name() string {
	return a.name
}

// Available reports whether the artifact loaded.
func (a *Adapter) Available() bool {
	return a.artifact != nil
}

// Score vectorizes the extraction and runs the frozen model. Pure:
// identical symptom sets and age always yield identical scores.
func (a *Adapter) Score(ctx context.Context, extraction *domain.ExtractionResult, age int) (*domain.ClassifierScore, error) {
	if !a.Available() {
		return nil, domain.ErrClassifierUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	features := a.artifact.Vectorize(extraction, age)
	probs := a.probabilities(features)

	predictions := make([]domain.RankedPrediction, len(a.artifact.Classes))
	for c, class := range a.artifact.Classes {
		predictions[c] = domain.RankedPrediction{
			ConditionID:   class.ConditionID,
			ConditionName: class.ConditionName,
			Probability:   probs[c],
		}
	}
	domain.SortPredictions(predictions)

	return &domain.ClassifierScore{
		Model:       a.name,
		Predictions: predictions,
	}, nil
}

// Explain scores the extraction and attributes the top prediction to
// individual features by occlusion: each active vocabulary feature is
// zeroed in turn and the probability delta for the predicted class is
// its contribution.
func (a *Adapter) Explain(ctx context.Context, extraction *domain.ExtractionResult, age int) (*domain.ClassifierScore, error) {
	score, err := a.Score(ctx, extraction, age)
	if err != nil {
		return nil, err
	}
	top, ok := score.Top()
	if !ok {
		return score, nil
	}

	topClass := -1
	for c, class := range a.artifact.Classes {
		if class.ConditionID == top.ConditionID {
			topClass = c
			break
		}
	}
	if topClass < 0 {
		return score, nil
	}

	features := a.artifact.Vectorize(extraction, age)
	baseline := a.probabilities(features)[topClass]

	for i := range a.artifact.Vocabulary {
		if features[i] == 0 {
			continue
		}
		features[i] = 0
		occluded := a.probabilities(features)[topClass]
		features[i] = 1

		score.Attributions = append(score.Attributions, domain.Attribution{
			Feature:      a.artifact.FeatureName(i),
			Contribution: baseline - occluded,
		})
	}
	domain.SortAttributions(score.Attributions)

	return score, nil
}

func (a *Adapter) probabilities(features []float64) []float64 {
	if a.artifact.Kind == KindGradient {
		return gradientProbabilities(a.artifact, features)
	}
	return forestProbabilities(a.artifact, features)
}
