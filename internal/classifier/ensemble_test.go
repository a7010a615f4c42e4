package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/respicare/triage-engine/internal/domain"
)

// stubClassifier returns a fixed score, used to script ensemble votes.
type stubClassifier struct {
	name      string
	available bool
	score     *domain.ClassifierScore
	err       error
}

func (s *stubClassifier) Name() string    { return s.name }
func (s *stubClassifier) Available() bool { return s.available }

func (s *stubClassifier) Score(context.Context, *domain.ExtractionResult, int) (*domain.ClassifierScore, error) {
	return s.score, s.err
}

func (s *stubClassifier) Explain(ctx context.Context, e *domain.ExtractionResult, age int) (*domain.ClassifierScore, error) {
	return s.Score(ctx, e, age)
}

func votingFor(model string, conditionID int, name string, confidence float64) *stubClassifier {
	return &stubClassifier{
		name:      model,
		available: true,
		score: &domain.ClassifierScore{
			Model: model,
			Predictions: []domain.RankedPrediction{
				{ConditionID: conditionID, ConditionName: name, Probability: confidence},
			},
		},
	}
}

func TestEnsemble_PluralityVote(t *testing.T) {
	// Arrange: two votes for influenza, one for cold.
	ensemble := NewEnsemble([]domain.Classifier{
		votingFor("rf", 9, "Influenza A (H1N1)", 0.8),
		votingFor("gb", 9, "Influenza A (H1N1)", 0.6),
		votingFor("nn", 1, "Resfriado común", 0.9),
	}, quietLogger())

	// Act
	resolution, err := ensemble.Resolve(context.Background(), extractionOf("fiebre"), 35)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 9, resolution.Winner.ConditionID)
	assert.Equal(t, 2, resolution.Votes)
	assert.InDelta(t, 0.7, resolution.Winner.Probability, 1e-9)
	assert.Equal(t, "ensemble(gb,nn,rf)", resolution.ModelUsed)
	require.Len(t, resolution.Candidates, 2)
	assert.Equal(t, 9, resolution.Candidates[0].ConditionID)
}

func TestEnsemble_TieBreakByMeanConfidence(t *testing.T) {
	ensemble := NewEnsemble([]domain.Classifier{
		votingFor("rf", 9, "Influenza A (H1N1)", 0.6),
		votingFor("gb", 1, "Resfriado común", 0.9),
	}, quietLogger())

	resolution, err := ensemble.Resolve(context.Background(), extractionOf("fiebre"), 35)

	require.NoError(t, err)
	assert.Equal(t, 1, resolution.Winner.ConditionID)
	assert.InDelta(t, 0.9, resolution.Winner.Probability, 1e-9)
}

func TestEnsemble_TieBreakByLowestConditionID(t *testing.T) {
	ensemble := NewEnsemble([]domain.Classifier{
		votingFor("rf", 9, "Influenza A (H1N1)", 0.7),
		votingFor("gb", 1, "Resfriado común", 0.7),
	}, quietLogger())

	resolution, err := ensemble.Resolve(context.Background(), extractionOf("fiebre"), 35)

	require.NoError(t, err)
	assert.Equal(t, 1, resolution.Winner.ConditionID)
}

func TestEnsemble_SingleVoterPassesThrough(t *testing.T) {
	ensemble := NewEnsemble([]domain.Classifier{
		votingFor("rf", 13, "Neumonía viral", 0.55),
	}, quietLogger())

	resolution, err := ensemble.Resolve(context.Background(), extractionOf("tos"), 35)

	require.NoError(t, err)
	assert.Equal(t, 13, resolution.Winner.ConditionID)
	assert.InDelta(t, 0.55, resolution.Winner.Probability, 1e-9)
	assert.Equal(t, "rf", resolution.ModelUsed)
	assert.Equal(t, 1, resolution.Votes)
}

func TestEnsemble_SkipsUnavailableAndFailing(t *testing.T) {
	ensemble := NewEnsemble([]domain.Classifier{
		&stubClassifier{name: "down", available: false},
		&stubClassifier{name: "broken", available: true, err: errors.New("corrupt artifact")},
		votingFor("rf", 1, "Resfriado común", 0.8),
	}, quietLogger())

	resolution, err := ensemble.Resolve(context.Background(), extractionOf("tos"), 35)

	require.NoError(t, err)
	assert.Equal(t, "rf", resolution.ModelUsed)
}

func TestEnsemble_NoVoters(t *testing.T) {
	ensemble := NewEnsemble([]domain.Classifier{
		&stubClassifier{name: "down", available: false},
	}, quietLogger())

	assert.False(t, ensemble.AnyAvailable())

	_, err := ensemble.Resolve(context.Background(), extractionOf("tos"), 35)
	assert.ErrorIs(t, err, domain.ErrClassifierUnavailable)
}
