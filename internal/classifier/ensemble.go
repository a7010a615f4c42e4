package classifier

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/respicare/triage-engine/internal/domain"
)

// Resolution is the ensemble's combined answer: the winning prediction,
// the scores of every model that voted, and how many voted for the
// winner.
type Resolution struct {
	Winner     domain.RankedPrediction
	Votes      int
	ModelUsed  string
	Scores     []*domain.ClassifierScore
	Candidates []domain.RankedPrediction
}

// Ensemble resolves disagreement between classifier adapters by
// plurality vote on each adapter's top prediction.
type Ensemble struct {
	classifiers []domain.Classifier
	log         *logrus.Logger
}

// NewEnsemble builds a resolver over the given adapters.
func NewEnsemble(classifiers []domain.Classifier, logger *logrus.Logger) *Ensemble {
	return &Ensemble{classifiers: classifiers, log: logger}
}

// AnyAvailable reports whether at least one adapter can score.
func (e *Ensemble) AnyAvailable() bool {
	for _, c := range e.classifiers {
		if c.Available() {
			return true
		}
	}
	return false
}

// Resolve scores the extraction with every available adapter and votes.
// The winning label takes the mean confidence of the adapters that
// voted for it; ties break by higher mean confidence, then lower
// condition ID. A single voter passes through unchanged. Returns
// ErrClassifierUnavailable when no adapter produced a score.
func (e *Ensemble) Resolve(ctx context.Context, extraction *domain.ExtractionResult, age int) (*Resolution, error) {
	var scores []*domain.ClassifierScore

	for _, c := range e.classifiers {
		if !c.Available() {
			continue
		}
		score, err := c.Explain(ctx, extraction, age)
		if err != nil {
			e.log.WithError(err).WithField("model", c.Name()).
				Warn("Classifier failed to score, excluded from vote")
			continue
		}
		if _, ok := score.Top(); !ok {
			continue
		}
		scores = append(scores, score)
	}

	if len(scores) == 0 {
		return nil, domain.ErrClassifierUnavailable
	}

	return resolveVotes(scores), nil
}

type tally struct {
	prediction domain.RankedPrediction
	votes      int
	totalConf  float64
}

func resolveVotes(scores []*domain.ClassifierScore) *Resolution {
	tallies := make(map[int]*tally)
	modelNames := make([]string, 0, len(scores))

	for _, score := range scores {
		modelNames = append(modelNames, score.Model)
		top, _ := score.Top()
		t, ok := tallies[top.ConditionID]
		if !ok {
			t = &tally{prediction: top}
			tallies[top.ConditionID] = t
		}
		t.votes++
		t.totalConf += top.Probability
	}

	candidates := make([]*tally, 0, len(tallies))
	for _, t := range tallies {
		candidates = append(candidates, t)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].votes != candidates[j].votes {
			return candidates[i].votes > candidates[j].votes
		}
		mi := candidates[i].totalConf / float64(candidates[i].votes)
		mj := candidates[j].totalConf / float64(candidates[j].votes)
		if mi != mj {
			return mi > mj
		}
		return candidates[i].prediction.ConditionID < candidates[j].prediction.ConditionID
	})

	winner := candidates[0]
	resolution := &Resolution{
		Winner: domain.RankedPrediction{
			ConditionID:   winner.prediction.ConditionID,
			ConditionName: winner.prediction.ConditionName,
			Probability:   winner.totalConf / float64(winner.votes),
		},
		Votes:     winner.votes,
		ModelUsed: joinModels(modelNames),
		Scores:    scores,
	}
	for _, t := range candidates {
		resolution.Candidates = append(resolution.Candidates, domain.RankedPrediction{
			ConditionID:   t.prediction.ConditionID,
			ConditionName: t.prediction.ConditionName,
			Probability:   t.totalConf / float64(t.votes),
		})
	}
	return resolution
}

func joinModels(names []string) string {
	if len(names) == 1 {
		return names[0]
	}
	sort.Strings(names)
	joined := "ensemble("
	for i, n := range names {
		if i > 0 {
			joined += ","
		}
		joined += n
	}
	return joined + ")"
}
