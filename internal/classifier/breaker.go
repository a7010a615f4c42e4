package classifier

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/respicare/triage-engine/internal/domain"
)

// BreakerClassifier wraps a classifier with a per-call timeout and a
// circuit breaker. A tripped breaker reports the model as unavailable
// rather than erroring requests one by one.
type BreakerClassifier struct {
	inner   domain.Classifier
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	log     *logrus.Logger
}

// WithBreaker wraps inner with a circuit breaker tuned for an
// in-process model: trip after repeated failures, probe again after the
// cooldown.
func WithBreaker(inner domain.Classifier, timeout time.Duration, logger *logrus.Logger) *BreakerClassifier {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"model": name,
				"from":  from.String(),
				"to":    to.String(),
			}).Warn("Classifier circuit breaker state changed")
		},
	})
	return &BreakerClassifier{inner: inner, breaker: breaker, timeout: timeout, log: logger}
}

// Name returns the wrapped classifier's name.
func (b *BreakerClassifier) Name() string {
	return b.inner.Name()
}

// Available reports whether the wrapped classifier can currently serve:
// the artifact loaded and the breaker is not open.
func (b *BreakerClassifier) Available() bool {
	return b.inner.Available() && b.breaker.State() != gobreaker.StateOpen
}

// Score delegates through the breaker with the per-call timeout.
func (b *BreakerClassifier) Score(ctx context.Context, extraction *domain.ExtractionResult, age int) (*domain.ClassifierScore, error) {
	return b.execute(ctx, func(ctx context.Context) (*domain.ClassifierScore, error) {
		return b.inner.Score(ctx, extraction, age)
	})
}

// Explain delegates through the breaker with the per-call timeout.
func (b *BreakerClassifier) Explain(ctx context.Context, extraction *domain.ExtractionResult, age int) (*domain.ClassifierScore, error) {
	return b.execute(ctx, func(ctx context.Context) (*domain.ClassifierScore, error) {
		return b.inner.Explain(ctx, extraction, age)
	})
}

func (b *BreakerClassifier) execute(ctx context.Context, fn func(context.Context) (*domain.ClassifierScore, error)) (*domain.ClassifierScore, error) {
	callCtx := ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	result, err := b.breaker.Execute(func() (interface{}, error) {
		return fn(callCtx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, domain.ErrClassifierUnavailable
		}
		return nil, err
	}
	return result.(*domain.ClassifierScore), nil
}
