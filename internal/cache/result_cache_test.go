package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/respicare/triage-engine/internal/domain"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestKey_OrderInsensitive(t *testing.T) {
	a := Key([]string{"fiebre", "tos", "fatiga"}, 35)
	b := Key([]string{"tos", "fatiga", "fiebre"}, 35)

	assert.Equal(t, a, b)
}

func TestKey_DiscriminatesAgeAndSymptoms(t *testing.T) {
	base := Key([]string{"fiebre", "tos"}, 35)

	assert.NotEqual(t, base, Key([]string{"fiebre", "tos"}, 36))
	assert.NotEqual(t, base, Key([]string{"fiebre"}, 35))
}

func TestResultCache_MemoryTier(t *testing.T) {
	c := New(8, time.Minute, nil, quietLogger())
	ctx := context.Background()
	key := Key([]string{"fiebre", "tos"}, 35)

	// Miss before put.
	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	result := &domain.TriageResult{ConditionName: "Influenza A (H1N1)", Confidence: 0.7}
	c.Put(ctx, key, result)

	cached, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, result, cached)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.MemoryHits)
	assert.Equal(t, int64(1), stats.MemoryMisses)
}

func TestResultCache_HitsAreIsolatedFromTheCachedEntry(t *testing.T) {
	c := New(8, time.Minute, nil, quietLogger())
	ctx := context.Background()
	key := Key([]string{"fiebre", "tos"}, 35)

	original := &domain.TriageResult{
		ConditionName: "Neumonía viral",
		Urgency:       domain.UrgencyHigh,
		Warnings:      []string{"w1", "w2", "w3"},
		Symptoms:      []string{"fiebre", "tos"},
	}
	c.Put(ctx, key, original)

	// Mutating the caller's result after Put must not leak into the
	// cached entry.
	original.Warnings[0] = "mutated"
	original.Warnings = append(original.Warnings, "extra")

	first, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []string{"w1", "w2", "w3"}, first.Warnings)

	// Mutating one hit must not leak into subsequent hits.
	first.Warnings[1] = "mutated"
	first.Warnings = append(first.Warnings, "extra")
	first.Urgency = domain.UrgencyCritical

	second, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []string{"w1", "w2", "w3"}, second.Warnings)
	assert.Equal(t, domain.UrgencyHigh, second.Urgency)
}

func TestResultCache_Purge(t *testing.T) {
	c := New(8, time.Minute, nil, quietLogger())
	ctx := context.Background()
	key := Key([]string{"tos"}, 10)
	c.Put(ctx, key, &domain.TriageResult{ConditionName: "Resfriado común"})

	c.Purge()

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)
}

func TestResultCache_EvictsBeyondCapacity(t *testing.T) {
	c := New(2, time.Minute, nil, quietLogger())
	ctx := context.Background()

	c.Put(ctx, "a", &domain.TriageResult{ConditionName: "a"})
	c.Put(ctx, "b", &domain.TriageResult{ConditionName: "b"})
	c.Put(ctx, "c", &domain.TriageResult{ConditionName: "c"})

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "c")
	assert.True(t, ok)
}
