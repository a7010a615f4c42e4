package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/respicare/triage-engine/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(id, condition string, createdAt time.Time) *domain.TriageRecord {
	return &domain.TriageRecord{
		ID:            id,
		RequestID:     "req-" + id,
		InputHash:     "hash-" + id,
		Symptoms:      []string{"fiebre alta", "tos seca"},
		ConditionName: condition,
		Confidence:    0.72,
		Urgency:       domain.UrgencyMedium,
		Severity:      domain.SeverityHigh,
		Validation:    string(domain.ValidationPassed),
		ModelUsed:     "random_forest",
		DurationMS:    12,
		CreatedAt:     createdAt,
	}
}

func TestSQLiteStore_SaveAndRecent(t *testing.T) {
	// Arrange
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, sampleRecord("a", "Influenza A (H1N1)", base)))
	require.NoError(t, store.Save(ctx, sampleRecord("b", "Resfriado común", base.Add(time.Minute))))

	// Act
	records, err := store.Recent(ctx, 10)

	// Assert: newest first, fields round-trip.
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].ID)
	assert.Equal(t, "Resfriado común", records[0].ConditionName)
	assert.Equal(t, []string{"fiebre alta", "tos seca"}, records[0].Symptoms)
	assert.Equal(t, domain.UrgencyMedium, records[0].Urgency)
	assert.Equal(t, domain.SeverityHigh, records[0].Severity)
	assert.InDelta(t, 0.72, records[0].Confidence, 1e-9)
	assert.False(t, records[0].IsEmergency)
}

func TestSQLiteStore_RecentHonorsLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, sampleRecord(id, "Resfriado común", base.Add(time.Duration(i)*time.Minute))))
	}

	records, err := store.Recent(ctx, 2)

	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSQLiteStore_CountByCondition(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, sampleRecord("a", "Resfriado común", base)))
	require.NoError(t, store.Save(ctx, sampleRecord("b", "Resfriado común", base)))
	require.NoError(t, store.Save(ctx, sampleRecord("c", "Influenza A (H1N1)", base)))

	counts, err := store.CountByCondition(ctx)

	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"Resfriado común":    2,
		"Influenza A (H1N1)": 1,
	}, counts)
}

func TestSQLiteStore_Ping(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.Ping(context.Background()))
}

func TestSQLiteStore_EmptyRecent(t *testing.T) {
	store := newTestStore(t)

	records, err := store.Recent(context.Background(), 5)

	require.NoError(t, err)
	assert.Empty(t, records)
}
