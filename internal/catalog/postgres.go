package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/respicare/triage-engine/internal/domain"
)

// PostgresSource loads the condition catalog from a PostgreSQL table,
// for deployments that manage the disease list centrally.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a catalog source backed by the given pool.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// Load reads all conditions from the conditions table.
func (s *PostgresSource) Load(ctx context.Context) ([]domain.Condition, error) {
	const query = `
		SELECT id, name, category, symptoms, urgency, severity,
		       pathogen, keywords, required_symptoms, age_min, age_max, match_weight
		FROM conditions
		ORDER BY id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying conditions: %w", err)
	}
	defer rows.Close()

	var conditions []domain.Condition
	for rows.Next() {
		var (
			c              domain.Condition
			ageMin, ageMax *int
		)
		err := rows.Scan(
			&c.ID, &c.Name, &c.Category, &c.Symptoms, &c.Urgency, &c.Severity,
			&c.Pathogen, &c.Keywords, &c.Required, &ageMin, &ageMax, &c.MatchWeight,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning condition row: %w", err)
		}
		if ageMin != nil && ageMax != nil {
			c.Ages = domain.AgeRange{Min: *ageMin, Max: *ageMax}
		}
		c.SymptomText = joinSymptoms(c.Symptoms)
		conditions = append(conditions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating condition rows: %w", err)
	}
	return conditions, nil
}

func joinSymptoms(symptoms []string) string {
	return strings.Join(symptoms, ", ")
}
