package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/respicare/triage-engine/internal/domain"
)

// Catalog is one immutable snapshot of the reference condition set plus
// its derived indices. Never mutated after construction; replaced as a
// whole by Store.Reload.
type Catalog struct {
	Version  string
	LoadedAt time.Time

	conditions map[int]domain.Condition
	ordered    []domain.Condition

	symptomIndex  map[string][]int
	categoryIndex map[string][]int
}

// New builds a catalog snapshot from condition records, validating each
// record and deriving the symptom and category indices.
func New(conditions []domain.Condition) (*Catalog, error) {
	if len(conditions) == 0 {
		return nil, fmt.Errorf("building catalog: no conditions")
	}

	c := &Catalog{
		LoadedAt:      time.Now().UTC(),
		conditions:    make(map[int]domain.Condition, len(conditions)),
		symptomIndex:  make(map[string][]int),
		categoryIndex: make(map[string][]int),
	}

	for _, cond := range conditions {
		if err := cond.Validate(); err != nil {
			return nil, fmt.Errorf("building catalog: %w", err)
		}
		if _, dup := c.conditions[cond.ID]; dup {
			return nil, fmt.Errorf("building catalog: duplicate condition ID %d", cond.ID)
		}
		c.conditions[cond.ID] = cond
	}

	c.ordered = make([]domain.Condition, 0, len(c.conditions))
	for _, cond := range c.conditions {
		c.ordered = append(c.ordered, cond)
	}
	sort.Slice(c.ordered, func(i, j int) bool { return c.ordered[i].ID < c.ordered[j].ID })

	for _, cond := range c.ordered {
		for _, symptom := range cond.Symptoms {
			c.symptomIndex[symptom] = append(c.symptomIndex[symptom], cond.ID)
		}
		c.categoryIndex[cond.Category] = append(c.categoryIndex[cond.Category], cond.ID)
	}

	c.Version = fmt.Sprintf("%d-%d", len(c.ordered), c.LoadedAt.UnixNano())
	return c, nil
}

// Get returns the condition with the given ID.
func (c *Catalog) Get(id int) (domain.Condition, error) {
	cond, ok := c.conditions[id]
	if !ok {
		return domain.Condition{}, fmt.Errorf("condition %d: %w", id, domain.ErrNotFound)
	}
	return cond, nil
}

// All returns every condition, ordered by ID.
func (c *Catalog) All() []domain.Condition {
	return c.ordered
}

// Size returns the number of conditions in the snapshot.
func (c *Catalog) Size() int {
	return len(c.ordered)
}

// ConditionsForSymptom returns the IDs of conditions whose reference
// symptoms loosely match the phrase (containment in either direction).
// An empty result means the symptom narrows nothing down, and callers
// fall back to scoring all conditions.
func (c *Catalog) ConditionsForSymptom(phrase string) []int {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return nil
	}

	seen := make(map[int]bool)
	var ids []int
	for symptom, condIDs := range c.symptomIndex {
		if strings.Contains(symptom, phrase) || strings.Contains(phrase, symptom) {
			for _, id := range condIDs {
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
		}
	}
	sort.Ints(ids)
	return ids
}

// ConditionsInCategory returns the IDs of conditions in a category.
func (c *Catalog) ConditionsInCategory(category string) []int {
	ids := c.categoryIndex[category]
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

// Categories returns all category names, sorted.
func (c *Catalog) Categories() []string {
	names := make([]string, 0, len(c.categoryIndex))
	for name := range c.categoryIndex {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckIntegrity verifies the catalog consistency invariant: every ID
// referenced by an index resolves to a condition in the condition set.
func (c *Catalog) CheckIntegrity() error {
	for symptom, ids := range c.symptomIndex {
		for _, id := range ids {
			if _, ok := c.conditions[id]; !ok {
				return fmt.Errorf("symptom index %q references unknown condition %d", symptom, id)
			}
		}
	}
	for category, ids := range c.categoryIndex {
		for _, id := range ids {
			if _, ok := c.conditions[id]; !ok {
				return fmt.Errorf("category index %q references unknown condition %d", category, id)
			}
		}
	}
	return nil
}

// Store publishes catalog snapshots atomically. Readers always see one
// consistent snapshot; a failed reload keeps the previous one.
type Store struct {
	current atomic.Pointer[Catalog]
	source  domain.CatalogSource
	log     *logrus.Logger
}

// NewStore creates a store and performs the initial load. The initial
// load failing is fatal to the caller: there is no previous snapshot to
// fall back to.
func NewStore(ctx context.Context, source domain.CatalogSource, logger *logrus.Logger) (*Store, error) {
	s := &Store{source: source, log: logger}
	if err := s.Reload(ctx); err != nil {
		return nil, fmt.Errorf("initial catalog load: %w", err)
	}
	return s, nil
}

// Current returns the active snapshot.
func (s *Store) Current() (*Catalog, error) {
	c := s.current.Load()
	if c == nil {
		return nil, domain.ErrCatalogUnavailable
	}
	return c, nil
}

// Reload loads conditions from the source and swaps in a new snapshot.
// On any failure the previous snapshot stays published and keeps
// serving in-flight and future requests.
func (s *Store) Reload(ctx context.Context) error {
	conditions, err := s.source.Load(ctx)
	if err != nil {
		s.log.WithError(err).Error("Catalog reload failed, keeping previous snapshot")
		return fmt.Errorf("loading catalog: %w", err)
	}

	snapshot, err := New(conditions)
	if err != nil {
		s.log.WithError(err).Error("Catalog build failed, keeping previous snapshot")
		return err
	}
	if err := snapshot.CheckIntegrity(); err != nil {
		s.log.WithError(err).Error("Catalog integrity check failed, keeping previous snapshot")
		return err
	}

	s.current.Store(snapshot)
	s.log.WithFields(logrus.Fields{
		"version":    snapshot.Version,
		"conditions": snapshot.Size(),
		"categories": len(snapshot.categoryIndex),
	}).Info("Catalog snapshot published")
	return nil
}
