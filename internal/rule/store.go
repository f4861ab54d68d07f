package rule

import (
	"sort"
	"sync"
)

// Store is an immutable snapshot of every known rule for one assembly run.
// It is safe for concurrent readers once built; there is no mutation path.
type Store struct {
	rules map[string]Rule
	order []string
}

// NewStore validates and indexes the provided rules. It fails with a
// *DuplicateRuleError if two rules share an id. Input order is preserved for
// Rules() so reports stay stable across runs.
func NewStore(rules []Rule) (*Store, error) {
	store := &Store{
		rules: make(map[string]Rule, len(rules)),
		order: make([]string, 0, len(rules)),
	}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		normalized := r.Normalized()
		if _, exists := store.rules[normalized.ID]; exists {
			return nil, &DuplicateRuleError{ID: normalized.ID}
		}
		store.rules[normalized.ID] = normalized
		store.order = append(store.order, normalized.ID)
	}
	return store, nil
}

// Get returns the rule for id or a *UnknownRuleError if the id is absent.
func (s *Store) Get(id string) (Rule, error) {
	r, ok := s.rules[id]
	if !ok {
		return Rule{}, &UnknownRuleError{ID: id}
	}
	return r, nil
}

// Has reports whether id is present without allocating an error.
func (s *Store) Has(id string) bool {
	_, ok := s.rules[id]
	return ok
}

// AllIDs returns every known rule id sorted lexically. The audit tooling uses
// this for orphan reports; resolution never depends on this ordering.
func (s *Store) AllIDs() []string {
	ids := make([]string, 0, len(s.rules))
	for id := range s.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Rules returns the stored rules in load order.
func (s *Store) Rules() []Rule {
	out := make([]Rule, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rules[id])
	}
	return out
}

// Len returns the number of stored rules.
func (s *Store) Len() int {
	return len(s.rules)
}

// Catalog holds the current store snapshot and hands it out to assembly runs.
// Swapping in a freshly loaded store never mutates a snapshot an in-flight
// resolution is still reading; each run pins the snapshot it started with.
type Catalog struct {
	mu      sync.RWMutex
	current *Store
	version uint64
}

// NewCatalog seeds a catalog with an initial snapshot. A nil store leaves the
// catalog empty until the first Swap.
func NewCatalog(store *Store) *Catalog {
	c := &Catalog{}
	if store != nil {
		c.current = store
		c.version = 1
	}
	return c
}

// Snapshot returns the current store and its version. Callers hold the
// returned pointer for the duration of a run; it is never mutated.
func (c *Catalog) Snapshot() (*Store, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, c.version
}

// Swap installs a new snapshot and returns its version.
func (c *Catalog) Swap(store *Store) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = store
	c.version++
	return c.version
}
