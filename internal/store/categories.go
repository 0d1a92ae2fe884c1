package store

import (
	"sync"

	"finboard/internal/core"
)

// CategoryStore holds the budget categories in remote order.
type CategoryStore struct {
	mu      sync.RWMutex
	items   []core.BudgetCategory
	version uint64
}

func NewCategoryStore(items ...core.BudgetCategory) *CategoryStore {
	return &CategoryStore{items: append([]core.BudgetCategory(nil), items...)}
}

func (s *CategoryStore) Replace(items []core.BudgetCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.BudgetCategory(nil), items...)
	s.version++
}

func (s *CategoryStore) Snapshot() []core.BudgetCategory {
	items, _ := s.SnapshotVersion()
	return items
}

func (s *CategoryStore) SnapshotVersion() ([]core.BudgetCategory, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.BudgetCategory(nil), s.items...), s.version
}

// Names returns the category names for form selects.
func (s *CategoryStore) Names() []string {
	return core.CategoryNames(s.Snapshot())
}

func (s *CategoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *CategoryStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
