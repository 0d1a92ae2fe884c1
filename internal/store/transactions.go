// Package store holds the in-process copies of the remote tables that the
// dashboard reads from and the mutation coordinator writes to.
package store

import (
	"sort"
	"sync"

	"finboard/internal/core"
)

const DefaultPageSize = 20

// TransactionStore is an ordered, concurrency-safe collection of
// transactions. Every write bumps Version.
type TransactionStore struct {
	mu      sync.RWMutex
	items   []core.Transaction
	version uint64
}

func NewTransactionStore(items ...core.Transaction) *TransactionStore {
	return &TransactionStore{items: append([]core.Transaction(nil), items...)}
}

// Replace swaps in a freshly fetched list. Records still awaiting remote
// confirmation stay at the head so an in-flight add survives a refresh.
func (s *TransactionStore) Replace(items []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]core.Transaction, 0, len(items)+1)
	for _, t := range s.items {
		if t.IsPending() {
			next = append(next, t)
		}
	}
	next = append(next, items...)
	s.items = next
	s.version++
}

// Snapshot returns a copy of the current contents.
func (s *TransactionStore) Snapshot() []core.Transaction {
	items, _ := s.SnapshotVersion()
	return items
}

// SnapshotVersion returns a copy of the contents together with the version
// they belong to.
func (s *TransactionStore) SnapshotVersion() ([]core.Transaction, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.items...), s.version
}

func (s *TransactionStore) Get(key string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(key); i >= 0 {
		return s.items[i], true
	}
	return core.Transaction{}, false
}

func (s *TransactionStore) Prepend(t core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Transaction{t}, s.items...)
	s.version++
}

// Swap replaces the record identified by key with t at the same position.
// It reports false when no such record exists.
func (s *TransactionStore) Swap(key string, t core.Transaction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(key)
	if i < 0 {
		return false
	}
	s.items[i] = t
	s.version++
	return true
}

// Commit settles a pending add. The temporary record becomes t in place,
// unless a refresh already loaded t, in which case the temporary record is
// dropped. When the temporary record is gone t is prepended if missing.
func (s *TransactionStore) Commit(tempID string, t core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tmp := s.indexOf(tempID)
	if existing := s.indexOf(t.ID); existing >= 0 {
		s.items[existing] = t
		if tmp >= 0 {
			s.items = append(s.items[:tmp:tmp], s.items[tmp+1:]...)
		}
	} else if tmp >= 0 {
		s.items[tmp] = t
	} else {
		s.items = append([]core.Transaction{t}, s.items...)
	}
	s.version++
}

func (s *TransactionStore) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(key)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.version++
	return true
}

func (s *TransactionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *TransactionStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *TransactionStore) indexOf(key string) int {
	for i := range s.items {
		if s.items[i].Key() == key {
			return i
		}
	}
	return -1
}

// Page is one page of the chronological transaction list.
type Page struct {
	Items      []core.Transaction
	Page       int
	PageSize   int
	TotalPages int
	Total      int
}

// Page returns the requested page of transactions sorted by date, newest
// first. Records without a valid date sort last. Out of range page numbers
// are clamped to the first or last page.
func (s *TransactionStore) Page(page, size int) Page {
	items := s.Snapshot()
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Date, items[j].Date
		if a.IsZero() != b.IsZero() {
			return b.IsZero()
		}
		return a.After(b.Time)
	})
	return paginate(items, page, size)
}

func paginate(items []core.Transaction, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	pages := (total + size - 1) / size
	if page < 1 {
		page = 1
	}
	if pages > 0 && page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := min(start+size, total)
	if start > total {
		start = total
	}
	return Page{
		Items:      items[start:end],
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
		Total:      total,
	}
}
