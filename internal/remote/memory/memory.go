// Package memory is an in-process backend used for local development and
// tests. It can be seeded from a TOML file.
package memory

import (
	"context"
	"fmt"
	"maps"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"finboard/internal/core"
)

// Seed is the on-disk layout of a seed file.
type Seed struct {
	Transactions []SeedTransaction `toml:"transactions"`
	Categories   []SeedCategory    `toml:"categories"`
}

type SeedTransaction struct {
	ID          string  `toml:"id"`
	Date        string  `toml:"date"`
	Amount      float64 `toml:"amount"`
	Category    string  `toml:"category"`
	Description string  `toml:"description"`
}

type SeedCategory struct {
	ID     string  `toml:"id"`
	Name   string  `toml:"name"`
	Amount float64 `toml:"amount"`
}

type Store struct {
	mu    sync.Mutex
	txns  []core.Record
	cats  []core.Record
	newID func() string
}

func New() *Store {
	return &Store{newID: func() string { return "mem_" + uuid.NewString() }}
}

// NewFromSeed builds a store holding the seeded rows. Rows without an id get
// a generated one.
func NewFromSeed(seed Seed) *Store {
	s := New()
	for _, t := range seed.Transactions {
		id := t.ID
		if id == "" {
			id = s.newID()
		}
		s.txns = append(s.txns, core.Record{ID: id, Fields: map[string]any{
			core.FieldDate:        t.Date,
			core.FieldAmount:      t.Amount,
			core.FieldCategory:    t.Category,
			core.FieldDescription: t.Description,
		}})
	}
	for _, c := range seed.Categories {
		id := c.ID
		if id == "" {
			id = s.newID()
		}
		s.cats = append(s.cats, core.Record{ID: id, Fields: map[string]any{
			core.FieldName:   c.Name,
			core.FieldAmount: c.Amount,
		}})
	}
	return s
}

// NewFromFile reads a TOML seed. An empty path yields an empty store.
func NewFromFile(path string) (*Store, error) {
	if path == "" {
		return New(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := toml.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return NewFromSeed(seed), nil
}

func (s *Store) ListTransactions(ctx context.Context) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRecords(s.txns), nil
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRecords(s.cats), nil
}

func (s *Store) CreateTransaction(ctx context.Context, fields map[string]any) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return core.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := core.Record{ID: s.newID(), Fields: maps.Clone(fields)}
	s.txns = append(s.txns, rec)
	return cloneRecord(rec), nil
}

// UpdateTransaction merges fields into the stored row.
func (s *Store) UpdateTransaction(ctx context.Context, id string, fields map[string]any) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return core.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txns {
		if s.txns[i].ID != id {
			continue
		}
		if s.txns[i].Fields == nil {
			s.txns[i].Fields = map[string]any{}
		}
		maps.Copy(s.txns[i].Fields, fields)
		return cloneRecord(s.txns[i]), nil
	}
	return core.Record{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
}

func cloneRecord(r core.Record) core.Record {
	return core.Record{ID: r.ID, Fields: maps.Clone(r.Fields)}
}

func cloneRecords(in []core.Record) []core.Record {
	out := make([]core.Record, len(in))
	for i, r := range in {
		out[i] = cloneRecord(r)
	}
	return out
}
