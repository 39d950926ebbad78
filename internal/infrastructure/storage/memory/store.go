// Package memory provides an in-process implementation of every storage
// contract of the record engine. It backs tests and the server when no
// DATABASE_URL is configured.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"datasets/internal/domain/audit"
	"datasets/internal/domain/record"
	"datasets/internal/domain/reference"
	"datasets/internal/metadata"
)

// Store holds all state. A transaction takes the write lock for its whole
// duration and restores a snapshot when fn fails.
type Store struct {
	mu sync.RWMutex

	datasets *metadata.Registry

	records  map[record.Key]*record.Record
	children map[record.Key][]record.Key

	categories     map[string]reference.Category
	categoryValues map[string][]reference.CategoryValue
	organisations  map[string]reference.Organisation

	history []audit.Entry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		datasets:       metadata.NewRegistry(),
		records:        make(map[record.Key]*record.Record),
		children:       make(map[record.Key][]record.Key),
		categories:     make(map[string]reference.Category),
		categoryValues: make(map[string][]reference.CategoryValue),
		organisations:  make(map[string]reference.Organisation),
	}
}

// Datasets returns the dataset registry.
func (s *Store) Datasets() *metadata.Registry { return s.datasets }

// Records returns the record repository.
func (s *Store) Records() *RecordRepo { return &RecordRepo{s: s} }

// References returns the reference data repository.
func (s *Store) References() *ReferenceRepo { return &ReferenceRepo{s: s} }

// History returns the audit log.
func (s *Store) History() *HistoryLog { return &HistoryLog{s: s} }

// TxManager returns the transaction manager.
func (s *Store) TxManager() *TxManager { return &TxManager{s: s} }

// Allocator returns an allocator handing out max+1 per dataset.
func (s *Store) Allocator() *Allocator { return &Allocator{s: s} }

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// read runs fn under the read lock unless ctx already holds the store.
func (s *Store) read(ctx context.Context, fn func()) {
	if !s.inTx(ctx) {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	fn()
}

// write runs fn under the write lock unless ctx already holds the store.
func (s *Store) write(ctx context.Context, fn func() error) error {
	if !s.inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn()
}

type snapshot struct {
	records        map[record.Key]*record.Record
	children       map[record.Key][]record.Key
	categories     map[string]reference.Category
	categoryValues map[string][]reference.CategoryValue
	organisations  map[string]reference.Organisation
	history        []audit.Entry
}

// snapshot copies the mutable state. Stored records are never mutated in
// place, so sharing the pointers is safe.
func (s *Store) snapshot() snapshot {
	children := make(map[record.Key][]record.Key, len(s.children))
	for k, v := range s.children {
		children[k] = slices.Clone(v)
	}
	values := make(map[string][]reference.CategoryValue, len(s.categoryValues))
	for k, v := range s.categoryValues {
		values[k] = slices.Clone(v)
	}
	return snapshot{
		records:        maps.Clone(s.records),
		children:       children,
		categories:     maps.Clone(s.categories),
		categoryValues: values,
		organisations:  maps.Clone(s.organisations),
		history:        slices.Clone(s.history),
	}
}

func (s *Store) restore(snap snapshot) {
	s.records = snap.records
	s.children = snap.children
	s.categories = snap.categories
	s.categoryValues = snap.categoryValues
	s.organisations = snap.organisations
	s.history = snap.history
}

// TxManager implements tx.Manager over a Store.
type TxManager struct {
	s *Store
}

// RunInTransaction runs fn holding the store exclusively. Nested calls join
// the outer transaction.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.s.inTx(ctx) {
		return fn(ctx)
	}

	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	snap := m.s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, m.s)); err != nil {
		m.s.restore(snap)
		return err
	}
	return nil
}
