package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"datasets/internal/core/allocator"
	"datasets/internal/core/apperror"
	"datasets/internal/domain"
	"datasets/internal/domain/record"
	"datasets/internal/metadata"
)

// RecordRepo implements record.Repository.
type RecordRepo struct {
	s *Store
}

func (r *RecordRepo) Create(ctx context.Context, rec *record.Record) error {
	return r.s.write(ctx, func() error {
		key := rec.Key()
		if _, exists := r.s.records[key]; exists {
			return apperror.NewDuplicate("record", "entity", key.String())
		}
		if r.findByReference(rec.Dataset, rec.Reference) != nil {
			return apperror.NewDuplicate("record", "reference", rec.Reference)
		}

		r.s.records[key] = rec.Clone()
		if parent, ok := rec.Parent(); ok {
			r.s.children[parent] = append(r.s.children[parent], key)
		}
		return nil
	})
}

func (r *RecordRepo) Update(ctx context.Context, rec *record.Record) error {
	return r.s.write(ctx, func() error {
		key := rec.Key()
		if _, exists := r.s.records[key]; !exists {
			return apperror.NewNotFound("record", key.String())
		}
		r.s.records[key] = rec.Clone()
		return nil
	})
}

func (r *RecordRepo) GetByKey(ctx context.Context, key record.Key) (*record.Record, error) {
	var found *record.Record
	r.s.read(ctx, func() {
		if rec, ok := r.s.records[key]; ok {
			found = rec.Clone()
		}
	})
	if found == nil {
		return nil, apperror.NewNotFound("record", key.String())
	}
	return found, nil
}

func (r *RecordRepo) FindByReference(ctx context.Context, dataset, reference string) (*record.Record, error) {
	var found *record.Record
	r.s.read(ctx, func() {
		if rec := r.findByReference(dataset, reference); rec != nil {
			found = rec.Clone()
		}
	})
	if found == nil {
		return nil, apperror.NewNotFound(dataset, reference)
	}
	return found, nil
}

func (r *RecordRepo) findByReference(dataset, reference string) *record.Record {
	for key, rec := range r.s.records {
		if key.Dataset == dataset && rec.Reference == reference {
			return rec
		}
	}
	return nil
}

func (r *RecordRepo) MaxEntity(ctx context.Context, dataset string) (int64, bool, error) {
	var (
		maxEntity int64
		found     bool
	)
	r.s.read(ctx, func() {
		maxEntity, found = r.maxEntity(dataset)
	})
	return maxEntity, found, nil
}

func (r *RecordRepo) maxEntity(dataset string) (int64, bool) {
	var (
		maxEntity int64
		found     bool
	)
	for key := range r.s.records {
		if key.Dataset != dataset {
			continue
		}
		if !found || key.Entity > maxEntity {
			maxEntity = key.Entity
			found = true
		}
	}
	return maxEntity, found
}

func (r *RecordRepo) ListByDataset(ctx context.Context, dataset string, filter domain.ListFilter) (domain.ListResult[*record.Record], error) {
	filter = filter.Normalize()
	search := strings.ToLower(filter.Search)

	var matched []*record.Record
	r.s.read(ctx, func() {
		for key, rec := range r.s.records {
			if key.Dataset != dataset {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(rec.Name), search) &&
				!strings.Contains(strings.ToLower(rec.Reference), search) {
				continue
			}
			matched = append(matched, rec.Clone())
		}
	})
	slices.SortFunc(matched, func(a, b *record.Record) int { return cmp.Compare(a.Entity, b.Entity) })

	result := domain.ListResult[*record.Record]{
		Items:      []*record.Record{},
		TotalCount: int64(len(matched)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if filter.Offset < len(matched) {
		end := min(filter.Offset+filter.Limit, len(matched))
		result.Items = matched[filter.Offset:end]
	}
	return result, nil
}

func (r *RecordRepo) Children(ctx context.Context, parent record.Key) ([]*record.Record, error) {
	var out []*record.Record
	r.s.read(ctx, func() {
		for _, key := range r.s.children[parent] {
			if rec, ok := r.s.records[key]; ok {
				out = append(out, rec.Clone())
			}
		}
	})
	slices.SortFunc(out, func(a, b *record.Record) int {
		if c := cmp.Compare(a.Dataset, b.Dataset); c != 0 {
			return c
		}
		return cmp.Compare(a.Entity, b.Entity)
	})
	return out, nil
}

// Allocator implements allocator.Allocator from the stored maximum.
// Callers inside a transaction hold the store, so two allocations for one
// dataset can never observe the same maximum.
type Allocator struct {
	s *Store
}

func (a *Allocator) Next(ctx context.Context, ds metadata.Dataset) (allocator.Allocation, error) {
	var (
		alloc allocator.Allocation
		err   error
	)
	repo := &RecordRepo{s: a.s}
	a.s.read(ctx, func() {
		maxEntity, found := repo.maxEntity(ds.Dataset)
		alloc, err = allocator.NextEntity(ds, maxEntity, found)
	})
	if err != nil {
		return allocator.Allocation{}, fmt.Errorf("allocate %s: %w", ds.Dataset, err)
	}
	return alloc, nil
}

var (
	_ record.Repository   = (*RecordRepo)(nil)
	_ allocator.Allocator = (*Allocator)(nil)
)
