package record

import (
	"context"

	"datasets/internal/core/apperror"
	"datasets/internal/domain"
)

// MockRepository is a test implementation of Repository.
// Unset lookups report NOT_FOUND; unset writes succeed.
type MockRepository struct {
	CreateFunc          func(ctx context.Context, r *Record) error
	UpdateFunc          func(ctx context.Context, r *Record) error
	GetByKeyFunc        func(ctx context.Context, key Key) (*Record, error)
	FindByReferenceFunc func(ctx context.Context, dataset, reference string) (*Record, error)
	MaxEntityFunc       func(ctx context.Context, dataset string) (int64, bool, error)
	ListByDatasetFunc   func(ctx context.Context, dataset string, filter domain.ListFilter) (domain.ListResult[*Record], error)
	ChildrenFunc        func(ctx context.Context, parent Key) ([]*Record, error)
}

func (m *MockRepository) Create(ctx context.Context, r *Record) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, r)
	}
	return nil
}

func (m *MockRepository) Update(ctx context.Context, r *Record) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, r)
	}
	return nil
}

func (m *MockRepository) GetByKey(ctx context.Context, key Key) (*Record, error) {
	if m.GetByKeyFunc != nil {
		return m.GetByKeyFunc(ctx, key)
	}
	return nil, apperror.NewNotFound("record", key.String())
}

func (m *MockRepository) FindByReference(ctx context.Context, dataset, reference string) (*Record, error) {
	if m.FindByReferenceFunc != nil {
		return m.FindByReferenceFunc(ctx, dataset, reference)
	}
	return nil, apperror.NewNotFound(dataset, reference)
}

func (m *MockRepository) MaxEntity(ctx context.Context, dataset string) (int64, bool, error) {
	if m.MaxEntityFunc != nil {
		return m.MaxEntityFunc(ctx, dataset)
	}
	return 0, false, nil
}

func (m *MockRepository) ListByDataset(ctx context.Context, dataset string, filter domain.ListFilter) (domain.ListResult[*Record], error) {
	if m.ListByDatasetFunc != nil {
		return m.ListByDatasetFunc(ctx, dataset, filter)
	}
	return domain.ListResult[*Record]{Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (m *MockRepository) Children(ctx context.Context, parent Key) ([]*Record, error) {
	if m.ChildrenFunc != nil {
		return m.ChildrenFunc(ctx, parent)
	}
	return nil, nil
}

var _ Repository = (*MockRepository)(nil)
