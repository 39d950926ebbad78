package allocator

import (
	"context"

	"datasets/internal/metadata"
)

// MockAllocator is a test implementation of Allocator.
// Use in unit tests to avoid database dependencies.
type MockAllocator struct {
	NextFunc func(ctx context.Context, ds metadata.Dataset) (Allocation, error)
}

// Next implements Allocator.
func (m *MockAllocator) Next(ctx context.Context, ds metadata.Dataset) (Allocation, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, ds)
	}
	// Default: the first id of the range
	return Allocation{Entity: ds.EntityMinimum, Reference: MakeReference(ds.Dataset, ds.EntityMinimum)}, nil
}

// Ensure compile-time interface compliance.
var _ Allocator = (*MockAllocator)(nil)
