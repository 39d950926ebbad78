package record

import (
	"context"

	"datasets/internal/domain"
)

// Repository defines the interface for record storage.
// Implementations read the active transaction from ctx.
type Repository interface {
	// Create inserts a new record.
	Create(ctx context.Context, r *Record) error

	// Update rewrites an existing record in place.
	Update(ctx context.Context, r *Record) error

	// GetByKey retrieves one record. Missing records yield a NOT_FOUND AppError.
	GetByKey(ctx context.Context, key Key) (*Record, error)

	// FindByReference retrieves the record of dataset with the given
	// reference. Missing records yield a NOT_FOUND AppError.
	FindByReference(ctx context.Context, dataset, reference string) (*Record, error)

	// MaxEntity returns the highest entity id stored for dataset.
	// found is false when the dataset has no records.
	MaxEntity(ctx context.Context, dataset string) (max int64, found bool, err error)

	// ListByDataset returns records of one dataset ordered by entity.
	ListByDataset(ctx context.Context, dataset string, filter domain.ListFilter) (domain.ListResult[*Record], error)

	// Children returns the records owned by parent ordered by dataset, entity.
	Children(ctx context.Context, parent Key) ([]*Record, error)
}
