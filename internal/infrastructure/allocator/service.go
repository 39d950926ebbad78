// Package allocator provides the PostgreSQL implementation of entity id
// allocation. It implements core/allocator.Allocator.
package allocator

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	coreallocator "datasets/internal/core/allocator"
	"datasets/internal/infrastructure/storage/postgres"
	"datasets/internal/metadata"
	"datasets/pkg/logger"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// nextEntitySQL bumps the per-dataset counter and returns the new value.
// The counter never falls behind the highest stored entity (records loaded
// from fixtures bypass the counter) nor below the dataset minimum. The row
// lock taken by the upsert serializes concurrent allocations for one dataset
// until the surrounding transaction ends.
const nextEntitySQL = `
INSERT INTO entity_sequence (dataset, current_val)
VALUES ($1, GREATEST($2, COALESCE((SELECT MAX(entity) + 1 FROM record WHERE dataset = $1), $2)))
ON CONFLICT (dataset) DO UPDATE SET current_val = GREATEST(
    entity_sequence.current_val + 1,
    COALESCE((SELECT MAX(entity) + 1 FROM record WHERE dataset = $1), $2),
    $2)
RETURNING current_val`

// Service allocates entity ids from the entity_sequence table.
type Service struct {
	// staticQuerier is used when no transaction manager is configured (tests)
	staticQuerier Querier
	txm           *postgres.TxManager
}

// Ensure compile-time interface compliance.
var _ coreallocator.Allocator = (*Service)(nil)

// New creates an allocator that runs inside the caller's transaction.
func New(txm *postgres.TxManager) *Service {
	return &Service{txm: txm}
}

// NewWithQuerier creates an allocator bound to a fixed querier.
func NewWithQuerier(querier Querier) *Service {
	return &Service{staticQuerier: querier}
}

func (s *Service) getQuerier(ctx context.Context) Querier {
	if s.txm != nil {
		return s.txm.GetQuerier(ctx)
	}
	return s.staticQuerier
}

// Next implements coreallocator.Allocator.
func (s *Service) Next(ctx context.Context, ds metadata.Dataset) (coreallocator.Allocation, error) {
	if s == nil {
		return coreallocator.Allocation{}, fmt.Errorf("allocator service is not initialized")
	}

	var next int64
	err := s.getQuerier(ctx).QueryRow(ctx, nextEntitySQL, ds.Dataset, ds.EntityMinimum).Scan(&next)
	if err != nil {
		return coreallocator.Allocation{}, fmt.Errorf("next entity for %s: %w", ds.Dataset, err)
	}

	if err := coreallocator.Check(ds, next); err != nil {
		logger.Warn(ctx, "entity range exhausted",
			"dataset", ds.Dataset,
			"next", next,
			"maximum", ds.EntityMaximum,
		)
		return coreallocator.Allocation{}, err
	}

	return coreallocator.Allocation{
		Entity:    next,
		Reference: coreallocator.MakeReference(ds.Dataset, next),
	}, nil
}
