// Package allocator provides domain contracts for entity id and reference
// allocation. Implementations live in the infrastructure layer.
package allocator

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"datasets/internal/core/apperror"
	"datasets/internal/metadata"
)

// ErrRangeExceeded is the cause carried by the ALLOCATION_RANGE_EXCEEDED error.
var ErrRangeExceeded = errors.New("entity range exceeded")

// Allocation is the identity handed to a new record.
type Allocation struct {
	Entity    int64
	Reference string
}

// Allocator produces the next entity id and reference for a dataset.
//
// Implementations must never hand out the same entity twice for one dataset,
// even under concurrent callers. They are called inside the transaction that
// inserts the record, so a rolled back insert releases the id.
type Allocator interface {
	Next(ctx context.Context, ds metadata.Dataset) (Allocation, error)
}

// Prefix is the first letter of every hyphen-separated word of dataset.
// tree-preservation-order becomes tpo.
func Prefix(dataset string) string {
	var b strings.Builder
	for _, word := range strings.Split(dataset, "-") {
		if word == "" {
			continue
		}
		b.WriteString(word[:1])
	}
	return b.String()
}

// MakeReference formats the human-readable reference of a record.
func MakeReference(dataset string, entity int64) string {
	return Prefix(dataset) + "-" + strconv.FormatInt(entity, 10)
}

// NextEntity applies the allocation rule to the current maximum entity of a
// dataset: max+1, or the dataset minimum when there are no records yet.
// found is false when the dataset is empty.
func NextEntity(ds metadata.Dataset, maxExisting int64, found bool) (Allocation, error) {
	next := ds.EntityMinimum
	if found && maxExisting+1 > next {
		next = maxExisting + 1
	}
	if err := Check(ds, next); err != nil {
		return Allocation{}, err
	}
	return Allocation{Entity: next, Reference: MakeReference(ds.Dataset, next)}, nil
}

// Check verifies entity lies in the dataset range.
func Check(ds metadata.Dataset, entity int64) error {
	if ds.InRange(entity) {
		return nil
	}
	return apperror.NewAllocationRangeExceeded(ds.Dataset, entity, ds.EntityMaximum).
		WithCause(ErrRangeExceeded)
}
