// Package tx provides the transaction boundary used by the record engine.
// Validation and materialization of one submission run inside a single
// transaction; allocation of the entity id happens inside that same boundary
// so a failed insert never consumes an id.
package tx

import (
	"context"
)

// Manager runs fn inside a transaction.
// If fn returns an error, the transaction is rolled back.
// Nested calls reuse the transaction already carried by ctx.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
