package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// BatchExecutor sends several statements in a single round-trip.
type BatchExecutor struct {
	txManager *TxManager
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(txManager *TxManager) *BatchExecutor {
	return &BatchExecutor{txManager: txManager}
}

// BatchQuery represents a query in a batch.
type BatchQuery struct {
	SQL  string
	Args []any
}

// BuildBatch renders squirrel builders into batch queries, keeping order.
func BuildBatch(queries ...squirrel.Sqlizer) ([]BatchQuery, error) {
	out := make([]BatchQuery, 0, len(queries))
	for i, q := range queries {
		sql, args, err := q.ToSql()
		if err != nil {
			return nil, fmt.Errorf("build statement %d: %w", i, err)
		}
		out = append(out, BatchQuery{SQL: sql, Args: args})
	}
	return out, nil
}

// ExecuteBatch executes queries in order inside the transaction carried by
// ctx. The first failing statement aborts the batch.
func (e *BatchExecutor) ExecuteBatch(ctx context.Context, queries []BatchQuery) error {
	tx := e.txManager.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("ExecuteBatch requires transaction context")
	}

	batch := &pgx.Batch{}
	for _, q := range queries {
		batch.Queue(q.SQL, q.Args...)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range queries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch statement %d failed: %w", i, err)
		}
	}

	return nil
}
