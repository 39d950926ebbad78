// Package record_repo provides the PostgreSQL record repository.
package record_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"datasets/internal/core/apperror"
	"datasets/internal/domain"
	"datasets/internal/domain/record"
	"datasets/internal/infrastructure/storage/postgres"
)

const tableName = "record"

// uniqueViolation is the PostgreSQL error code for a duplicate key.
const uniqueViolation = "23505"

// immutableColumns are never rewritten by Update.
var immutableColumns = map[string]bool{
	"entity":         true,
	"dataset":        true,
	"reference":      true,
	"entry_date":     true,
	"owning_entity":  true,
	"owning_dataset": true,
}

// Repo implements record.Repository.
type Repo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// New creates a record repository.
func New(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[record.Record](),
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *Repo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *Repo) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(tableName)
}

// Create inserts a new record.
func (r *Repo) Create(ctx context.Context, rec *record.Record) error {
	sql, args, err := r.insertQuery(rec).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.NewDuplicate("record", "reference", rec.Reference).WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", tableName, err)
	}
	return nil
}

func (r *Repo) insertQuery(rec *record.Record) squirrel.InsertBuilder {
	return r.Builder().
		Insert(tableName).
		SetMap(postgres.StructToMap(rec))
}

// Update rewrites the mutable columns of an existing record.
func (r *Repo) Update(ctx context.Context, rec *record.Record) error {
	sql, args, err := r.updateQuery(rec).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("record", rec.Key().String())
	}
	return nil
}

func (r *Repo) updateQuery(rec *record.Record) squirrel.UpdateBuilder {
	data := postgres.StructToMap(rec)
	set := make(map[string]any, len(data))
	for col, val := range data {
		if !immutableColumns[col] {
			set[col] = val
		}
	}

	return r.Builder().
		Update(tableName).
		SetMap(set).
		Where(squirrel.Eq{"dataset": rec.Dataset, "entity": rec.Entity})
}

// GetByKey retrieves one record.
func (r *Repo) GetByKey(ctx context.Context, key record.Key) (*record.Record, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"dataset": key.Dataset, "entity": key.Entity}).
		Limit(1)

	return r.getOne(ctx, q, "record", key.String())
}

// FindByReference retrieves the record of dataset with the given reference.
func (r *Repo) FindByReference(ctx context.Context, dataset, reference string) (*record.Record, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"dataset": dataset, "reference": reference}).
		Limit(1)

	return r.getOne(ctx, q, dataset, reference)
}

func (r *Repo) getOne(ctx context.Context, q squirrel.SelectBuilder, entity string, id any) (*record.Record, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rec := new(record.Record)
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(entity, id)
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// MaxEntity returns the highest stored entity of dataset.
func (r *Repo) MaxEntity(ctx context.Context, dataset string) (int64, bool, error) {
	sql, args, err := r.Builder().
		Select("MAX(entity)").
		From(tableName).
		Where(squirrel.Eq{"dataset": dataset}).
		ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("build query: %w", err)
	}

	var maxEntity *int64
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&maxEntity); err != nil {
		return 0, false, fmt.Errorf("max entity: %w", err)
	}
	if maxEntity == nil {
		return 0, false, nil
	}
	return *maxEntity, true, nil
}

// ListByDataset returns a page of records ordered by entity.
func (r *Repo) ListByDataset(ctx context.Context, dataset string, filter domain.ListFilter) (domain.ListResult[*record.Record], error) {
	filter = filter.Normalize()
	result := domain.ListResult[*record.Record]{
		Items:  []*record.Record{},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.listQuery(dataset, filter)

	countSQL, countArgs, err := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	sql, args, err := q.
		OrderBy("entity").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}
	return result, nil
}

func (r *Repo) listQuery(dataset string, filter domain.ListFilter) squirrel.SelectBuilder {
	q := r.baseSelect().Where(squirrel.Eq{"dataset": dataset})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"reference": pattern},
		})
	}
	return q
}

// Children returns the records owned by parent.
func (r *Repo) Children(ctx context.Context, parent record.Key) ([]*record.Record, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"owning_dataset": parent.Dataset, "owning_entity": parent.Entity}).
		OrderBy("dataset", "entity").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var children []*record.Record
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &children, sql, args...); err != nil {
		return nil, fmt.Errorf("children of %s: %w", parent, err)
	}
	return children, nil
}

var _ record.Repository = (*Repo)(nil)
