package metadata_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"datasets/internal/core/apperror"
	"datasets/internal/domain/reference"
	"datasets/internal/infrastructure/storage/postgres"
)

// ReferenceRepo implements reference.Repository and reference.Writer.
type ReferenceRepo struct {
	txManager *postgres.TxManager
	valueCols []string
	orgCols   []string
}

// NewReferenceRepo creates a reference data repository.
func NewReferenceRepo(txManager *postgres.TxManager) *ReferenceRepo {
	return &ReferenceRepo{
		txManager: txManager,
		valueCols: postgres.ExtractDBColumns[reference.CategoryValue](),
		orgCols:   postgres.ExtractDBColumns[reference.Organisation](),
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *ReferenceRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// CategoryValues implements reference.Repository.
func (r *ReferenceRepo) CategoryValues(ctx context.Context, categoryReference string) ([]reference.CategoryValue, error) {
	sql, args, err := r.Builder().
		Select(r.valueCols...).
		From("category_value").
		Where(squirrel.Eq{"category_reference": categoryReference}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var values []reference.CategoryValue
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &values, sql, args...); err != nil {
		return nil, fmt.Errorf("category values of %s: %w", categoryReference, err)
	}
	return values, nil
}

// CategoryValue implements reference.Repository.
func (r *ReferenceRepo) CategoryValue(ctx context.Context, categoryReference, ref string) (reference.CategoryValue, error) {
	sql, args, err := r.Builder().
		Select(r.valueCols...).
		From("category_value").
		Where(squirrel.Eq{"category_reference": categoryReference, "reference": ref}).
		ToSql()
	if err != nil {
		return reference.CategoryValue{}, fmt.Errorf("build query: %w", err)
	}

	var value reference.CategoryValue
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &value, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return reference.CategoryValue{}, apperror.NewNotFound("category_value", categoryReference+"/"+ref)
		}
		return reference.CategoryValue{}, fmt.Errorf("get category value: %w", err)
	}
	return value, nil
}

// Organisations implements reference.Repository.
func (r *ReferenceRepo) Organisations(ctx context.Context) ([]reference.Organisation, error) {
	sql, args, err := r.Builder().
		Select(r.orgCols...).
		From("organisation").
		OrderBy("name", "organisation").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var orgs []reference.Organisation
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &orgs, sql, args...); err != nil {
		return nil, fmt.Errorf("list organisations: %w", err)
	}
	return orgs, nil
}

// Organisation implements reference.Repository.
func (r *ReferenceRepo) Organisation(ctx context.Context, organisation string) (reference.Organisation, error) {
	sql, args, err := r.Builder().
		Select(r.orgCols...).
		From("organisation").
		Where(squirrel.Eq{"organisation": organisation}).
		ToSql()
	if err != nil {
		return reference.Organisation{}, fmt.Errorf("build query: %w", err)
	}

	var org reference.Organisation
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &org, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return reference.Organisation{}, apperror.NewNotFound("organisation", organisation)
		}
		return reference.Organisation{}, fmt.Errorf("get organisation: %w", err)
	}
	return org, nil
}

// SaveCategory implements reference.Writer.
func (r *ReferenceRepo) SaveCategory(ctx context.Context, c reference.Category) error {
	return r.upsert(ctx, "category", postgres.StructToMap(c), "reference")
}

// SaveCategoryValue implements reference.Writer. Values are keyed by
// (prefix, reference).
func (r *ReferenceRepo) SaveCategoryValue(ctx context.Context, v reference.CategoryValue) error {
	return r.upsert(ctx, "category_value", postgres.StructToMap(v.WithDefaultPrefix()), categoryValueKey)
}

// SaveOrganisation implements reference.Writer.
func (r *ReferenceRepo) SaveOrganisation(ctx context.Context, o reference.Organisation) error {
	return r.upsert(ctx, "organisation", postgres.StructToMap(o), "organisation")
}

func (r *ReferenceRepo) upsert(ctx context.Context, table string, data map[string]any, conflict string) error {
	sql, args, err := upsertQuery(r.Builder(), table, data, conflict).ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

const categoryValueKey = "prefix, reference"

// upsertQuery inserts data, overwriting every column on a key conflict.
func upsertQuery(b squirrel.StatementBuilderType, table string, data map[string]any, conflict string) squirrel.InsertBuilder {
	q := b.Insert(table).SetMap(data)

	cols := sortedColumns(data)
	set := make([]string, 0, len(cols))
	for _, col := range cols {
		set = append(set, col+" = EXCLUDED."+col)
	}
	return q.Suffix(fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", conflict, joinComma(set)))
}

var (
	_ reference.Repository = (*ReferenceRepo)(nil)
	_ reference.Writer     = (*ReferenceRepo)(nil)
)
