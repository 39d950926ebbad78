// Package metadata_repo provides PostgreSQL storage for dataset definitions
// and reference data (categories and organisations).
package metadata_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"datasets/internal/core/apperror"
	"datasets/internal/infrastructure/storage/postgres"
	"datasets/internal/metadata"
)

// DatasetRepo implements metadata.Provider and metadata.Writer.
type DatasetRepo struct {
	txManager   *postgres.TxManager
	batch       *postgres.BatchExecutor
	datasetCols []string
}

// NewDatasetRepo creates a dataset repository.
func NewDatasetRepo(txManager *postgres.TxManager) *DatasetRepo {
	return &DatasetRepo{
		txManager:   txManager,
		batch:       postgres.NewBatchExecutor(txManager),
		datasetCols: postgres.ExtractDBColumns[metadata.Dataset](),
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *DatasetRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// datasetField is one row of the dataset_field join.
type datasetField struct {
	Dataset string `db:"dataset"`
	metadata.Field
}

// fieldsQuery selects field descriptors with their owning dataset in list order.
func (r *DatasetRepo) fieldsQuery() squirrel.SelectBuilder {
	return r.Builder().
		Select(
			"df.dataset", "f.field", "f.name", "f.datatype", "f.cardinality",
			"f.category_reference", "f.parent_field", "f.description",
		).
		From("dataset_field df").
		Join("field f ON f.field = df.field").
		OrderBy("df.dataset", "df.position")
}

// Dataset implements metadata.Provider.
func (r *DatasetRepo) Dataset(ctx context.Context, dataset string) (metadata.Dataset, error) {
	querier := r.txManager.GetQuerier(ctx)

	sql, args, err := r.Builder().
		Select(r.datasetCols...).
		From("dataset").
		Where(squirrel.Eq{"dataset": dataset}).
		ToSql()
	if err != nil {
		return metadata.Dataset{}, fmt.Errorf("build query: %w", err)
	}

	var ds metadata.Dataset
	if err := pgxscan.Get(ctx, querier, &ds, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return metadata.Dataset{}, apperror.NewNotFound("dataset", dataset)
		}
		return metadata.Dataset{}, fmt.Errorf("get dataset: %w", err)
	}

	sql, args, err = r.fieldsQuery().Where(squirrel.Eq{"df.dataset": dataset}).ToSql()
	if err != nil {
		return metadata.Dataset{}, fmt.Errorf("build fields query: %w", err)
	}

	var rows []datasetField
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return metadata.Dataset{}, fmt.Errorf("get fields of %s: %w", dataset, err)
	}
	for _, row := range rows {
		ds.Fields = append(ds.Fields, row.Field)
	}
	return ds, nil
}

// Datasets implements metadata.Provider.
func (r *DatasetRepo) Datasets(ctx context.Context) ([]metadata.Dataset, error) {
	querier := r.txManager.GetQuerier(ctx)

	sql, args, err := r.Builder().
		Select(r.datasetCols...).
		From("dataset").
		OrderBy("dataset").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var list []metadata.Dataset
	if err := pgxscan.Select(ctx, querier, &list, sql, args...); err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}

	sql, args, err = r.fieldsQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build fields query: %w", err)
	}

	var rows []datasetField
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}

	byDataset := make(map[string][]metadata.Field, len(list))
	for _, row := range rows {
		byDataset[row.Dataset] = append(byDataset[row.Dataset], row.Field)
	}
	for i := range list {
		list[i].Fields = byDataset[list[i].Dataset]
	}
	return list, nil
}

// SaveDataset implements metadata.Writer. The dataset row, its fields and the
// field list are rewritten in one batch and caches are notified on commit.
func (r *DatasetRepo) SaveDataset(ctx context.Context, def metadata.Dataset) error {
	batch, err := postgres.BuildBatch(r.saveQueries(def)...)
	if err != nil {
		return fmt.Errorf("build dataset statements: %w", err)
	}

	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.batch.ExecuteBatch(ctx, batch); err != nil {
			return fmt.Errorf("save dataset %s: %w", def.Dataset, err)
		}
		return postgres.NotifyDatasetChanged(ctx, r.txManager.GetQuerier(ctx), def.Dataset)
	})
}

// saveQueries returns the statements writing def, in execution order.
func (r *DatasetRepo) saveQueries(def metadata.Dataset) []squirrel.Sqlizer {
	b := r.Builder()

	queries := []squirrel.Sqlizer{
		b.Insert("dataset").
			SetMap(postgres.StructToMap(def)).
			Suffix("ON CONFLICT (dataset) DO UPDATE SET " +
				"name = EXCLUDED.name, parent = EXCLUDED.parent, " +
				"entity_minimum = EXCLUDED.entity_minimum, entity_maximum = EXCLUDED.entity_maximum"),
	}

	for _, f := range def.Fields {
		queries = append(queries, b.Insert("field").
			SetMap(postgres.StructToMap(f)).
			Suffix("ON CONFLICT (field) DO UPDATE SET " +
				"name = EXCLUDED.name, datatype = EXCLUDED.datatype, cardinality = EXCLUDED.cardinality, " +
				"category_reference = EXCLUDED.category_reference, parent_field = EXCLUDED.parent_field, " +
				"description = EXCLUDED.description"))
	}

	queries = append(queries, b.Delete("dataset_field").Where(squirrel.Eq{"dataset": def.Dataset}))
	if len(def.Fields) > 0 {
		link := b.Insert("dataset_field").Columns("dataset", "field", "position")
		for i, f := range def.Fields {
			link = link.Values(def.Dataset, f.Field, i)
		}
		queries = append(queries, link)
	}
	return queries
}

var (
	_ metadata.Provider = (*DatasetRepo)(nil)
	_ metadata.Writer   = (*DatasetRepo)(nil)
)
