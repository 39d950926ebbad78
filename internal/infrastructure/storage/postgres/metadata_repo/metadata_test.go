package metadata_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasets/internal/domain/reference"
	"datasets/internal/infrastructure/storage/postgres"
	"datasets/internal/metadata"
)

func TestDatasetRepo_SaveQueries(t *testing.T) {
	r := NewDatasetRepo(nil)
	def := metadata.Dataset{
		Dataset:       "tree",
		Parent:        "tree-preservation-order",
		EntityMinimum: 1000,
		EntityMaximum: 1999,
		Fields: []metadata.Field{
			{Field: "name", Datatype: metadata.DatatypeString, Cardinality: metadata.CardinalityOne},
			{Field: "felled-date", Datatype: metadata.DatatypeDatetime, Cardinality: metadata.CardinalityOne},
		},
	}

	queries := r.saveQueries(def)
	// dataset, two fields, link delete, link insert
	require.Len(t, queries, 5)

	sql, args, err := queries[0].ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "INSERT INTO dataset")
	assert.Contains(t, sql, "ON CONFLICT (dataset) DO UPDATE")
	assert.Contains(t, args, "tree-preservation-order")
	assert.NotContains(t, sql, "fields")

	sql, args, err = queries[4].ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "INSERT INTO dataset_field (dataset,field,position)")
	assert.Equal(t, []any{"tree", "name", 0, "tree", "felled-date", 1}, args)
}

func TestDatasetRepo_SaveQueriesWithoutFields(t *testing.T) {
	r := NewDatasetRepo(nil)

	queries := r.saveQueries(metadata.Dataset{Dataset: "conservation-area"})
	require.Len(t, queries, 2)

	sql, _, err := queries[1].ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "DELETE FROM dataset_field WHERE dataset = $1")
}

func TestDatasetRepo_FieldsQueryOrder(t *testing.T) {
	r := NewDatasetRepo(nil)

	sql, _, err := r.fieldsQuery().ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "JOIN field f ON f.field = df.field")
	assert.Contains(t, sql, "ORDER BY df.dataset, df.position")
}

func TestUpsertQuery(t *testing.T) {
	r := NewReferenceRepo(nil)
	org := reference.Organisation{Organisation: "local-authority:BUC", Name: "Buckinghamshire"}

	sql, _, err := upsertQuery(r.Builder(), "organisation", postgres.StructToMap(org), "organisation").ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "INSERT INTO organisation")
	assert.Contains(t, sql, "ON CONFLICT (organisation) DO UPDATE SET")
	assert.Contains(t, sql, "name = EXCLUDED.name")
	assert.Contains(t, sql, "entry_date = EXCLUDED.entry_date")
}

func TestUpsertQuery_CategoryValueKey(t *testing.T) {
	r := NewReferenceRepo(nil)
	v := reference.CategoryValue{CategoryReference: "tree-species", Reference: "oak", Name: "Oak"}.WithDefaultPrefix()

	sql, args, err := upsertQuery(r.Builder(), "category_value", postgres.StructToMap(v), categoryValueKey).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "ON CONFLICT (prefix, reference) DO UPDATE SET")
	assert.Contains(t, sql, "category_reference = EXCLUDED.category_reference")
	assert.Contains(t, args, "tree-species")
}
