package postgres

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBatch(t *testing.T) {
	b := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	batch, err := BuildBatch(
		b.Delete("dataset_field").Where(squirrel.Eq{"dataset": "tree"}),
		b.Insert("dataset_field").Columns("dataset", "field", "position").Values("tree", "name", 0),
	)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "DELETE FROM dataset_field WHERE dataset = $1", batch[0].SQL)
	assert.Equal(t, []any{"tree", "name", 0}, batch[1].Args)
}

func TestBuildBatch_Error(t *testing.T) {
	b := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	_, err := BuildBatch(b.Insert(""))
	assert.ErrorContains(t, err, "build statement 0")
}
