package record_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasets/internal/core/entity"
	"datasets/internal/domain"
	"datasets/internal/domain/record"
)

func TestRepo_ListQuery(t *testing.T) {
	r := New(nil)

	tests := []struct {
		name     string
		filter   domain.ListFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "dataset only",
			filter:   domain.ListFilter{},
			wantSQL:  "WHERE dataset = $1",
			wantArgs: []any{"tree"},
		},
		{
			name:     "search matches name or reference",
			filter:   domain.ListFilter{Search: "oak"},
			wantSQL:  "WHERE dataset = $1 AND (name ILIKE $2 OR reference ILIKE $3)",
			wantArgs: []any{"tree", "%oak%", "%oak%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := r.listQuery("tree", tt.filter).ToSql()
			require.NoError(t, err)
			assert.Contains(t, sql, "FROM record")
			assert.Contains(t, sql, tt.wantSQL)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestRepo_UpdateQueryKeepsIdentity(t *testing.T) {
	r := New(nil)
	rec := &record.Record{
		Entity:    1000,
		Dataset:   "tree",
		Reference: "t-1000",
		Name:      "Renamed",
		Data:      entity.Data{"felled-date": "2023"},
	}
	rec.SetParent(record.Key{Entity: 100, Dataset: "tree-preservation-order"})

	sql, args, err := r.updateQuery(rec).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "UPDATE record SET")
	assert.Contains(t, sql, "WHERE dataset = $")
	for _, col := range []string{"reference =", "owning_entity =", "owning_dataset =", "entry_date ="} {
		assert.NotContains(t, sql, col)
	}
	assert.Contains(t, sql, "name = $")
	assert.Contains(t, args, "Renamed")
}

func TestRepo_InsertQueryWritesEveryColumn(t *testing.T) {
	r := New(nil)

	sql, _, err := r.insertQuery(&record.Record{Entity: 100, Dataset: "tree-preservation-order", Reference: "tpo-100"}).ToSql()
	require.NoError(t, err)

	for _, col := range r.selectCols {
		assert.Contains(t, sql, col)
	}
}
