package fixture

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasets/internal/domain/record"
	"datasets/internal/infrastructure/storage/memory"
	"datasets/internal/metadata"
)

func TestLoadFile(t *testing.T) {
	f, err := LoadFile("testdata/tree_preservation.yaml")
	require.NoError(t, err)

	require.Len(t, f.Datasets, 3)
	tree := f.Datasets[2]
	assert.Equal(t, "tree-preservation-order", tree.Parent)
	assert.Equal(t, int64(1999), tree.EntityMaximum)

	name, ok := tree.Field("name")
	require.True(t, ok)
	assert.Equal(t, metadata.DatatypeString, name.Datatype)
	assert.Equal(t, metadata.CardinalityOne, name.Cardinality)

	species, ok := tree.Field("tree-species")
	require.True(t, ok)
	assert.True(t, species.IsMany())
	assert.True(t, species.IsCategory())

	require.Len(t, f.Categories, 1)
	assert.Equal(t, "tree-species", f.Categories[0].Values[0].CategoryReference)
	assert.Equal(t, "tree-species", f.Categories[0].Values[0].Prefix)

	require.NotNil(t, f.Organisations[1].LocalAuthorityType)
	assert.Equal(t, "UA", *f.Organisations[1].LocalAuthorityType)
	assert.Equal(t, "2024", f.Records[1].Values["made-date_year"])
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown key",
			yaml:    "datasets:\n  - dataset: tree\n    colour: green\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "duplicate dataset",
			yaml:    "datasets:\n  - dataset: tree\n  - dataset: tree\n",
			wantErr: `duplicate dataset "tree"`,
		},
		{
			name:    "inverted range",
			yaml:    "datasets:\n  - dataset: tree\n    entity-minimum: 10\n    entity-maximum: 5\n",
			wantErr: "entity-maximum 5 is below entity-minimum 10",
		},
		{
			name:    "bad cardinality",
			yaml:    "datasets:\n  - dataset: tree\n    fields:\n      - field: name\n        cardinality: many\n",
			wantErr: `unknown cardinality "many"`,
		},
		{
			name:    "parent without reference",
			yaml:    "records:\n  - dataset: tree\n    parent:\n      dataset: tree-preservation-order\n",
			wantErr: "records[0].parent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApply_MemoryStore(t *testing.T) {
	f, err := LoadFile("testdata/tree_preservation.yaml")
	require.NoError(t, err)

	store := memory.NewStore()
	svc := record.NewService(record.ServiceConfig{
		Datasets:   store.Datasets(),
		Records:    store.Records(),
		References: store.References(),
		Allocator:  store.Allocator(),
		TxManager:  store.TxManager(),
		History:    store.History(),
	})
	ctx := context.Background()

	sum, err := Apply(ctx, f, Targets{
		TxManager:  store.TxManager(),
		Datasets:   store.Datasets(),
		References: store.References(),
		Records:    svc,
	})
	require.NoError(t, err)
	assert.Equal(t, Summary{Datasets: 3, Categories: 1, CategoryValues: 3, Organisations: 2, Records: 3}, sum)

	tree, err := svc.FindByReference(ctx, "tree", "t-1000")
	require.NoError(t, err)
	assert.Equal(t, "tpo-100", tree.Data["tree-preservation-order"])
	assert.Equal(t, "ca-1", tree.Data["conservation-area"])
	assert.Equal(t, "oak;yew", tree.Data["tree-species"])
	require.NotNil(t, tree.Organisation)
	assert.Equal(t, "local-authority:BUC", *tree.Organisation)

	tpo, err := svc.FindByReference(ctx, "tree-preservation-order", "tpo-100")
	require.NoError(t, err)
	assert.Equal(t, "2024-03", tpo.Data["made-date"])

	orgs, err := store.References().Organisations(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Buckinghamshire", orgs[0].Name)
	assert.False(t, orgs[0].EntryDate.IsZero())
}

func TestApply_RollsBackOnFailure(t *testing.T) {
	f, err := Load(strings.NewReader(`
datasets:
  - dataset: conservation-area
    entity-minimum: 1
    fields:
      - field: name
organisations:
  - organisation: local-authority:BUC
    name: Buckinghamshire
records:
  - dataset: conservation-area
    values:
      colour: green
`))
	require.NoError(t, err)

	store := memory.NewStore()
	svc := record.NewService(record.ServiceConfig{
		Datasets:   store.Datasets(),
		Records:    store.Records(),
		References: store.References(),
		Allocator:  store.Allocator(),
		TxManager:  store.TxManager(),
	})

	_, err = Apply(context.Background(), f, Targets{
		TxManager:  store.TxManager(),
		Datasets:   store.Datasets(),
		References: store.References(),
		Records:    svc,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "records[0] (conservation-area)")

	orgs, err := store.References().Organisations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orgs)
}
