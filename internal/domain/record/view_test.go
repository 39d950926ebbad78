package record

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasets/internal/core/entity"
)

func TestDisplayValue_TranslatesCategoryNames(t *testing.T) {
	r := &Record{
		Dataset: "tree",
		Name:    "Tree 1",
		Data:    entity.Data{"tree-species": "oak;ash;elm"},
	}

	got, err := DisplayValue(context.Background(), testRefs(), treeDataset(), r, "tree-species")
	require.NoError(t, err)
	assert.Equal(t, []string{"Oak", "Ash"}, got)

	got, err = DisplayValue(context.Background(), testRefs(), treeDataset(), r, "name")
	require.NoError(t, err)
	assert.Equal(t, "Tree 1", got)

	got, err = DisplayValue(context.Background(), testRefs(), treeDataset(), r, "felled-date")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDisplayValue_NothingResolves(t *testing.T) {
	r := &Record{Dataset: "tree", Data: entity.Data{"tree-species": "elm"}}

	got, err := DisplayValue(context.Background(), testRefs(), treeDataset(), r, "tree-species")
	require.NoError(t, err)
	assert.Equal(t, "elm", got)
}

func TestRow(t *testing.T) {
	org := "local-authority:BUC"
	r := &Record{
		Entity:       100,
		Dataset:      "tree-preservation-order",
		Reference:    "tpo-100",
		Name:         "Oak Lane",
		Organisation: &org,
		Data:         entity.Data{"conservation-area": "CA-1"},
	}
	child := &Record{Entity: 1000, Dataset: "tree", Reference: "t-1000"}
	child.SetParent(r.Key())

	row := Row(tpoDataset(), r, []*Record{child})

	assert.Equal(t, map[string]string{
		"name":              "Oak Lane",
		"reference":         "tpo-100",
		"organisation":      "local-authority:BUC",
		"conservation-area": "CA-1",
		"documentation-url": "",
		"made-date":         "",
		"notes":             "",
		"tree":              "t-1000",
	}, row)
	assert.Equal(t, "tree-preservation-order/100", r.Key().String())
}
