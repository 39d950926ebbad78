package schema

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasets/internal/core/datepart"
	"datasets/internal/domain/reference"
	"datasets/internal/metadata"
)

func mf(id, name string, dt metadata.Datatype) metadata.Field {
	return metadata.Field{Field: id, Name: name, Datatype: dt, Cardinality: metadata.CardinalityOne}
}

func treeDataset() metadata.Dataset {
	species := mf("tree-species", "Tree species", metadata.DatatypeString)
	species.Cardinality = metadata.CardinalityMany
	species.CategoryReference = "tree-species"

	return metadata.Dataset{
		Dataset:       "tree",
		Parent:        "tree-preservation-order",
		EntityMinimum: 1000,
		EntityMaximum: 1999,
		Fields: []metadata.Field{
			mf("felled-date", "", metadata.DatatypeDatetime),
			mf("end-date", "End date", metadata.DatatypeDatetime),
			species,
			mf("entity", "Entity", metadata.DatatypeInteger),
			mf("point", "Point", metadata.DatatypePoint),
			mf("tree-preservation-order", "Tree preservation order", metadata.DatatypeString),
			mf("reference", "Reference", metadata.DatatypeString),
			mf("organisation", "Organisation", metadata.DatatypeCurie),
			mf("geometry", "Geometry", metadata.DatatypeMultiPolygon),
			mf("start-date", "Start date", metadata.DatatypeDatetime),
			mf("notes", "Notes", metadata.DatatypeText),
			mf("documentation-url", "", metadata.DatatypeURL),
			mf("entry-date", "Entry date", metadata.DatatypeDatetime),
			mf("name", "Name", metadata.DatatypeString),
		},
	}
}

func testRefs() *reference.MockRepository {
	return &reference.MockRepository{
		CategoryValuesFunc: func(_ context.Context, category string) ([]reference.CategoryValue, error) {
			if category != "tree-species" {
				return nil, nil
			}
			return []reference.CategoryValue{
				{Prefix: "tree-species", Reference: "oak", Name: "Oak", CategoryReference: "tree-species"},
				{Prefix: "tree-species", Reference: "ash", Name: "Ash", CategoryReference: "tree-species"},
			}, nil
		},
		OrganisationsFunc: func(context.Context) ([]reference.Organisation, error) {
			return []reference.Organisation{
				{Organisation: "local-authority:BUC", Name: "Buckinghamshire"},
			}, nil
		},
	}
}

func TestBuild_ChildSchemaGolden(t *testing.T) {
	b := NewBuilder(testRefs())

	s, err := b.Build(context.Background(), treeDataset(), Options{
		ParentDataset:   "tree-preservation-order",
		ParentReference: "tpo-100",
		Defaults:        map[string]any{"organisation": "local-authority:BUC"},
	})
	require.NoError(t, err)

	out, err := json.MarshalIndent(s, "", "  ")
	require.NoError(t, err)
	out = append(out, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "tree_child_schema", out)
}

func TestBuild_ExcludesStructuralFields(t *testing.T) {
	s, err := NewBuilder(testRefs()).Build(context.Background(), treeDataset(), Options{
		Exclude: []string{"tree-preservation-order"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"name",
		"documentation-url",
		"geometry",
		"notes",
		"organisation",
		"point",
		"tree-species",
		"felled-date",
	}, s.Names())
	assert.True(t, s.IsDatasetField("tree-preservation-order"))
	assert.True(t, s.IsDatasetField("entity"))
	assert.False(t, s.IsDatasetField("colour"))
}

func TestBuild_SingleCategoryHasEmptyChoice(t *testing.T) {
	ds := treeDataset()
	for i := range ds.Fields {
		if ds.Fields[i].Field == "tree-species" {
			ds.Fields[i].Cardinality = metadata.CardinalityOne
		}
	}

	s, err := NewBuilder(testRefs()).Build(context.Background(), ds, Options{})
	require.NoError(t, err)

	f, ok := s.Field("tree-species")
	require.True(t, ok)
	assert.Equal(t, WidgetSelect, f.Widget)
	require.Len(t, f.Choices, 3)
	assert.Equal(t, reference.Choice{}, f.Choices[0])
}

func TestBuild_EditDefaults(t *testing.T) {
	s, err := NewBuilder(testRefs()).Build(context.Background(), treeDataset(), Options{
		Defaults: map[string]any{
			"name":                    "Oak by the church",
			"felled-date":             "2021-03-05",
			"tree-preservation-order": "tpo-100",
		},
		Inactive: []string{"tree-preservation-order"},
	})
	require.NoError(t, err)

	name, _ := s.Field("name")
	assert.Equal(t, "Oak by the church", name.Default)

	felled, _ := s.Field("felled-date")
	assert.Equal(t, datepart.Parts{Year: "2021", Month: "3", Day: "5"}, felled.Default)

	parent, _ := s.Field("tree-preservation-order")
	assert.True(t, parent.Inactive)
	assert.Equal(t, "tpo-100", parent.Default)
}

func TestBuild_ReferenceLookupFails(t *testing.T) {
	refs := &reference.MockRepository{
		CategoryValuesFunc: func(context.Context, string) ([]reference.CategoryValue, error) {
			return nil, errors.New("connection reset")
		},
	}

	_, err := NewBuilder(refs).Build(context.Background(), treeDataset(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tree-species")
}

func metadataDatatype(s string) metadata.Datatype {
	return metadata.Datatype(s)
}
