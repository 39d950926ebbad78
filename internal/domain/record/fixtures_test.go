package record

import (
	"context"

	"datasets/internal/domain/reference"
	"datasets/internal/metadata"
)

func mf(id string, dt metadata.Datatype) metadata.Field {
	return metadata.Field{Field: id, Datatype: dt, Cardinality: metadata.CardinalityOne}
}

func tpoDataset() metadata.Dataset {
	return metadata.Dataset{
		Dataset:       "tree-preservation-order",
		EntityMinimum: 100,
		EntityMaximum: 200,
		Fields: []metadata.Field{
			mf("name", metadata.DatatypeString),
			mf("reference", metadata.DatatypeString),
			mf("organisation", metadata.DatatypeCurie),
			mf("conservation-area", metadata.DatatypeString),
			mf("documentation-url", metadata.DatatypeURL),
			mf("made-date", metadata.DatatypeDatetime),
			mf("notes", metadata.DatatypeText),
			mf("tree", metadata.DatatypeString),
		},
	}
}

func treeDataset() metadata.Dataset {
	species := mf("tree-species", metadata.DatatypeString)
	species.Cardinality = metadata.CardinalityMany
	species.CategoryReference = "tree-species"

	return metadata.Dataset{
		Dataset:       "tree",
		Parent:        "tree-preservation-order",
		EntityMinimum: 1000,
		EntityMaximum: 1999,
		Fields: []metadata.Field{
			mf("name", metadata.DatatypeString),
			mf("reference", metadata.DatatypeString),
			mf("tree-preservation-order", metadata.DatatypeString),
			mf("organisation", metadata.DatatypeCurie),
			species,
			mf("felled-date", metadata.DatatypeDatetime),
		},
	}
}

func conservationAreaDataset() metadata.Dataset {
	return metadata.Dataset{
		Dataset:       "conservation-area",
		EntityMinimum: 1,
		Fields: []metadata.Field{
			mf("name", metadata.DatatypeString),
			mf("reference", metadata.DatatypeString),
		},
	}
}

func testRegistry() *metadata.Registry {
	reg := metadata.NewRegistry()
	reg.Register(tpoDataset())
	reg.Register(treeDataset())
	reg.Register(conservationAreaDataset())
	return reg
}

func testRefs() *reference.MockRepository {
	orgs := map[string]reference.Organisation{
		"local-authority:BUC": {Organisation: "local-authority:BUC", Name: "Buckinghamshire"},
		"local-authority:OXF": {Organisation: "local-authority:OXF", Name: "Oxford"},
	}
	species := map[string]reference.CategoryValue{
		"oak": {Prefix: "tree-species", Reference: "oak", Name: "Oak", CategoryReference: "tree-species"},
		"ash": {Prefix: "tree-species", Reference: "ash", Name: "Ash", CategoryReference: "tree-species"},
	}

	return &reference.MockRepository{
		OrganisationFunc: func(_ context.Context, id string) (reference.Organisation, error) {
			if org, ok := orgs[id]; ok {
				return org, nil
			}
			return (&reference.MockRepository{}).Organisation(context.Background(), id)
		},
		CategoryValueFunc: func(_ context.Context, cat, ref string) (reference.CategoryValue, error) {
			if cv, ok := species[ref]; ok && cat == "tree-species" {
				return cv, nil
			}
			return (&reference.MockRepository{}).CategoryValue(context.Background(), cat, ref)
		},
		CategoryValuesFunc: func(_ context.Context, cat string) ([]reference.CategoryValue, error) {
			if cat != "tree-species" {
				return nil, nil
			}
			return []reference.CategoryValue{species["ash"], species["oak"]}, nil
		},
		OrganisationsFunc: func(context.Context) ([]reference.Organisation, error) {
			return []reference.Organisation{orgs["local-authority:BUC"], orgs["local-authority:OXF"]}, nil
		},
	}
}
