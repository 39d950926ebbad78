package metadata

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func field(id string, dt Datatype) Field {
	return Field{Field: id, Datatype: dt, Cardinality: CardinalityOne}
}

func identifiers(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Field
	}
	return out
}

func TestSort_DisplayOrder(t *testing.T) {
	fields := []Field{
		field("end-date", DatatypeDatetime),
		field("notes", DatatypeText),
		field("reference", DatatypeString),
		field("designation-date", DatatypeDatetime),
		field("geometry", DatatypeMultiPolygon),
		field("start-date", DatatypeDatetime),
		field("prefix", DatatypeString),
		field("entry-date", DatatypeDatetime),
		field("name", DatatypeString),
		field("documentation-url", DatatypeURL),
		field("entity", DatatypeInteger),
		field("address-date", DatatypeDatetime),
	}

	Sort(fields)

	assert.Equal(t, []string{
		"entity",
		"name",
		"prefix",
		"reference",
		"documentation-url",
		"geometry",
		"notes",
		"entry-date",
		"start-date",
		"address-date",
		"designation-date",
		"end-date",
	}, identifiers(fields))
}

func TestSort_StructuralFieldsWinOverDatatype(t *testing.T) {
	fields := []Field{
		field("name", DatatypeDatetime),
		field("entity", DatatypeDatetime),
		field("abc", DatatypeString),
	}
	Sort(fields)
	assert.Equal(t, []string{"entity", "name", "abc"}, identifiers(fields))
}

func TestSorted_DoesNotModifyInput(t *testing.T) {
	in := []Field{field("zeta", DatatypeString), field("alpha", DatatypeString)}
	out := Sorted(in)
	assert.Equal(t, "zeta", in[0].Field)
	assert.Equal(t, "alpha", out[0].Field)
}

func TestLess_NeverBothWays(t *testing.T) {
	ids := []string{
		"entity", "name", "prefix", "reference", "notes", "geometry", "point",
		"entry-date", "start-date", "end-date", "designation-date", "date",
		"end-of-life-date", "start", "tree-preservation-order",
	}
	datatypes := []Datatype{DatatypeString, DatatypeDatetime, DatatypeURL}

	var fields []Field
	for _, id := range ids {
		for _, dt := range datatypes {
			fields = append(fields, field(id, dt))
		}
	}

	for _, a := range fields {
		assert.False(t, Less(a, a), "irreflexive: %s", a.Field)
		for _, b := range fields {
			name := fmt.Sprintf("%s(%s) vs %s(%s)", a.Field, a.Datatype, b.Field, b.Datatype)
			assert.False(t, Less(a, b) && Less(b, a), name)
			for _, c := range fields {
				if Less(a, b) && Less(b, c) {
					assert.True(t, Less(a, c), "transitive: %s, %s", name, c.Field)
				}
			}
		}
	}
}

func TestLess_EntityFirstAndDatetimeLast(t *testing.T) {
	general := []Field{field("name", DatatypeString), field("zzz", DatatypeText), field("aaa", DatatypeURL)}
	dates := []Field{field("designation-date", DatatypeDatetime), field("end-date", DatatypeDatetime)}
	entity := field("entity", DatatypeInteger)

	for _, f := range append(general, dates...) {
		assert.True(t, Less(entity, f), f.Field)
	}
	for _, g := range general {
		for _, d := range dates {
			assert.True(t, Less(g, d), "%s before %s", g.Field, d.Field)
		}
	}
}

func TestField_Label(t *testing.T) {
	assert.Equal(t, "Tree Preservation Order", Field{Field: "tree-preservation-order"}.Label())
	assert.Equal(t, "TPO", Field{Field: "tree-preservation-order", Name: "TPO"}.Label())
}

func TestDataset_InRange(t *testing.T) {
	d := Dataset{Dataset: "tree-preservation-order", EntityMinimum: 100, EntityMaximum: 200}
	assert.True(t, d.InRange(100))
	assert.True(t, d.InRange(200))
	assert.False(t, d.InRange(99))
	assert.False(t, d.InRange(201))

	open := Dataset{EntityMinimum: 1}
	assert.True(t, open.InRange(1_000_000))
}
