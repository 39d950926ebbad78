package metadata

import (
	"slices"
	"strings"
)

var structuralRank = map[string]int{
	FieldEntity:    0,
	FieldName:      1,
	FieldPrefix:    2,
	FieldReference: 3,
}

const (
	rankGeneral  = 4
	rankDatetime = 5
)

func fieldRank(f Field) int {
	if r, ok := structuralRank[f.Field]; ok {
		return r
	}
	if f.IsDatetime() {
		return rankDatetime
	}
	return rankGeneral
}

// datePrefix is the part of a datetime identifier before the first hyphen.
func datePrefix(identifier string) string {
	prefix, _, _ := strings.Cut(identifier, "-")
	return prefix
}

func dateRank(prefix string) int {
	switch prefix {
	case "entry":
		return 0
	case "start":
		return 1
	case "end":
		return 3
	default:
		return 2
	}
}

// Compare orders fields for display and export:
// entity, name, prefix, reference, then every other non-datetime field by
// identifier, then datetime fields as entry, start, others (by prefix), end.
func Compare(a, b Field) int {
	ra, rb := fieldRank(a), fieldRank(b)
	if ra != rb {
		return ra - rb
	}

	if ra == rankDatetime {
		pa, pb := datePrefix(a.Field), datePrefix(b.Field)
		if da, db := dateRank(pa), dateRank(pb); da != db {
			return da - db
		}
		if c := strings.Compare(pa, pb); c != 0 {
			return c
		}
	}

	return strings.Compare(a.Field, b.Field)
}

// Less reports whether a sorts before b.
func Less(a, b Field) bool {
	return Compare(a, b) < 0
}

// Sort orders fields in place. Equal fields keep their relative order.
func Sort(fields []Field) {
	slices.SortStableFunc(fields, Compare)
}

// Sorted returns an ordered copy of fields.
func Sorted(fields []Field) []Field {
	out := slices.Clone(fields)
	Sort(out)
	return out
}
