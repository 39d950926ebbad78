package record

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"datasets/internal/core/apperror"
	"datasets/internal/domain/reference"
	"datasets/internal/metadata"
)

// DisplayValue returns the value of field as shown to readers. Stored codes
// of a cardinality "n" category field are translated to category value
// names; codes that do not resolve are dropped, and when none resolve the
// raw value is returned.
func DisplayValue(ctx context.Context, refs reference.Repository, ds metadata.Dataset, r *Record, field string) (any, error) {
	value := r.Value(field)
	if value == nil {
		return nil, nil
	}

	f, ok := ds.Field(field)
	if !ok || !f.IsMany() || !f.IsCategory() {
		return value, nil
	}
	raw, ok := value.(string)
	if !ok {
		return value, nil
	}

	var names []string
	for _, code := range strings.Split(raw, metadata.MultiValueSeparator) {
		if code == "" {
			continue
		}
		cv, err := refs.CategoryValue(ctx, f.CategoryReference, code)
		if err != nil {
			if apperror.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("category value %s/%s: %w", f.CategoryReference, code, err)
		}
		names = append(names, cv.Name)
	}
	if len(names) == 0 {
		return value, nil
	}
	return names, nil
}

// Row flattens r into the column→value map used by listings and exports.
// Every dataset field gets a column. Organisations are semicolon-joined,
// and a child whose dataset is also a field of ds fills that column with
// its reference.
func Row(ds metadata.Dataset, r *Record, children []*Record) map[string]string {
	row := make(map[string]string, len(ds.Fields))
	for _, f := range ds.Fields {
		row[f.Field] = stringify(r.Value(f.Field))
	}
	for _, child := range children {
		if ds.HasField(child.Dataset) {
			row[child.Dataset] = child.Reference
		}
	}
	return row
}

// Columns returns the row columns of ds in display order.
func Columns(ds metadata.Dataset) []string {
	return ds.FieldNames()
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, metadata.MultiValueSeparator)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
