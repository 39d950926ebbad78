// Package entity provides the storage-facing building blocks shared by records
// and reference data: the open-ended data bag and the entry/start/end dates.
package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// Data is the open-ended key→value bag of a record (JSONB in PostgreSQL).
// Keys are field identifiers of the owning dataset.
//
// Decoding uses json.Number so numeric values survive a round trip untouched.
type Data map[string]any

// Scan implements sql.Scanner for reading from PostgreSQL JSONB.
func (d *Data) Scan(src any) error {
	if src == nil {
		*d = nil
		return nil
	}

	var source []byte
	switch v := src.(type) {
	case []byte:
		source = v
	case string:
		source = []byte(v)
	case map[string]any:
		*d = Data(v)
		return nil
	default:
		return fmt.Errorf("unsupported type for Data: %T", src)
	}

	if len(source) == 0 {
		*d = nil
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(source))
	decoder.UseNumber()

	var result map[string]any
	if err := decoder.Decode(&result); err != nil {
		return fmt.Errorf("failed to decode Data: %w", err)
	}

	*d = result
	return nil
}

// Value implements driver.Valuer for writing to PostgreSQL JSONB.
// A nil bag is stored as an empty object, never as NULL.
func (d Data) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

// GetString returns the value as a string, or "" when absent.
// Numbers and booleans are rendered with their JSON spelling.
func (d Data) GetString(key string) string {
	if d == nil {
		return ""
	}
	switch v := d[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Keys returns the keys in lexicographic order.
func (d Data) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone creates a shallow copy.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	result := make(Data, len(d))
	for k, v := range d {
		result[k] = v
	}
	return result
}
