package metadata

import "slices"

// Dataset is a named collection of records sharing one field list and one
// entity id range.
type Dataset struct {
	Dataset       string  `json:"dataset" yaml:"dataset" db:"dataset"`
	Name          string  `json:"name,omitempty" yaml:"name" db:"name"`
	Parent        string  `json:"parent,omitempty" yaml:"parent" db:"parent"`
	EntityMinimum int64   `json:"entity_minimum" yaml:"entity-minimum" db:"entity_minimum"`
	EntityMaximum int64   `json:"entity_maximum" yaml:"entity-maximum" db:"entity_maximum"`
	Fields        []Field `json:"fields" yaml:"fields" db:"-"`
}

// DisplayName returns Name, or a title derived from the identifier.
func (d Dataset) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return humanize(d.Dataset)
}

// HasParent reports whether records of d are created as children of another dataset.
func (d Dataset) HasParent() bool {
	return d.Parent != ""
}

// Field returns the descriptor for identifier.
func (d Dataset) Field(identifier string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Field == identifier {
			return f, true
		}
	}
	return Field{}, false
}

// HasField reports whether identifier is part of the field list.
func (d Dataset) HasField(identifier string) bool {
	_, ok := d.Field(identifier)
	return ok
}

// FieldNames returns the field identifiers in display order.
func (d Dataset) FieldNames() []string {
	fields := Sorted(d.Fields)
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Field
	}
	return names
}

// InRange reports whether entity lies inside [EntityMinimum, EntityMaximum].
// A zero maximum means the range is open-ended.
func (d Dataset) InRange(entity int64) bool {
	if entity < d.EntityMinimum {
		return false
	}
	return d.EntityMaximum == 0 || entity <= d.EntityMaximum
}

// Clone returns a copy that does not share the field slice.
func (d Dataset) Clone() Dataset {
	d.Fields = slices.Clone(d.Fields)
	return d
}
