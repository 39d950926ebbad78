// Package record binds validated submissions to records, checks references
// between datasets and orchestrates record creation and updates.
package record

import (
	"slices"
	"strconv"

	"datasets/internal/core/entity"
	"datasets/internal/metadata"
)

// Key identifies a record: entity ids are unique within a dataset.
type Key struct {
	Entity  int64  `json:"entity"`
	Dataset string `json:"dataset"`
}

func (k Key) String() string {
	return k.Dataset + "/" + strconv.FormatInt(k.Entity, 10)
}

// Record is one row of a dataset.
//
// The parent link is an explicit (entity, dataset) pair. Children are found
// through the repository's parent index, never through back-pointers.
type Record struct {
	entity.Dates

	Entity        int64       `db:"entity" json:"entity"`
	Dataset       string      `db:"dataset" json:"dataset"`
	Reference     string      `db:"reference" json:"reference"`
	Name          string      `db:"name" json:"name"`
	Description   *string     `db:"description" json:"description,omitempty"`
	Notes         *string     `db:"notes" json:"notes,omitempty"`
	Data          entity.Data `db:"data" json:"data"`
	Organisation  *string     `db:"organisation" json:"organisation,omitempty"`
	Organisations []string    `db:"organisations" json:"organisations,omitempty"`
	OwningEntity  *int64      `db:"owning_entity" json:"owning_entity,omitempty"`
	OwningDataset *string     `db:"owning_dataset" json:"owning_dataset,omitempty"`
}

// Key returns the record's identity.
func (r *Record) Key() Key {
	return Key{Entity: r.Entity, Dataset: r.Dataset}
}

// Parent returns the owning record's key, if any.
func (r *Record) Parent() (Key, bool) {
	if r.OwningEntity == nil || r.OwningDataset == nil {
		return Key{}, false
	}
	return Key{Entity: *r.OwningEntity, Dataset: *r.OwningDataset}, true
}

// SetParent links r under parent.
func (r *Record) SetParent(parent Key) {
	e, d := parent.Entity, parent.Dataset
	r.OwningEntity = &e
	r.OwningDataset = &d
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	c := *r
	c.Data = r.Data.Clone()
	c.Organisations = slices.Clone(r.Organisations)
	c.Description = clonePtr(r.Description)
	c.Notes = clonePtr(r.Notes)
	c.Organisation = clonePtr(r.Organisation)
	c.OwningEntity = clonePtr(r.OwningEntity)
	c.OwningDataset = clonePtr(r.OwningDataset)
	c.StartDate = clonePtr(r.StartDate)
	c.EndDate = clonePtr(r.EndDate)
	return &c
}

const dateLayout = "2006-01-02"

// Attribute returns a structured (non data bag) value by field identifier.
// Unset optional attributes report ok with a nil value.
func (r *Record) Attribute(field string) (any, bool) {
	switch field {
	case metadata.FieldEntity:
		return r.Entity, true
	case metadata.FieldReference:
		return r.Reference, true
	case metadata.FieldName:
		return r.Name, true
	case metadata.FieldDescription:
		return deref(r.Description), true
	case metadata.FieldNotes:
		return deref(r.Notes), true
	case metadata.FieldEntryDate:
		if r.EntryDate.IsZero() {
			return nil, true
		}
		return r.EntryDate.Format(dateLayout), true
	case metadata.FieldStartDate:
		if r.StartDate == nil {
			return nil, true
		}
		return r.StartDate.Format(dateLayout), true
	case metadata.FieldEndDate:
		if r.EndDate == nil {
			return nil, true
		}
		return r.EndDate.Format(dateLayout), true
	case metadata.FieldOrganisation:
		return deref(r.Organisation), true
	case metadata.FieldOrganisations:
		if len(r.Organisations) == 0 {
			return nil, true
		}
		return slices.Clone(r.Organisations), true
	}
	return nil, false
}

// Value returns the structured attribute for field, else the data bag entry.
func (r *Record) Value(field string) any {
	if v, ok := r.Attribute(field); ok {
		return v
	}
	return r.Data[field]
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// deref returns the pointed-to string, or nil for a nil or empty pointer.
func deref(p *string) any {
	if p == nil || *p == "" {
		return nil
	}
	return *p
}
