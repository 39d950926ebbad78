package metadata

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Structural field identifiers that every dataset carries.
const (
	FieldEntity        = "entity"
	FieldName          = "name"
	FieldPrefix        = "prefix"
	FieldReference     = "reference"
	FieldEntryDate     = "entry-date"
	FieldStartDate     = "start-date"
	FieldEndDate       = "end-date"
	FieldDescription   = "description"
	FieldNotes         = "notes"
	FieldOrganisation  = "organisation"
	FieldOrganisations = "organisations"
)

// Field describes one attribute a record in a dataset may carry.
type Field struct {
	Field             string      `json:"field" yaml:"field" db:"field"`
	Name              string      `json:"name,omitempty" yaml:"name" db:"name"`
	Datatype          Datatype    `json:"datatype" yaml:"datatype" db:"datatype"`
	Cardinality       Cardinality `json:"cardinality" yaml:"cardinality" db:"cardinality"`
	CategoryReference string      `json:"category_reference,omitempty" yaml:"category-reference" db:"category_reference"`
	ParentField       string      `json:"parent_field,omitempty" yaml:"parent-field" db:"parent_field"`
	Description       string      `json:"description,omitempty" yaml:"description" db:"description"`
}

// IsCategory reports whether values come from a controlled vocabulary.
func (f Field) IsCategory() bool {
	return f.CategoryReference != ""
}

// IsMany reports whether the field accepts several values.
func (f Field) IsMany() bool {
	return f.Cardinality == CardinalityMany
}

// IsDatetime reports whether the field is a partial date.
func (f Field) IsDatetime() bool {
	return f.Datatype == DatatypeDatetime
}

// Label is the display name, derived from the identifier when none is set.
func (f Field) Label() string {
	if f.Name != "" {
		return f.Name
	}
	return humanize(f.Field)
}

var titleCaser = cases.Title(language.English)

func humanize(identifier string) string {
	return titleCaser.String(strings.ReplaceAll(identifier, "-", " "))
}
