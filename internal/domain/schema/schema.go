// Package schema turns a dataset's field list into an ordered input schema
// and validates raw submissions against it.
//
// A Schema is built per request and never mutated afterwards, so concurrent
// builds and validations share no state.
package schema

import (
	"datasets/internal/domain/reference"
	"datasets/internal/metadata"
)

// Widget is the kind of input a field is rendered and parsed as.
type Widget string

const (
	WidgetSelect      Widget = "select"
	WidgetMultiSelect Widget = "multi-select"
	WidgetInput       Widget = "input"
	WidgetTextArea    Widget = "textarea"
	WidgetURL         Widget = "url"
	WidgetDateParts   Widget = "date-parts"
)

// Field is the synthesized input rule for one dataset field.
type Field struct {
	Field             string               `json:"field"`
	Label             string               `json:"label"`
	Datatype          metadata.Datatype    `json:"datatype,omitempty"`
	Cardinality       metadata.Cardinality `json:"cardinality,omitempty"`
	CategoryReference string               `json:"category_reference,omitempty"`
	Widget            Widget               `json:"widget"`
	Required          bool                 `json:"required,omitempty"`
	Inactive          bool                 `json:"inactive,omitempty"`
	Hint              string               `json:"hint,omitempty"`
	Choices           []reference.Choice   `json:"choices,omitempty"`
	// Default is a string, or datepart.Parts for date-parts widgets.
	Default any `json:"default,omitempty"`

	choiceSet map[string]struct{}
}

// IsMulti reports whether the field takes a semicolon-joined list.
func (f Field) IsMulti() bool {
	return f.Widget == WidgetMultiSelect
}

// validChoice reports whether v is offered by the field's selector.
// Fields without a choice set accept anything.
func (f Field) validChoice(v string) bool {
	if f.choiceSet == nil {
		return true
	}
	_, ok := f.choiceSet[v]
	return ok
}

// Schema is the ordered, immutable input schema of one dataset.
type Schema struct {
	Dataset string  `json:"dataset"`
	Fields  []Field `json:"fields"`

	// datasetFields holds every field of the dataset, including the ones
	// excluded from input.
	datasetFields map[string]struct{}
	index         map[string]int
}

// Field returns the input rule for identifier.
func (s *Schema) Field(identifier string) (Field, bool) {
	i, ok := s.index[identifier]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// Names returns the input field identifiers in display order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Field
	}
	return names
}

// IsDatasetField reports whether identifier is part of the dataset, whether
// or not it is open for input.
func (s *Schema) IsDatasetField(identifier string) bool {
	_, ok := s.datasetFields[identifier]
	return ok
}
