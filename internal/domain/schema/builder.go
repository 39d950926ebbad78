package schema

import (
	"context"
	"strings"

	"datasets/internal/core/datepart"
	"datasets/internal/domain/reference"
	"datasets/internal/metadata"
)

// alwaysExcluded are structural fields that are never entered by hand.
var alwaysExcluded = []string{
	metadata.FieldEntity,
	metadata.FieldPrefix,
	metadata.FieldEntryDate,
	metadata.FieldStartDate,
	metadata.FieldEndDate,
	metadata.FieldReference,
}

// Options tune a schema build.
type Options struct {
	// Exclude lists extra fields to leave out of the input.
	Exclude []string

	// ParentDataset and ParentReference render the schema as "add a child
	// under this parent": the field named after ParentDataset is forced to
	// ParentReference and made inactive.
	ParentDataset   string
	ParentReference string

	// Defaults are the current values of an existing record or inherited
	// values for a new one, keyed by field identifier. Values are strings,
	// string slices (organisations) or stored date strings.
	Defaults map[string]any

	// Inactive lists fields shown with their default but closed to edits.
	Inactive []string
}

// Builder synthesizes schemas, reading choice lists from reference data.
type Builder struct {
	refs reference.Repository
}

// NewBuilder creates a schema builder.
func NewBuilder(refs reference.Repository) *Builder {
	return &Builder{refs: refs}
}

// Build produces the input schema for ds.
func (b *Builder) Build(ctx context.Context, ds metadata.Dataset, opts Options) (*Schema, error) {
	skip := toSet(alwaysExcluded)
	for _, f := range opts.Exclude {
		skip[f] = struct{}{}
	}
	inactive := toSet(opts.Inactive)

	s := &Schema{
		Dataset:       ds.Dataset,
		datasetFields: make(map[string]struct{}, len(ds.Fields)),
		index:         make(map[string]int, len(ds.Fields)),
	}
	for _, f := range ds.Fields {
		s.datasetFields[f.Field] = struct{}{}
	}

	// Organisation choices are shared by organisation and organisations.
	var orgChoices []reference.Choice

	for _, mf := range metadata.Sorted(ds.Fields) {
		if _, ok := skip[mf.Field]; ok {
			continue
		}

		f := Field{
			Field:             mf.Field,
			Label:             mf.Label(),
			Datatype:          mf.Datatype,
			Cardinality:       mf.Cardinality,
			CategoryReference: mf.CategoryReference,
		}

		switch {
		case mf.IsCategory():
			choices, err := reference.CategoryChoices(ctx, b.refs, mf.CategoryReference)
			if err != nil {
				return nil, err
			}
			setChoices(&f, mf.IsMany(), choices)
			f.choiceSet = choiceSet(choices)

		case mf.Field == metadata.FieldOrganisation || mf.Field == metadata.FieldOrganisations:
			if orgChoices == nil {
				choices, err := reference.OrganisationChoices(ctx, b.refs)
				if err != nil {
					return nil, err
				}
				orgChoices = choices
			}
			setChoices(&f, mf.IsMany(), orgChoices)
			if f.IsMulti() {
				f.Hint = "Start typing " + strings.ToLower(f.Label) + " to see suggestions"
			}

		case mf.Field == metadata.FieldName:
			f.Widget = WidgetInput
			f.Required = true

		default:
			f.Widget = widgetFor(mf.Datatype)
		}

		f.Default = defaultFor(f, opts.Defaults[mf.Field])
		if opts.ParentDataset != "" && opts.ParentReference != "" && mf.Field == opts.ParentDataset {
			f.Default = opts.ParentReference
			f.Inactive = true
		}
		if _, ok := inactive[mf.Field]; ok {
			f.Inactive = true
		}

		s.index[f.Field] = len(s.Fields)
		s.Fields = append(s.Fields, f)
	}

	return s, nil
}

// widgetFor dispatches on datatype. Unknown datatypes are free text.
func widgetFor(dt metadata.Datatype) Widget {
	switch dt {
	case metadata.DatatypeText, metadata.DatatypeMultiPolygon:
		return WidgetTextArea
	case metadata.DatatypeURL:
		return WidgetURL
	case metadata.DatatypeDatetime:
		return WidgetDateParts
	default:
		return WidgetInput
	}
}

// setChoices picks a single selector with an empty "unset" entry, or a
// multi-select over the bare choices.
func setChoices(f *Field, many bool, choices []reference.Choice) {
	if many {
		f.Widget = WidgetMultiSelect
		f.Choices = choices
		return
	}
	f.Widget = WidgetSelect
	f.Choices = append([]reference.Choice{{}}, choices...)
}

func choiceSet(choices []reference.Choice) map[string]struct{} {
	set := make(map[string]struct{}, len(choices))
	for _, c := range choices {
		set[c.Value] = struct{}{}
	}
	return set
}

// defaultFor converts a stored value into the form the widget edits.
func defaultFor(f Field, v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []string:
		if len(val) == 0 {
			return nil
		}
		return strings.Join(val, metadata.MultiValueSeparator)
	case string:
		if val == "" {
			return nil
		}
		if f.Widget == WidgetDateParts {
			return datepart.Decompose(val)
		}
		return val
	case datepart.Parts:
		if val.IsEmpty() {
			return nil
		}
		return val
	default:
		return val
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
