package schema

import (
	"sort"
	"strings"

	"datasets/internal/core/apperror"
	"datasets/internal/core/datepart"
	"datasets/internal/metadata"
)

// Input is a flat submission: field identifier to raw value. Date parts
// arrive as "<field>_year", "<field>_month" and "<field>_day", or as one
// date string under "<field>".
type Input map[string]string

// Date part key suffixes.
const (
	SuffixYear  = "_" + datepart.PartYear
	SuffixMonth = "_" + datepart.PartMonth
	SuffixDay   = "_" + datepart.PartDay
)

// Submission is validated input split into record attributes (name,
// description, notes and organisation links) and the data bag.
type Submission struct {
	Name          string
	Description   string
	Notes         string
	Organisation  string
	Organisations []string

	// Data holds every other supplied field. Values are strings, or
	// datepart.Parts for date-parts fields.
	Data map[string]any
}

// Validate checks in against the schema and collects every violation.
// On failure the error is an AppError carrying apperror.FieldErrors.
func (s *Schema) Validate(in Input) (Submission, error) {
	sub := Submission{Data: make(map[string]any)}
	var errs apperror.FieldErrors

	for _, f := range s.Fields {
		if f.Widget == WidgetDateParts {
			parts, perr := s.dateParts(f, in)
			if perr == nil {
				perr = datepart.Validate(parts)
			}
			if perr != nil {
				errs = append(errs, apperror.FieldError{
					Field:   f.Field,
					Part:    perr.Part,
					Kind:    apperror.KindField,
					Message: perr.Message,
				})
				continue
			}
			if !parts.IsEmpty() {
				sub.Data[f.Field] = parts
			}
			continue
		}

		value := s.value(f, in)
		if msg := checkField(f, value); msg != "" {
			errs = append(errs, apperror.FieldError{Field: f.Field, Kind: apperror.KindField, Message: msg})
			continue
		}
		assign(&sub, f, value)
	}

	errs = append(errs, s.unknownKeys(in)...)
	if len(errs) > 0 {
		return Submission{}, apperror.NewFieldErrors(errs)
	}
	return sub, nil
}

// value returns the submitted value of f, or its forced default when inactive.
func (s *Schema) value(f Field, in Input) string {
	if f.Inactive {
		v, _ := f.Default.(string)
		return v
	}
	v := in[f.Field]
	if f.Widget != WidgetTextArea {
		v = strings.TrimSpace(v)
	}
	return v
}

// dateParts reads the parts of f, falling back to a whole date string
// under the field's own key.
func (s *Schema) dateParts(f Field, in Input) (datepart.Parts, *datepart.PartError) {
	if f.Inactive {
		p, _ := f.Default.(datepart.Parts)
		return p, nil
	}
	parts := datepart.Parts{
		Year:  in[f.Field+SuffixYear],
		Month: in[f.Field+SuffixMonth],
		Day:   in[f.Field+SuffixDay],
	}.Trim()
	if parts.IsEmpty() {
		if whole := strings.TrimSpace(in[f.Field]); whole != "" {
			return datepart.Parse(whole)
		}
	}
	return parts, nil
}

// checkField returns the violation message for value, or "".
func checkField(f Field, value string) string {
	if strings.TrimSpace(value) == "" {
		if f.Required {
			return MsgRequired
		}
		return ""
	}

	switch {
	case f.CategoryReference != "" && f.IsMulti():
		for _, v := range splitMulti(value) {
			if !f.validChoice(v) {
				return "'" + v + "' is not a valid choice."
			}
		}
		return ""
	case f.CategoryReference != "":
		if !f.validChoice(value) {
			return MsgInvalidChoice
		}
		return ""
	case f.Field == metadata.FieldOrganisation || f.Field == metadata.FieldOrganisations:
		// Organisation links are advisory and resolved when binding.
		return ""
	}

	return checkDatatype(f.Datatype, value)
}

func assign(sub *Submission, f Field, value string) {
	switch f.Field {
	case metadata.FieldName:
		sub.Name = value
		return
	case metadata.FieldDescription:
		sub.Description = value
		return
	case metadata.FieldNotes:
		sub.Notes = value
		return
	case metadata.FieldOrganisation:
		sub.Organisation = value
		return
	case metadata.FieldOrganisations:
		sub.Organisations = splitMulti(value)
		return
	}

	if value == "" {
		return
	}
	if f.IsMulti() {
		value = strings.Join(splitMulti(value), metadata.MultiValueSeparator)
	}
	sub.Data[f.Field] = value
}

// unknownKeys reports submitted keys that are not fields of the dataset.
// Dataset fields left out of the schema are ignored.
func (s *Schema) unknownKeys(in Input) apperror.FieldErrors {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs apperror.FieldErrors
	for _, k := range keys {
		if s.IsDatasetField(k) || s.isDatePartKey(k) {
			continue
		}
		errs = append(errs, apperror.FieldError{
			Field:   k,
			Kind:    apperror.KindSchema,
			Message: "Field '" + k + "' in data is not a valid field for this dataset",
		})
	}
	return errs
}

func (s *Schema) isDatePartKey(key string) bool {
	for _, suffix := range []string{SuffixYear, SuffixMonth, SuffixDay} {
		if base, ok := strings.CutSuffix(key, suffix); ok {
			if f, found := s.Field(base); found && f.Widget == WidgetDateParts {
				return true
			}
		}
	}
	return false
}

// splitMulti splits a semicolon-joined value, dropping blanks.
func splitMulti(value string) []string {
	var out []string
	for _, v := range strings.Split(value, metadata.MultiValueSeparator) {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
