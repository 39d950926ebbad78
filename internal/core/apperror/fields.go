package apperror

import (
	"net/http"
	"strings"
)

// FieldErrorKind tells a caller why a field was rejected.
type FieldErrorKind string

const (
	// KindField is a datatype-specific violation (malformed URL, geometry, date part).
	KindField FieldErrorKind = "field"
	// KindSchema is a key that is not part of the dataset.
	KindSchema FieldErrorKind = "schema"
	// KindReference is a syntactically valid value naming a record that does not exist.
	KindReference FieldErrorKind = "reference"
)

// FieldError is a single field-scoped violation.
// Part is set for multi-part inputs (year, month, day).
type FieldError struct {
	Field   string         `json:"field"`
	Part    string         `json:"part,omitempty"`
	Kind    FieldErrorKind `json:"kind"`
	Message string         `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// FieldErrors collects every violation of one submission.
type FieldErrors []FieldError

func (errs FieldErrors) Error() string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// For returns the errors reported against one field.
func (errs FieldErrors) For(field string) FieldErrors {
	var out FieldErrors
	for _, e := range errs {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

// kinds returns the distinct kinds present.
func (errs FieldErrors) kinds() map[FieldErrorKind]bool {
	seen := make(map[FieldErrorKind]bool, 3)
	for _, e := range errs {
		seen[e.Kind] = true
	}
	return seen
}

// NewFieldErrors wraps a list of field violations.
// A list made only of unknown keys is a schema violation and a list made only
// of missing references is a cross-dataset reference error; anything else is
// reported as a plain validation failure.
func NewFieldErrors(errs FieldErrors) *AppError {
	appErr := &AppError{
		Code:       CodeValidation,
		Message:    "Submission is invalid",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"fields": errs},
		Err:        errs,
	}

	kinds := errs.kinds()
	if len(kinds) == 1 {
		switch {
		case kinds[KindSchema]:
			appErr.Code = CodeSchemaViolation
			appErr.Message = "Submission contains fields that are not part of the dataset"
		case kinds[KindReference]:
			appErr.Code = CodeCrossDatasetReference
			appErr.Message = "Submission references records that do not exist"
			appErr.HTTPStatus = http.StatusUnprocessableEntity
		}
	}
	return appErr
}

// AsFieldErrors extracts the field violations carried by err, if any.
func AsFieldErrors(err error) (FieldErrors, bool) {
	appErr, ok := AsAppError(err)
	if !ok {
		return nil, false
	}
	errs, ok := appErr.Err.(FieldErrors)
	return errs, ok
}
