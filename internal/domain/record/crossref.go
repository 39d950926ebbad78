package record

import (
	"context"
	"fmt"

	"datasets/internal/core/apperror"
	"datasets/internal/metadata"
)

// CrossRefValidator checks data bag keys against the dataset's field list
// and verifies values of fields named after another dataset.
type CrossRefValidator struct {
	datasets metadata.Provider
	records  Repository
}

// NewCrossRefValidator creates a cross-dataset reference validator.
func NewCrossRefValidator(datasets metadata.Provider, records Repository) *CrossRefValidator {
	return &CrossRefValidator{datasets: datasets, records: records}
}

// Validate checks data for ds. Every offending key is reported; the error is
// an AppError carrying apperror.FieldErrors. Each candidate reference costs
// one lookup in its target dataset. Empty values are not references.
func (v *CrossRefValidator) Validate(ctx context.Context, ds metadata.Dataset, data map[string]any) error {
	names, err := metadata.Names(ctx, v.datasets)
	if err != nil {
		return fmt.Errorf("list datasets: %w", err)
	}

	var errs apperror.FieldErrors
	for _, key := range sortedKeys(data) {
		if !ds.HasField(key) {
			errs = append(errs, apperror.FieldError{
				Field:   key,
				Kind:    apperror.KindSchema,
				Message: fmt.Sprintf("Field '%s' in data is not a valid field for this dataset", key),
			})
			continue
		}

		if _, isDataset := names[key]; !isDataset {
			continue
		}
		value, ok := data[key].(string)
		if !ok || value == "" {
			continue
		}

		_, err := v.records.FindByReference(ctx, key, value)
		switch {
		case err == nil:
		case apperror.IsNotFound(err):
			errs = append(errs, apperror.FieldError{
				Field:   key,
				Kind:    apperror.KindReference,
				Message: fmt.Sprintf("Reference '%s' not found in dataset '%s'", value, key),
			})
		default:
			return fmt.Errorf("check reference %s in %s: %w", value, key, err)
		}
	}

	if len(errs) > 0 {
		return apperror.NewFieldErrors(errs)
	}
	return nil
}
