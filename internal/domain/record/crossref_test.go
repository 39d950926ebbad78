package record

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasets/internal/core/apperror"
)

func conservationAreas(refs ...string) *MockRepository {
	known := make(map[string]bool, len(refs))
	for _, r := range refs {
		known[r] = true
	}
	return &MockRepository{
		FindByReferenceFunc: func(_ context.Context, dataset, reference string) (*Record, error) {
			if dataset == "conservation-area" && known[reference] {
				return &Record{Dataset: dataset, Reference: reference}, nil
			}
			return nil, apperror.NewNotFound(dataset, reference)
		},
	}
}

func TestCrossRefValidator(t *testing.T) {
	v := NewCrossRefValidator(testRegistry(), conservationAreas("CA-1"))

	tests := []struct {
		name  string
		data  map[string]any
		code  string
		field string
	}{
		{
			name: "existing reference",
			data: map[string]any{"conservation-area": "CA-1"},
		},
		{
			name: "empty value is not a reference",
			data: map[string]any{"conservation-area": ""},
		},
		{
			name:  "missing reference",
			data:  map[string]any{"conservation-area": "CA-999"},
			code:  apperror.CodeCrossDatasetReference,
			field: "conservation-area",
		},
		{
			name:  "unknown key",
			data:  map[string]any{"colour": "green"},
			code:  apperror.CodeSchemaViolation,
			field: "colour",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tpoDataset(), tt.data)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, tt.code))

			errs, ok := apperror.AsFieldErrors(err)
			require.True(t, ok)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestCrossRefValidator_MissingReferenceMessage(t *testing.T) {
	v := NewCrossRefValidator(testRegistry(), conservationAreas())

	err := v.Validate(context.Background(), tpoDataset(), map[string]any{"conservation-area": "CA-999"})

	errs, ok := apperror.AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "Reference 'CA-999' not found in dataset 'conservation-area'", errs[0].Message)
	assert.Equal(t, apperror.KindReference, errs[0].Kind)
}

func TestCrossRefValidator_ReportsEveryKey(t *testing.T) {
	v := NewCrossRefValidator(testRegistry(), conservationAreas())

	err := v.Validate(context.Background(), tpoDataset(), map[string]any{
		"conservation-area": "CA-2",
		"colour":            "green",
	})

	errs, ok := apperror.AsFieldErrors(err)
	require.True(t, ok)
	assert.Len(t, errs, 2)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestCrossRefValidator_LookupFailure(t *testing.T) {
	records := &MockRepository{
		FindByReferenceFunc: func(context.Context, string, string) (*Record, error) {
			return nil, errors.New("pool closed")
		},
	}
	v := NewCrossRefValidator(testRegistry(), records)

	err := v.Validate(context.Background(), tpoDataset(), map[string]any{"conservation-area": "CA-1"})
	require.Error(t, err)
	_, ok := apperror.AsFieldErrors(err)
	assert.False(t, ok)
}
