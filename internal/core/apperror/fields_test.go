package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFieldErrors_Code(t *testing.T) {
	tests := []struct {
		name   string
		errs   FieldErrors
		code   string
		status int
	}{
		{
			name:   "schema only",
			errs:   FieldErrors{{Field: "colour", Kind: KindSchema, Message: "not a field"}},
			code:   CodeSchemaViolation,
			status: http.StatusBadRequest,
		},
		{
			name:   "reference only",
			errs:   FieldErrors{{Field: "conservation-area", Kind: KindReference, Message: "missing"}},
			code:   CodeCrossDatasetReference,
			status: http.StatusUnprocessableEntity,
		},
		{
			name: "mixed",
			errs: FieldErrors{
				{Field: "conservation-area", Kind: KindReference, Message: "missing"},
				{Field: "documentation-url", Kind: KindField, Message: "Invalid URL."},
			},
			code:   CodeValidation,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewFieldErrors(tt.errs)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.status, err.HTTPStatus)
		})
	}
}

func TestAsFieldErrors_ThroughWrapping(t *testing.T) {
	errs := FieldErrors{
		{Field: "start-date", Part: "month", Kind: KindField, Message: "Month must be between 1 and 12"},
		{Field: "name", Kind: KindField, Message: "This field is required."},
	}
	wrapped := fmt.Errorf("create record: %w", NewFieldErrors(errs))

	got, ok := AsFieldErrors(wrapped)
	require.True(t, ok)
	assert.Len(t, got, 2)
	assert.Equal(t, "month", got.For("start-date")[0].Part)
	assert.Empty(t, got.For("notes"))

	_, ok = AsFieldErrors(errors.New("plain"))
	assert.False(t, ok)
}

func TestAllocationRangeExceeded(t *testing.T) {
	err := NewAllocationRangeExceeded("tree-preservation-order", 201, 200)
	assert.True(t, HasCode(err, CodeAllocationRangeExceeded))
	assert.Equal(t, "No more entity IDs available for tree-preservation-order", err.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus(err))
}
