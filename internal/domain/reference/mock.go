package reference

import (
	"context"

	"datasets/internal/core/apperror"
)

// MockRepository is a test implementation of Repository.
// Unset functions behave like an empty store.
type MockRepository struct {
	CategoryValuesFunc func(ctx context.Context, categoryReference string) ([]CategoryValue, error)
	CategoryValueFunc  func(ctx context.Context, categoryReference, reference string) (CategoryValue, error)
	OrganisationsFunc  func(ctx context.Context) ([]Organisation, error)
	OrganisationFunc   func(ctx context.Context, organisation string) (Organisation, error)
}

// CategoryValues implements Repository.
func (m *MockRepository) CategoryValues(ctx context.Context, categoryReference string) ([]CategoryValue, error) {
	if m.CategoryValuesFunc != nil {
		return m.CategoryValuesFunc(ctx, categoryReference)
	}
	return nil, nil
}

// CategoryValue implements Repository.
func (m *MockRepository) CategoryValue(ctx context.Context, categoryReference, reference string) (CategoryValue, error) {
	if m.CategoryValueFunc != nil {
		return m.CategoryValueFunc(ctx, categoryReference, reference)
	}
	return CategoryValue{}, apperror.NewNotFound("category_value", reference)
}

// Organisations implements Repository.
func (m *MockRepository) Organisations(ctx context.Context) ([]Organisation, error) {
	if m.OrganisationsFunc != nil {
		return m.OrganisationsFunc(ctx)
	}
	return nil, nil
}

// Organisation implements Repository.
func (m *MockRepository) Organisation(ctx context.Context, organisation string) (Organisation, error) {
	if m.OrganisationFunc != nil {
		return m.OrganisationFunc(ctx, organisation)
	}
	return Organisation{}, apperror.NewNotFound("organisation", organisation)
}

// Ensure compile-time interface compliance.
var _ Repository = (*MockRepository)(nil)
