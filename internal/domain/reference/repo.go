package reference

import "context"

// Repository defines read access to reference data.
type Repository interface {
	// CategoryValues returns the values of one category in insertion order.
	CategoryValues(ctx context.Context, categoryReference string) ([]CategoryValue, error)

	// CategoryValue returns the value with the given reference within a
	// category. Missing values yield a NOT_FOUND AppError.
	CategoryValue(ctx context.Context, categoryReference, reference string) (CategoryValue, error)

	// Organisations returns every organisation ordered by name.
	Organisations(ctx context.Context) ([]Organisation, error)

	// Organisation returns one organisation. Missing organisations yield a
	// NOT_FOUND AppError.
	Organisation(ctx context.Context, organisation string) (Organisation, error)
}

// Writer stores reference data. Used by fixture loading.
type Writer interface {
	SaveCategory(ctx context.Context, c Category) error
	SaveCategoryValue(ctx context.Context, v CategoryValue) error
	SaveOrganisation(ctx context.Context, o Organisation) error
}
