package reference

import (
	"context"
	"fmt"
)

// CategoryChoices lists the values of a category as selector choices.
func CategoryChoices(ctx context.Context, repo Repository, categoryReference string) ([]Choice, error) {
	values, err := repo.CategoryValues(ctx, categoryReference)
	if err != nil {
		return nil, fmt.Errorf("category values %s: %w", categoryReference, err)
	}
	choices := make([]Choice, 0, len(values))
	for _, v := range values {
		choices = append(choices, Choice{Value: v.Reference, Label: v.Name})
	}
	return choices, nil
}

// OrganisationChoices lists every organisation as selector choices.
func OrganisationChoices(ctx context.Context, repo Repository) ([]Choice, error) {
	orgs, err := repo.Organisations(ctx)
	if err != nil {
		return nil, fmt.Errorf("organisations: %w", err)
	}
	choices := make([]Choice, 0, len(orgs))
	for _, o := range orgs {
		choices = append(choices, Choice{Value: o.Organisation, Label: o.Name})
	}
	return choices, nil
}
