package record

import (
	"context"
	"fmt"
	"strings"
	"time"

	"datasets/internal/core/allocator"
	"datasets/internal/core/apperror"
	"datasets/internal/core/datepart"
	"datasets/internal/core/entity"
	"datasets/internal/domain/reference"
	"datasets/internal/domain/schema"
	"datasets/internal/metadata"
	"datasets/pkg/logger"
)

// Materializer binds validated submissions onto records.
type Materializer struct {
	orgs reference.Repository
	now  func() time.Time
}

// NewMaterializer creates a materializer resolving organisations through orgs.
func NewMaterializer(orgs reference.Repository) *Materializer {
	return &Materializer{orgs: orgs, now: time.Now}
}

// Create builds a new record of ds from sub under the allocated identity.
func (m *Materializer) Create(ctx context.Context, alloc allocator.Allocation, ds metadata.Dataset, sub schema.Submission) (*Record, error) {
	r := &Record{
		Dates:     entity.NewDates(m.now()),
		Entity:    alloc.Entity,
		Dataset:   ds.Dataset,
		Reference: alloc.Reference,
	}
	if err := m.bind(ctx, r, sub); err != nil {
		return nil, err
	}
	return r, nil
}

// Update returns a copy of existing rewritten from sub. The data bag is
// replaced, not merged.
func (m *Materializer) Update(ctx context.Context, existing *Record, sub schema.Submission) (*Record, error) {
	r := existing.Clone()
	if err := m.bind(ctx, r, sub); err != nil {
		return nil, err
	}
	r.Touch(m.now())
	return r, nil
}

// bind applies sub to r. Given the same submission it always produces the
// same record state, and organisation links are either resolved or unset.
func (m *Materializer) bind(ctx context.Context, r *Record, sub schema.Submission) error {
	org, err := m.resolveOrganisation(ctx, sub.Organisation)
	if err != nil {
		return err
	}
	orgs, err := m.resolveOrganisations(ctx, sub.Organisations)
	if err != nil {
		return err
	}

	r.Organisation = org
	r.Organisations = orgs
	r.Name = sub.Name
	r.Description = optional(sub.Description)
	r.Notes = optional(sub.Notes)
	r.Data = ComposeData(sub.Data)
	return nil
}

// ComposeData converts submitted data into the stored bag. Date parts
// are composed and dropped when nothing composes. A string under a key
// mentioning "date" is normalised only when it reads as a valid date;
// every other value is copied as is.
func ComposeData(in map[string]any) entity.Data {
	out := make(entity.Data, len(in))
	for key, value := range in {
		switch v := value.(type) {
		case datepart.Parts:
			if s, ok := datepart.Compose(v); ok {
				out[key] = s
			}
		case string:
			out[key] = v
			if !strings.Contains(key, "date") {
				continue
			}
			parts, perr := datepart.Parse(v)
			if perr != nil || parts.IsEmpty() || datepart.Validate(parts) != nil {
				continue
			}
			if s, ok := datepart.Compose(parts); ok {
				out[key] = s
			}
		default:
			out[key] = value
		}
	}
	return out
}

func (m *Materializer) resolveOrganisation(ctx context.Context, identifier string) (*string, error) {
	if identifier == "" {
		return nil, nil
	}
	org, err := m.orgs.Organisation(ctx, identifier)
	if err != nil {
		if apperror.IsNotFound(err) {
			logger.Debug(ctx, "organisation not found, leaving link unset", "organisation", identifier)
			return nil, nil
		}
		return nil, fmt.Errorf("resolve organisation %s: %w", identifier, err)
	}
	return &org.Organisation, nil
}

func (m *Materializer) resolveOrganisations(ctx context.Context, identifiers []string) ([]string, error) {
	var found []string
	for _, identifier := range identifiers {
		org, err := m.resolveOrganisation(ctx, identifier)
		if err != nil {
			return nil, err
		}
		if org != nil {
			found = append(found, *org)
		}
	}
	return found, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
