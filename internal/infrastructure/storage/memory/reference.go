package memory

import (
	"context"
	"slices"
	"strings"

	"datasets/internal/core/apperror"
	"datasets/internal/domain/audit"
	"datasets/internal/domain/reference"
)

// ReferenceRepo implements reference.Repository and reference.Writer.
type ReferenceRepo struct {
	s *Store
}

func (r *ReferenceRepo) SaveCategory(ctx context.Context, c reference.Category) error {
	return r.s.write(ctx, func() error {
		r.s.categories[c.Reference] = c
		return nil
	})
}

// SaveCategoryValue adds v, or replaces the value with the same
// (prefix, reference) in place so insertion order is kept.
func (r *ReferenceRepo) SaveCategoryValue(ctx context.Context, v reference.CategoryValue) error {
	v = v.WithDefaultPrefix()
	return r.s.write(ctx, func() error {
		values := r.s.categoryValues[v.CategoryReference]
		idx := slices.IndexFunc(values, v.SameValue)
		if idx >= 0 {
			values[idx] = v
		} else {
			values = append(values, v)
		}
		r.s.categoryValues[v.CategoryReference] = values
		return nil
	})
}

func (r *ReferenceRepo) SaveOrganisation(ctx context.Context, o reference.Organisation) error {
	return r.s.write(ctx, func() error {
		r.s.organisations[o.Organisation] = o
		return nil
	})
}

func (r *ReferenceRepo) CategoryValues(ctx context.Context, categoryReference string) ([]reference.CategoryValue, error) {
	var out []reference.CategoryValue
	r.s.read(ctx, func() {
		out = slices.Clone(r.s.categoryValues[categoryReference])
	})
	return out, nil
}

func (r *ReferenceRepo) CategoryValue(ctx context.Context, categoryReference, ref string) (reference.CategoryValue, error) {
	var (
		found reference.CategoryValue
		ok    bool
	)
	r.s.read(ctx, func() {
		for _, cv := range r.s.categoryValues[categoryReference] {
			if cv.Reference == ref {
				found, ok = cv, true
				return
			}
		}
	})
	if !ok {
		return reference.CategoryValue{}, apperror.NewNotFound("category_value", categoryReference+"/"+ref)
	}
	return found, nil
}

func (r *ReferenceRepo) Organisations(ctx context.Context) ([]reference.Organisation, error) {
	var out []reference.Organisation
	r.s.read(ctx, func() {
		out = make([]reference.Organisation, 0, len(r.s.organisations))
		for _, o := range r.s.organisations {
			out = append(out, o)
		}
	})
	slices.SortFunc(out, func(a, b reference.Organisation) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Organisation, b.Organisation)
	})
	return out, nil
}

func (r *ReferenceRepo) Organisation(ctx context.Context, organisation string) (reference.Organisation, error) {
	var (
		found reference.Organisation
		ok    bool
	)
	r.s.read(ctx, func() {
		found, ok = r.s.organisations[organisation]
	})
	if !ok {
		return reference.Organisation{}, apperror.NewNotFound("organisation", organisation)
	}
	return found, nil
}

// HistoryLog implements audit.Logger.
type HistoryLog struct {
	s *Store
}

func (h *HistoryLog) Log(ctx context.Context, entry audit.Entry) error {
	return h.s.write(ctx, func() error {
		h.s.history = append(h.s.history, entry)
		return nil
	})
}

func (h *HistoryLog) History(ctx context.Context, dataset string, entity int64, limit int) ([]audit.Entry, error) {
	var out []audit.Entry
	h.s.read(ctx, func() {
		for i := len(h.s.history) - 1; i >= 0; i-- {
			e := h.s.history[i]
			if e.Dataset != dataset || e.Entity != entity {
				continue
			}
			out = append(out, e)
			if limit > 0 && len(out) == limit {
				return
			}
		}
	})
	return out, nil
}

var (
	_ reference.Repository = (*ReferenceRepo)(nil)
	_ reference.Writer     = (*ReferenceRepo)(nil)
	_ audit.Logger         = (*HistoryLog)(nil)
)
