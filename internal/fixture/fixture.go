// Package fixture loads dataset definitions, reference data and seed records
// from YAML files into either store.
package fixture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"datasets/internal/core/entity"
	"datasets/internal/core/tx"
	"datasets/internal/domain/record"
	"datasets/internal/domain/reference"
	"datasets/internal/domain/schema"
	"datasets/internal/metadata"
	"datasets/pkg/logger"
)

// Fixture is the content of one fixture file.
type Fixture struct {
	// Datasets are written before anything else.
	Datasets []metadata.Dataset `yaml:"datasets"`

	// Categories hold controlled vocabularies with their values.
	Categories []Category `yaml:"categories,omitempty"`

	Organisations []reference.Organisation `yaml:"organisations,omitempty"`

	// Records are created in order through the record service, so later
	// records may reference or be children of earlier ones.
	Records []Record `yaml:"records,omitempty"`
}

// Category is a category together with its values.
type Category struct {
	reference.Category `yaml:",inline"`
	Values             []reference.CategoryValue `yaml:"values"`
}

// Record is a seed record submitted as flat form input.
type Record struct {
	Dataset string       `yaml:"dataset"`
	Parent  *ParentRef   `yaml:"parent,omitempty"`
	Values  schema.Input `yaml:"values"`
}

// ParentRef names the owning record by dataset and reference.
type ParentRef struct {
	Dataset   string `yaml:"dataset"`
	Reference string `yaml:"reference"`
}

// LoadFile reads and validates a fixture file.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Load(bytes.NewReader(data))
}

// Load decodes and validates a fixture. Unknown keys are rejected.
func Load(r io.Reader) (*Fixture, error) {
	var f Fixture
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	f.normalize()
	if err := validate(&f); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &f, nil
}

// normalize fills defaults the YAML may omit.
func (f *Fixture) normalize() {
	for i := range f.Datasets {
		for j := range f.Datasets[i].Fields {
			fd := &f.Datasets[i].Fields[j]
			if fd.Datatype == "" {
				fd.Datatype = metadata.DatatypeString
			}
			if fd.Cardinality == "" {
				fd.Cardinality = metadata.CardinalityOne
			}
		}
	}
	for i := range f.Categories {
		c := &f.Categories[i]
		for j := range c.Values {
			v := &c.Values[j]
			v.CategoryReference = c.Reference
			if v.Prefix == "" {
				v.Prefix = c.Reference
			}
		}
	}
}

func validate(f *Fixture) error {
	seen := make(map[string]bool, len(f.Datasets))
	for i, ds := range f.Datasets {
		if ds.Dataset == "" {
			return fmt.Errorf("datasets[%d]: dataset is required", i)
		}
		if seen[ds.Dataset] {
			return fmt.Errorf("datasets[%d]: duplicate dataset %q", i, ds.Dataset)
		}
		seen[ds.Dataset] = true

		if ds.EntityMaximum != 0 && ds.EntityMaximum < ds.EntityMinimum {
			return fmt.Errorf("datasets[%d]: entity-maximum %d is below entity-minimum %d", i, ds.EntityMaximum, ds.EntityMinimum)
		}
		fields := make(map[string]bool, len(ds.Fields))
		for j, fd := range ds.Fields {
			if fd.Field == "" {
				return fmt.Errorf("datasets[%d].fields[%d]: field is required", i, j)
			}
			if fields[fd.Field] {
				return fmt.Errorf("datasets[%d].fields[%d]: duplicate field %q", i, j, fd.Field)
			}
			fields[fd.Field] = true
			if fd.Cardinality != metadata.CardinalityOne && fd.Cardinality != metadata.CardinalityMany {
				return fmt.Errorf("datasets[%d].fields[%d]: unknown cardinality %q", i, j, fd.Cardinality)
			}
		}
	}

	for i, c := range f.Categories {
		if c.Reference == "" {
			return fmt.Errorf("categories[%d]: reference is required", i)
		}
	}
	for i, o := range f.Organisations {
		if o.Organisation == "" || o.Name == "" {
			return fmt.Errorf("organisations[%d]: organisation and name are required", i)
		}
	}
	for i, r := range f.Records {
		if r.Dataset == "" {
			return fmt.Errorf("records[%d]: dataset is required", i)
		}
		if r.Parent != nil && (r.Parent.Dataset == "" || r.Parent.Reference == "") {
			return fmt.Errorf("records[%d].parent: dataset and reference are required", i)
		}
	}
	return nil
}

// Targets are the stores a fixture is applied to. Records may be nil when
// the fixture carries no seed records.
type Targets struct {
	TxManager  tx.Manager
	Datasets   metadata.Writer
	References reference.Writer
	Records    *record.Service
}

// Summary counts what Apply wrote.
type Summary struct {
	Datasets       int `json:"datasets"`
	Categories     int `json:"categories"`
	CategoryValues int `json:"category_values"`
	Organisations  int `json:"organisations"`
	Records        int `json:"records"`
}

// Apply writes f to t in one transaction.
func Apply(ctx context.Context, f *Fixture, t Targets) (Summary, error) {
	var sum Summary
	now := time.Now()

	err := t.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, ds := range f.Datasets {
			if err := t.Datasets.SaveDataset(ctx, ds); err != nil {
				return fmt.Errorf("dataset %s: %w", ds.Dataset, err)
			}
			sum.Datasets++
		}

		for _, c := range f.Categories {
			stamp(&c.Dates, now)
			if err := t.References.SaveCategory(ctx, c.Category); err != nil {
				return fmt.Errorf("category %s: %w", c.Reference, err)
			}
			sum.Categories++
			for _, v := range c.Values {
				stamp(&v.Dates, now)
				if err := t.References.SaveCategoryValue(ctx, v); err != nil {
					return fmt.Errorf("category value %s/%s: %w", c.Reference, v.Reference, err)
				}
				sum.CategoryValues++
			}
		}

		for _, o := range f.Organisations {
			stamp(&o.Dates, now)
			if err := t.References.SaveOrganisation(ctx, o); err != nil {
				return fmt.Errorf("organisation %s: %w", o.Organisation, err)
			}
			sum.Organisations++
		}

		if len(f.Records) > 0 && t.Records == nil {
			return fmt.Errorf("fixture has %d records but no record service", len(f.Records))
		}
		for i, r := range f.Records {
			created, err := applyRecord(ctx, t.Records, r)
			if err != nil {
				return fmt.Errorf("records[%d] (%s): %w", i, r.Dataset, err)
			}
			logger.Debug(ctx, "seed record created", "dataset", created.Dataset, "reference", created.Reference)
			sum.Records++
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	logger.Info(ctx, "fixture applied",
		"datasets", sum.Datasets,
		"categories", sum.Categories,
		"organisations", sum.Organisations,
		"records", sum.Records,
	)
	return sum, nil
}

func applyRecord(ctx context.Context, svc *record.Service, r Record) (*record.Record, error) {
	if r.Parent == nil {
		return svc.Create(ctx, r.Dataset, r.Values)
	}
	parent, err := svc.FindByReference(ctx, r.Parent.Dataset, r.Parent.Reference)
	if err != nil {
		return nil, fmt.Errorf("parent %s/%s: %w", r.Parent.Dataset, r.Parent.Reference, err)
	}
	return svc.AddChild(ctx, parent.Key(), r.Dataset, r.Values)
}

func stamp(d *entity.Dates, now time.Time) {
	if d.EntryDate.IsZero() {
		d.EntryDate = entity.NewDates(now).EntryDate
	}
}

// Count reports what Apply would write for f.
func Count(f *Fixture) Summary {
	sum := Summary{
		Datasets:      len(f.Datasets),
		Categories:    len(f.Categories),
		Organisations: len(f.Organisations),
		Records:       len(f.Records),
	}
	for _, c := range f.Categories {
		sum.CategoryValues += len(c.Values)
	}
	return sum
}
