package record

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"datasets/internal/core/allocator"
	appctx "datasets/internal/core/context"
	"datasets/internal/core/apperror"
	"datasets/internal/core/tx"
	"datasets/internal/domain"
	"datasets/internal/domain/audit"
	"datasets/internal/domain/reference"
	"datasets/internal/domain/schema"
	"datasets/internal/metadata"
	"datasets/pkg/logger"
)

var tracer = otel.Tracer("datasets/record")

// ServiceConfig configures the record service.
type ServiceConfig struct {
	Datasets   metadata.Provider
	Records    Repository
	References reference.Repository
	Allocator  allocator.Allocator
	TxManager  tx.Manager
	History    audit.Logger // Optional
}

// Service is the record engine entry point: it builds schemas, validates
// submissions and creates or updates records in one transaction each.
type Service struct {
	datasets     metadata.Provider
	records      Repository
	refs         reference.Repository
	alloc        allocator.Allocator
	txManager    tx.Manager
	history      audit.Logger
	builder      *schema.Builder
	materializer *Materializer
	crossref     *CrossRefValidator
}

// NewService creates a record service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		datasets:     cfg.Datasets,
		records:      cfg.Records,
		refs:         cfg.References,
		alloc:        cfg.Allocator,
		txManager:    cfg.TxManager,
		history:      cfg.History,
		builder:      schema.NewBuilder(cfg.References),
		materializer: NewMaterializer(cfg.References),
		crossref:     NewCrossRefValidator(cfg.Datasets, cfg.Records),
	}
}

// --- Schemas ---

// Schema returns the "add record" schema of a dataset. For a dataset
// without a parent, fields named after other datasets are left out: those
// links are made by adding children instead.
func (s *Service) Schema(ctx context.Context, dataset string) (*schema.Schema, error) {
	ds, err := s.datasets.Dataset(ctx, dataset)
	if err != nil {
		return nil, err
	}
	return s.addSchema(ctx, ds)
}

func (s *Service) addSchema(ctx context.Context, ds metadata.Dataset) (*schema.Schema, error) {
	var exclude []string
	if !ds.HasParent() {
		names, err := metadata.Names(ctx, s.datasets)
		if err != nil {
			return nil, fmt.Errorf("list datasets: %w", err)
		}
		for _, f := range ds.Fields {
			if _, ok := names[f.Field]; ok && f.Field != ds.Dataset {
				exclude = append(exclude, f.Field)
			}
		}
	}
	return s.builder.Build(ctx, ds, schema.Options{Exclude: exclude})
}

// EditSchema returns the schema of an existing record, filled with its
// current values. The field naming the owning record's dataset is inactive.
func (s *Service) EditSchema(ctx context.Context, key Key) (*schema.Schema, error) {
	ds, r, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.editSchema(ctx, ds, r)
}

func (s *Service) editSchema(ctx context.Context, ds metadata.Dataset, r *Record) (*schema.Schema, error) {
	defaults := make(map[string]any, len(ds.Fields))
	for _, f := range ds.Fields {
		if v := r.Value(f.Field); v != nil {
			defaults[f.Field] = v
		}
	}

	opts := schema.Options{Defaults: defaults}
	if parent, ok := r.Parent(); ok {
		opts.Inactive = []string{parent.Dataset}
	}
	return s.builder.Build(ctx, ds, opts)
}

// ChildSchema returns the schema for adding a record of childDataset under
// parent. The field named after the parent dataset is fixed to the parent's
// reference and organisation links default to the parent's.
func (s *Service) ChildSchema(ctx context.Context, parent Key, childDataset string) (*schema.Schema, error) {
	_, childDs, parentRecord, err := s.loadChild(ctx, parent, childDataset)
	if err != nil {
		return nil, err
	}
	return s.childSchema(ctx, childDs, parentRecord)
}

func (s *Service) childSchema(ctx context.Context, childDs metadata.Dataset, parent *Record) (*schema.Schema, error) {
	defaults := make(map[string]any, 2)
	if parent.Organisation != nil {
		defaults[metadata.FieldOrganisation] = *parent.Organisation
	}
	if len(parent.Organisations) > 0 {
		defaults[metadata.FieldOrganisations] = parent.Organisations
	}

	return s.builder.Build(ctx, childDs, schema.Options{
		ParentDataset:   childDs.Parent,
		ParentReference: parent.Reference,
		Defaults:        defaults,
	})
}

// --- Commands ---

// Create validates in against the dataset's add schema and stores a new record.
func (s *Service) Create(ctx context.Context, dataset string, in schema.Input) (*Record, error) {
	ds, err := s.datasets.Dataset(ctx, dataset)
	if err != nil {
		return nil, err
	}
	sch, err := s.addSchema(ctx, ds)
	if err != nil {
		return nil, err
	}
	sub, err := sch.Validate(in)
	if err != nil {
		return nil, err
	}
	return s.CreateRecord(ctx, ds, sub, nil)
}

// AddChild validates in against the child schema and stores a new record of
// childDataset owned by parent.
func (s *Service) AddChild(ctx context.Context, parent Key, childDataset string, in schema.Input) (*Record, error) {
	_, childDs, parentRecord, err := s.loadChild(ctx, parent, childDataset)
	if err != nil {
		return nil, err
	}
	sch, err := s.childSchema(ctx, childDs, parentRecord)
	if err != nil {
		return nil, err
	}
	sub, err := sch.Validate(in)
	if err != nil {
		return nil, err
	}
	parentKey := parentRecord.Key()
	return s.CreateRecord(ctx, childDs, sub, &parentKey)
}

// Update validates in against the record's edit schema and rewrites it.
func (s *Service) Update(ctx context.Context, key Key, in schema.Input) (*Record, error) {
	ds, r, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	sch, err := s.editSchema(ctx, ds, r)
	if err != nil {
		return nil, err
	}
	sub, err := sch.Validate(in)
	if err != nil {
		return nil, err
	}
	return s.UpdateRecord(ctx, ds, r, sub)
}

// CreateRecord checks cross-dataset references, allocates an entity and
// stores the materialized record, all in one transaction. A failed
// allocation leaves nothing behind.
func (s *Service) CreateRecord(ctx context.Context, ds metadata.Dataset, sub schema.Submission, parent *Key) (*Record, error) {
	ctx, span := tracer.Start(ctx, "record.create", trace.WithAttributes(
		attribute.String("record.dataset", ds.Dataset),
	))
	defer span.End()

	var created *Record
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.crossref.Validate(ctx, ds, sub.Data); err != nil {
			return err
		}

		alloc, err := s.alloc.Next(ctx, ds)
		if err != nil {
			return err
		}

		r, err := s.materializer.Create(ctx, alloc, ds, sub)
		if err != nil {
			return err
		}
		if parent != nil {
			r.SetParent(*parent)
		}

		if err := s.records.Create(ctx, r); err != nil {
			return fmt.Errorf("create record: %w", err)
		}
		if err := s.logHistory(ctx, audit.ActionCreate, nil, r); err != nil {
			return err
		}

		created = r
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("record.entity", created.Entity))
	logger.Info(ctx, "record created",
		"dataset", created.Dataset,
		"entity", created.Entity,
		"reference", created.Reference,
	)
	return created, nil
}

// UpdateRecord checks cross-dataset references and rewrites existing from sub.
func (s *Service) UpdateRecord(ctx context.Context, ds metadata.Dataset, existing *Record, sub schema.Submission) (*Record, error) {
	ctx, span := tracer.Start(ctx, "record.update", trace.WithAttributes(
		attribute.String("record.dataset", ds.Dataset),
		attribute.Int64("record.entity", existing.Entity),
	))
	defer span.End()

	var updated *Record
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.crossref.Validate(ctx, ds, sub.Data); err != nil {
			return err
		}

		r, err := s.materializer.Update(ctx, existing, sub)
		if err != nil {
			return err
		}

		if err := s.records.Update(ctx, r); err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		if err := s.logHistory(ctx, audit.ActionUpdate, existing, r); err != nil {
			return err
		}

		updated = r
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Info(ctx, "record updated",
		"dataset", updated.Dataset,
		"entity", updated.Entity,
		"reference", updated.Reference,
	)
	return updated, nil
}

// --- Queries ---

// Get returns one record.
func (s *Service) Get(ctx context.Context, key Key) (*Record, error) {
	return s.records.GetByKey(ctx, key)
}

// FindByReference returns the record of dataset with the given reference.
func (s *Service) FindByReference(ctx context.Context, dataset, reference string) (*Record, error) {
	return s.records.FindByReference(ctx, dataset, reference)
}

// List returns a page of records of one dataset.
func (s *Service) List(ctx context.Context, dataset string, filter domain.ListFilter) (domain.ListResult[*Record], error) {
	if _, err := s.datasets.Dataset(ctx, dataset); err != nil {
		return domain.ListResult[*Record]{}, err
	}
	return s.records.ListByDataset(ctx, dataset, filter.Normalize())
}

// Children returns the records owned by key.
func (s *Service) Children(ctx context.Context, key Key) ([]*Record, error) {
	if _, err := s.records.GetByKey(ctx, key); err != nil {
		return nil, err
	}
	return s.records.Children(ctx, key)
}

// Row returns the flattened listing row of one record.
func (s *Service) Row(ctx context.Context, key Key) (map[string]string, error) {
	ds, r, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	children, err := s.records.Children(ctx, key)
	if err != nil {
		return nil, err
	}
	return Row(ds, r, children), nil
}

// DisplayValue returns one field of a record as shown to readers.
func (s *Service) DisplayValue(ctx context.Context, key Key, field string) (any, error) {
	ds, r, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return DisplayValue(ctx, s.refs, ds, r, field)
}

// History returns the newest history entries of a record.
func (s *Service) History(ctx context.Context, key Key, limit int) ([]audit.Entry, error) {
	if s.history == nil {
		return nil, nil
	}
	if _, err := s.records.GetByKey(ctx, key); err != nil {
		return nil, err
	}
	return s.history.History(ctx, key.Dataset, key.Entity, limit)
}

// --- helpers ---

func (s *Service) load(ctx context.Context, key Key) (metadata.Dataset, *Record, error) {
	ds, err := s.datasets.Dataset(ctx, key.Dataset)
	if err != nil {
		return metadata.Dataset{}, nil, err
	}
	r, err := s.records.GetByKey(ctx, key)
	if err != nil {
		return metadata.Dataset{}, nil, err
	}
	return ds, r, nil
}

func (s *Service) loadChild(ctx context.Context, parent Key, childDataset string) (metadata.Dataset, metadata.Dataset, *Record, error) {
	parentDs, parentRecord, err := s.load(ctx, parent)
	if err != nil {
		return metadata.Dataset{}, metadata.Dataset{}, nil, err
	}
	childDs, err := s.datasets.Dataset(ctx, childDataset)
	if err != nil {
		return metadata.Dataset{}, metadata.Dataset{}, nil, err
	}
	if childDs.Parent != parentDs.Dataset {
		return metadata.Dataset{}, metadata.Dataset{}, nil, apperror.NewValidation(
			fmt.Sprintf("Dataset '%s' is not a child of '%s'", childDs.Dataset, parentDs.Dataset),
		)
	}
	return parentDs, childDs, parentRecord, nil
}

func (s *Service) logHistory(ctx context.Context, action audit.Action, before, after *Record) error {
	if s.history == nil {
		return nil
	}

	var old map[string]any
	if before != nil {
		old = snapshot(before)
	}
	entry, err := audit.NewEntry(action, after.Dataset, after.Entity, audit.Diff(old, snapshot(after)))
	if err != nil {
		return fmt.Errorf("build history entry: %w", err)
	}
	entry.UserID = appctx.GetUserID(ctx)

	if err := s.history.Log(ctx, entry); err != nil {
		return fmt.Errorf("log history: %w", err)
	}
	return nil
}

// snapshot is the audited state of a record: its editable attributes and
// data bag, with unset values left out.
func snapshot(r *Record) map[string]any {
	state := make(map[string]any, len(r.Data)+5)
	for k, v := range r.Data {
		state[k] = v
	}
	for _, f := range []string{
		metadata.FieldName,
		metadata.FieldDescription,
		metadata.FieldNotes,
		metadata.FieldOrganisation,
		metadata.FieldOrganisations,
	} {
		if v, _ := r.Attribute(f); v != nil && v != "" {
			state[f] = v
		}
	}
	return state
}
