// Package app wires the record engine to one of its two stores.
package app

import (
	"context"
	"fmt"

	"datasets/internal/core/allocator"
	"datasets/internal/core/tx"
	"datasets/internal/domain/audit"
	"datasets/internal/domain/record"
	"datasets/internal/domain/reference"
	"datasets/internal/fixture"
	pgallocator "datasets/internal/infrastructure/allocator"
	"datasets/internal/infrastructure/cache"
	"datasets/internal/infrastructure/storage/memory"
	"datasets/internal/infrastructure/storage/postgres"
	"datasets/internal/infrastructure/storage/postgres/metadata_repo"
	"datasets/internal/infrastructure/storage/postgres/record_repo"
	"datasets/internal/metadata"
)

// Stores is the storage side of the engine.
type Stores struct {
	Datasets        metadata.Provider
	DatasetWriter   metadata.Writer
	References      reference.Repository
	ReferenceWriter reference.Writer
	Records         record.Repository
	Allocator       allocator.Allocator
	TxManager       tx.Manager
	History         audit.Logger

	// Set only for PostgreSQL.
	Pool  *postgres.Pool
	Cache *cache.MetadataCache
}

// Memory returns stores backed by a fresh in-memory store.
func Memory() Stores {
	s := memory.NewStore()
	refs := s.References()
	return Stores{
		Datasets:        s.Datasets(),
		DatasetWriter:   s.Datasets(),
		References:      refs,
		ReferenceWriter: refs,
		Records:         s.Records(),
		Allocator:       s.Allocator(),
		TxManager:       s.TxManager(),
		History:         s.History(),
	}
}

// PostgresOptions tune the PostgreSQL stores.
type PostgresOptions struct {
	// CacheMetadata puts dataset reads behind a MetadataCache.
	CacheMetadata bool
	// Listen makes the cache follow NOTIFY dataset_changed.
	Listen bool
}

// Postgres returns stores on pool. Start must be called before use when
// the metadata cache is enabled.
func Postgres(pool *postgres.Pool, opts PostgresOptions) (Stores, error) {
	txm := postgres.NewTxManager(pool)

	history, err := postgres.NewHistoryLog(txm)
	if err != nil {
		return Stores{}, fmt.Errorf("history log: %w", err)
	}

	datasetRepo := metadata_repo.NewDatasetRepo(txm)
	refs := metadata_repo.NewReferenceRepo(txm)

	s := Stores{
		Datasets:        datasetRepo,
		DatasetWriter:   datasetRepo,
		References:      refs,
		ReferenceWriter: refs,
		Records:         record_repo.New(txm),
		Allocator:       pgallocator.New(txm),
		TxManager:       txm,
		History:         history,
		Pool:            pool,
	}

	if opts.CacheMetadata {
		if opts.Listen {
			s.Cache = cache.NewMetadataCache(datasetRepo, pool.Pool)
		} else {
			s.Cache = cache.NewMetadataCache(datasetRepo, nil)
		}
		s.Datasets = s.Cache
	}
	return s, nil
}

// Start preloads the metadata cache, if any.
func (s Stores) Start(ctx context.Context) error {
	if s.Cache == nil {
		return nil
	}
	return s.Cache.Start(ctx)
}

// Close stops background work. The pool is owned by the caller.
func (s Stores) Close() {
	if s.Cache != nil {
		s.Cache.Stop()
	}
}

// RecordService builds the record service on the stores.
func (s Stores) RecordService() *record.Service {
	return record.NewService(record.ServiceConfig{
		Datasets:   s.Datasets,
		Records:    s.Records,
		References: s.References,
		Allocator:  s.Allocator,
		TxManager:  s.TxManager,
		History:    s.History,
	})
}

// FixtureTargets returns where fixtures are applied. Seed records go
// through svc so they are validated like any submission.
func (s Stores) FixtureTargets(svc *record.Service) fixture.Targets {
	return fixture.Targets{
		TxManager:  s.TxManager,
		Datasets:   s.DatasetWriter,
		References: s.ReferenceWriter,
		Records:    svc,
	}
}

// LoadFixture reads path and applies it to the stores.
func (s Stores) LoadFixture(ctx context.Context, path string, svc *record.Service) (fixture.Summary, error) {
	f, err := fixture.LoadFile(path)
	if err != nil {
		return fixture.Summary{}, err
	}
	return fixture.Apply(ctx, f, s.FixtureTargets(svc))
}
