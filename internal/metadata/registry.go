package metadata

import (
	"context"
	"sort"
	"sync"

	"datasets/internal/core/apperror"
)

// Provider returns dataset metadata.
type Provider interface {
	// Dataset returns one dataset with its fields. Missing datasets yield a
	// NOT_FOUND AppError.
	Dataset(ctx context.Context, dataset string) (Dataset, error)
	// Datasets returns every dataset ordered by identifier.
	Datasets(ctx context.Context) ([]Dataset, error)
}

// Writer stores dataset definitions. Used by fixture loading.
type Writer interface {
	SaveDataset(ctx context.Context, def Dataset) error
}

// Registry stores dataset definitions in memory.
type Registry struct {
	mu       sync.RWMutex
	datasets map[string]Dataset
}

func NewRegistry() *Registry {
	return &Registry{
		datasets: make(map[string]Dataset),
	}
}

// Register adds or replaces a dataset definition.
func (r *Registry) Register(def Dataset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.datasets[def.Dataset] = def.Clone()
}

func (r *Registry) Get(dataset string) (Dataset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.datasets[dataset]
	if !ok {
		return Dataset{}, false
	}
	return d.Clone(), true
}

func (r *Registry) List() []Dataset {
	r.mu.RLock()
	list := make([]Dataset, 0, len(r.datasets))
	for _, def := range r.datasets {
		list = append(list, def.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].Dataset < list[j].Dataset })
	return list
}

// Dataset implements Provider.
func (r *Registry) Dataset(_ context.Context, dataset string) (Dataset, error) {
	d, ok := r.Get(dataset)
	if !ok {
		return Dataset{}, apperror.NewNotFound("dataset", dataset)
	}
	return d, nil
}

// Datasets implements Provider.
func (r *Registry) Datasets(_ context.Context) ([]Dataset, error) {
	return r.List(), nil
}

// SaveDataset implements Writer.
func (r *Registry) SaveDataset(_ context.Context, def Dataset) error {
	r.Register(def)
	return nil
}

// Names returns the set of dataset identifiers known to p.
func Names(ctx context.Context, p Provider) (map[string]struct{}, error) {
	all, err := p.Datasets(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]struct{}, len(all))
	for _, d := range all {
		names[d.Dataset] = struct{}{}
	}
	return names, nil
}
