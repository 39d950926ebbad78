package cache

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasets/internal/core/apperror"
	"datasets/internal/infrastructure/storage/postgres"
	"datasets/internal/metadata"
)

// countingLoader wraps a registry and counts loads.
type countingLoader struct {
	reg       *metadata.Registry
	singles   atomic.Int32
	fullLoads atomic.Int32
}

func (l *countingLoader) Dataset(ctx context.Context, dataset string) (metadata.Dataset, error) {
	l.singles.Add(1)
	return l.reg.Dataset(ctx, dataset)
}

func (l *countingLoader) Datasets(ctx context.Context) ([]metadata.Dataset, error) {
	l.fullLoads.Add(1)
	return l.reg.Datasets(ctx)
}

func newLoader() *countingLoader {
	reg := metadata.NewRegistry()
	reg.Register(metadata.Dataset{Dataset: "tree", Parent: "tree-preservation-order", EntityMinimum: 1000})
	reg.Register(metadata.Dataset{Dataset: "tree-preservation-order", EntityMinimum: 100})
	return &countingLoader{reg: reg}
}

func TestMetadataCache_StartPreloads(t *testing.T) {
	loader := newLoader()
	c := NewMetadataCache(loader, nil)
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	ds, err := c.Dataset(context.Background(), "tree")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), ds.EntityMinimum)

	list, err := c.Datasets(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "tree", list[0].Dataset)

	assert.Equal(t, int32(1), loader.fullLoads.Load())
	assert.Equal(t, int32(0), loader.singles.Load())
	assert.True(t, c.GetStats().Complete)
}

func TestMetadataCache_NotificationInvalidatesOneDataset(t *testing.T) {
	loader := newLoader()
	c := NewMetadataCache(loader, nil)
	ctx := context.Background()
	_, err := c.Datasets(ctx)
	require.NoError(t, err)

	loader.reg.Register(metadata.Dataset{Dataset: "tree", Parent: "tree-preservation-order", EntityMinimum: 5000})
	c.handleNotification(postgres.DatasetChangedChannel, "tree")

	ds, err := c.Dataset(ctx, "tree")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), ds.EntityMinimum)
	assert.Equal(t, int32(1), loader.singles.Load())

	_, err = c.Dataset(ctx, "tree-preservation-order")
	require.NoError(t, err)
	assert.Equal(t, int32(1), loader.singles.Load())
}

func TestMetadataCache_EmptyPayloadDropsEverything(t *testing.T) {
	loader := newLoader()
	c := NewMetadataCache(loader, nil)
	ctx := context.Background()
	_, err := c.Datasets(ctx)
	require.NoError(t, err)

	var got []string
	c.OnInvalidation(func(_ string, payload string) { got = append(got, payload) })
	c.OnInvalidation(func(string, string) { panic("listener bug") })

	c.handleNotification(postgres.DatasetChangedChannel, "")
	c.handleNotification("unrelated", "tree")

	assert.Equal(t, []string{""}, got)
	assert.Empty(t, c.GetStats().DatasetsCached)

	_, err = c.Datasets(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), loader.fullLoads.Load())
}

func TestMetadataCache_MissIsNotCached(t *testing.T) {
	loader := newLoader()
	c := NewMetadataCache(loader, nil)

	_, err := c.Dataset(context.Background(), "hedgerow")
	assert.True(t, apperror.IsNotFound(err))
	_, err = c.Dataset(context.Background(), "hedgerow")
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, int32(2), loader.singles.Load())
}
