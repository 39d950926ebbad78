package allocator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreallocator "datasets/internal/core/allocator"
	"datasets/internal/metadata"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates entity_sequence: one counter per dataset, starting
// at the minimum passed by the caller.
type mockQuerier struct {
	mu       sync.Mutex
	counters map[string]int64
	err      error
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return &mockRow{err: m.err}
	}
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}

	dataset := args[0].(string)
	minimum := args[1].(int64)

	cur, ok := m.counters[dataset]
	switch {
	case !ok:
		cur = minimum
	default:
		cur = max(cur+1, minimum)
	}
	m.counters[dataset] = cur

	return &mockRow{val: cur}
}

func TestNext_Sequential(t *testing.T) {
	svc := NewWithQuerier(&mockQuerier{})
	ctx := context.Background()
	tpo := metadata.Dataset{Dataset: "tree-preservation-order", EntityMinimum: 100, EntityMaximum: 200}

	first, err := svc.Next(ctx, tpo)
	require.NoError(t, err)
	assert.Equal(t, coreallocator.Allocation{Entity: 100, Reference: "tpo-100"}, first)

	second, err := svc.Next(ctx, tpo)
	require.NoError(t, err)
	assert.Equal(t, coreallocator.Allocation{Entity: 101, Reference: "tpo-101"}, second)
}

func TestNext_RangeExceeded(t *testing.T) {
	q := &mockQuerier{counters: map[string]int64{"tree-preservation-order": 200}}
	svc := NewWithQuerier(q)
	tpo := metadata.Dataset{Dataset: "tree-preservation-order", EntityMinimum: 100, EntityMaximum: 200}

	_, err := svc.Next(context.Background(), tpo)
	require.Error(t, err)
	assert.ErrorIs(t, err, coreallocator.ErrRangeExceeded)
}

func TestNext_Concurrency(t *testing.T) {
	svc := NewWithQuerier(&mockQuerier{})
	ds := metadata.Dataset{Dataset: "tree", EntityMinimum: 1, EntityMaximum: 10_000}

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int64]bool)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := svc.Next(context.Background(), ds)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, seen[a.Entity], "duplicate entity %d", a.Entity)
			seen[a.Entity] = true
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
}

func TestNext_QueryError(t *testing.T) {
	svc := NewWithQuerier(&mockQuerier{err: errors.New("connection refused")})

	_, err := svc.Next(context.Background(), metadata.Dataset{Dataset: "tree", EntityMinimum: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "next entity for tree")
}
