// Package cache provides caching infrastructure with PostgreSQL LISTEN/NOTIFY support.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"datasets/internal/infrastructure/storage/postgres"
	"datasets/internal/metadata"
	"datasets/pkg/logger"
)

// MetadataCache is a metadata.Provider that keeps dataset definitions in
// memory. Entries are dropped when PostgreSQL notifies dataset_changed with
// the dataset identifier, or all at once for an empty payload.
type MetadataCache struct {
	loader metadata.Provider
	pool   *pgxpool.Pool

	mu       sync.RWMutex
	datasets map[string]metadata.Dataset
	complete bool // datasets holds every dataset

	// Listeners for cache invalidation
	listeners   []InvalidationListener
	listenersMu sync.RWMutex

	// Lifecycle
	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

// InvalidationListener is called when cache is invalidated.
type InvalidationListener func(channel string, payload string)

// NewMetadataCache creates a cache in front of loader. pool may be nil, in
// which case the cache never listens and entries live until Invalidate.
func NewMetadataCache(loader metadata.Provider, pool *pgxpool.Pool) *MetadataCache {
	return &MetadataCache{
		loader:   loader,
		pool:     pool,
		datasets: make(map[string]metadata.Dataset),
	}
}

// Start loads every dataset and begins listening for NOTIFY events.
func (c *MetadataCache) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.lifecycleMu.Lock()
	if c.started {
		c.lifecycleMu.Unlock()
		return nil
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true
	c.lifecycleMu.Unlock()

	if _, err := c.Datasets(c.ctx); err != nil {
		c.Stop()
		return fmt.Errorf("load datasets: %w", err)
	}

	if c.pool != nil {
		c.wg.Add(1)
		go c.listenLoop()
	}
	logger.Info(c.ctx, "metadata cache started", "listening", c.pool != nil)
	return nil
}

// Stop gracefully stops the cache listener.
func (c *MetadataCache) Stop() {
	c.lifecycleMu.Lock()
	if !c.started {
		c.lifecycleMu.Unlock()
		return
	}
	cancel := c.cancel
	c.started = false
	c.cancel = nil
	c.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	logger.Info(context.Background(), "metadata cache stopped")
}

// Dataset implements metadata.Provider.
func (c *MetadataCache) Dataset(ctx context.Context, dataset string) (metadata.Dataset, error) {
	c.mu.RLock()
	ds, ok := c.datasets[dataset]
	c.mu.RUnlock()
	if ok {
		return ds.Clone(), nil
	}

	ds, err := c.loader.Dataset(ctx, dataset)
	if err != nil {
		return metadata.Dataset{}, err
	}

	c.mu.Lock()
	c.datasets[dataset] = ds.Clone()
	c.mu.Unlock()
	return ds, nil
}

// Datasets implements metadata.Provider.
func (c *MetadataCache) Datasets(ctx context.Context) ([]metadata.Dataset, error) {
	c.mu.RLock()
	if c.complete {
		list := c.sortedLocked()
		c.mu.RUnlock()
		return list, nil
	}
	c.mu.RUnlock()

	list, err := c.loader.Datasets(ctx)
	if err != nil {
		return nil, err
	}

	fresh := make(map[string]metadata.Dataset, len(list))
	for _, ds := range list {
		fresh[ds.Dataset] = ds.Clone()
	}

	c.mu.Lock()
	c.datasets = fresh
	c.complete = true
	c.mu.Unlock()

	logger.Debug(ctx, "loaded datasets", "count", len(list))
	return list, nil
}

func (c *MetadataCache) sortedLocked() []metadata.Dataset {
	reg := metadata.NewRegistry()
	for _, ds := range c.datasets {
		reg.Register(ds)
	}
	return reg.List()
}

// Invalidate drops one dataset, or everything for an empty identifier.
func (c *MetadataCache) Invalidate(dataset string) {
	dataset = strings.TrimSpace(dataset)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.complete = false
	if dataset == "" {
		c.datasets = make(map[string]metadata.Dataset)
		return
	}
	delete(c.datasets, dataset)
}

// OnInvalidation registers a callback for cache invalidation events.
func (c *MetadataCache) OnInvalidation(listener InvalidationListener) {
	c.listenersMu.Lock()
	c.listeners = append(c.listeners, listener)
	c.listenersMu.Unlock()
}

// listenLoop listens for PostgreSQL NOTIFY events, reconnecting on failure.
func (c *MetadataCache) listenLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		// Acquire dedicated connection for LISTEN
		conn, err := c.pool.Acquire(c.ctx)
		if err != nil {
			logger.Error(c.ctx, "failed to acquire connection for LISTEN", "error", err)
			time.Sleep(time.Second)
			continue
		}

		if _, err = conn.Exec(c.ctx, "LISTEN "+postgres.DatasetChangedChannel); err != nil {
			logger.Error(c.ctx, "failed to LISTEN", "error", err)
			conn.Release()
			time.Sleep(time.Second)
			continue
		}

		// Changes made while we were not listening are unknown.
		c.Invalidate("")
		logger.Info(c.ctx, "listening for dataset notifications", "channel", postgres.DatasetChangedChannel)

		c.waitForNotifications(conn)
		conn.Release()
	}
}

// waitForNotifications blocks waiting for NOTIFY events.
func (c *MetadataCache) waitForNotifications(conn *pgxpool.Conn) {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		// Wait for notification with timeout for graceful shutdown
		ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
		notification, err := conn.Conn().WaitForNotification(ctx)
		cancel()

		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			if ctx.Err() != nil {
				continue
			}
			logger.Warn(c.ctx, "LISTEN connection lost", "error", err)
			return
		}

		logger.Debug(c.ctx, "received notification",
			"channel", notification.Channel,
			"payload", notification.Payload)

		c.handleNotification(notification.Channel, notification.Payload)
	}
}

// handleNotification processes NOTIFY event.
func (c *MetadataCache) handleNotification(channel, payload string) {
	if channel != postgres.DatasetChangedChannel {
		return
	}
	c.Invalidate(payload)

	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	// Listeners run inline; a panicking listener must not kill the loop.
	c.listenersMu.RLock()
	for _, listener := range c.listeners {
		func(l InvalidationListener) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error(ctx, "listener panic recovered", "channel", channel, "panic", r)
				}
			}()
			l(channel, payload)
		}(listener)
	}
	c.listenersMu.RUnlock()
}

// CacheStats describes cache contents.
type CacheStats struct {
	DatasetsCached []string `json:"datasets_cached"`
	Complete       bool     `json:"complete"`
}

// GetStats returns current cache statistics.
func (c *MetadataCache) GetStats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.datasets))
	for _, ds := range c.sortedLocked() {
		names = append(names, ds.Dataset)
	}
	return CacheStats{DatasetsCached: names, Complete: c.complete}
}

var _ metadata.Provider = (*MetadataCache)(nil)
