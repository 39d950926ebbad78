package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datasets/internal/infrastructure/cache"
	"datasets/internal/infrastructure/storage/postgres"
)

// HealthHandler provides health check endpoints. A nil pool means the
// service runs on the in-memory store.
type HealthHandler struct {
	pool    *postgres.Pool
	cache   *cache.MetadataCache
	version string
}

// NewHealthHandler creates a new health handler. pool and metadataCache may be nil.
func NewHealthHandler(pool *postgres.Pool, metadataCache *cache.MetadataCache, version string) *HealthHandler {
	return &HealthHandler{pool: pool, cache: metadataCache, version: version}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.pool == nil {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"checks": map[string]string{"store": "memory"},
		})
		return
	}

	if err := h.pool.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{
				"database": "unhealthy: " + err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{
			"database": "healthy",
		},
	})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	info := gin.H{
		"app":     "datasets",
		"version": h.version,
		"store":   "memory",
	}
	if h.pool != nil {
		info["store"] = "postgres"
		info["database"] = h.pool.Stats()
	}
	if h.cache != nil {
		info["metadata_cache"] = h.cache.GetStats()
	}
	c.JSON(http.StatusOK, info)
}
