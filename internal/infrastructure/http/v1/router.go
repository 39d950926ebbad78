// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"datasets/internal/domain/record"
	"datasets/internal/infrastructure/cache"
	"datasets/internal/infrastructure/http/v1/handlers"
	"datasets/internal/infrastructure/http/v1/middleware"
	"datasets/internal/infrastructure/storage/postgres"
	"datasets/internal/metadata"
	"datasets/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator guards record writes. Nil disables authentication.
	JWTValidator middleware.JWTValidator

	Datasets metadata.Provider
	Records  *record.Service

	// Pool is nil when running on the in-memory store.
	Pool *postgres.Pool
	// MetadataCache is reported by /health/info when set.
	MetadataCache *cache.MetadataCache

	Version     string
	Development bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.MetadataCache, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	v1 := router.Group("/api/v1")
	registerDatasetRoutes(v1, cfg)

	return router
}

// registerDatasetRoutes registers dataset metadata and record endpoints.
// Reads are public; writes need a bearer token when authentication is on.
func registerDatasetRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	var writeGuards []gin.HandlerFunc
	if cfg.JWTValidator != nil {
		writeGuards = append(writeGuards, middleware.Auth(cfg.JWTValidator))
	}

	datasetHandler := handlers.NewDatasetHandler(baseHandler, cfg.Datasets, cfg.Records)
	datasets := rg.Group("/datasets")
	{
		datasets.GET("", datasetHandler.List)
		datasets.GET("/:dataset", datasetHandler.Get)
		datasets.GET("/:dataset/schema", datasetHandler.Schema)
	}

	recordHandler := handlers.NewRecordHandler(baseHandler, cfg.Datasets, cfg.Records)
	RegisterRecordRoutes(datasets.Group("/:dataset/records"), recordHandler, writeGuards...)
}
