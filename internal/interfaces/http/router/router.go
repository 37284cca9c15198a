package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pms/backend/internal/infrastructure/logger"
	"github.com/pms/backend/internal/interfaces/http/handler"
	"github.com/pms/backend/internal/interfaces/http/middleware"
)

// Config holds router configuration
type Config struct {
	Mode   string
	CORS   middleware.CORSConfig
	Logger *zap.Logger
}

// New assembles the HTTP surface: health probe plus the tenant-scoped
// synchronization API
func New(cfg Config, syncHandler *handler.SyncHandler, systemHandler *handler.SystemHandler) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(logger.Recovery(log))
	r.Use(logger.GinMiddleware(log))
	r.Use(middleware.CORSWithConfig(cfg.CORS))
	r.Use(middleware.TenantContext(middleware.TenantConfig{
		SkipPaths: []string{"/health"},
		Logger:    log,
	}))

	r.GET("/health", systemHandler.Health)

	api := r.Group("/api/v1/sync")
	{
		api.POST("/enqueue", syncHandler.Submit)
		api.GET("/settings", syncHandler.Settings)
		api.GET("/stats", syncHandler.Stats)
		api.GET("/queue", syncHandler.ListQueue)
		api.GET("/queue/:ref", syncHandler.GetItem)
		api.POST("/queue/:ref/retry", syncHandler.Retry)
	}

	return r
}
