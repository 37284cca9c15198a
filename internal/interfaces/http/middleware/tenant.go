package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pms/backend/internal/infrastructure/logger"
)

// Tenant context keys
const (
	TenantCodeKey   = "tenant_code"
	TenantHeaderKey = "X-Tenant-Code"
)

// TenantConfig holds configuration for the tenant middleware
type TenantConfig struct {
	// SkipPaths are paths served without tenant context, e.g. health
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// TenantContext extracts the tenant code from the X-Tenant-Code header and
// makes it ambient: stored in the gin context and propagated into the
// request context where the tenant resolver picks it up. Requests without
// the header pass through; endpoints that need a tenant fail at resolution
// with a tenant-not-found error.
func TenantContext(cfg TenantConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		code := c.GetHeader(TenantHeaderKey)
		if code != "" {
			c.Set(TenantCodeKey, code)
			ctx, _ := logger.WithTenantCode(c.Request.Context(), logger.FromContext(c.Request.Context()), code)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// GetTenantCode returns the tenant code extracted for this request
func GetTenantCode(c *gin.Context) string {
	return c.GetString(TenantCodeKey)
}
