package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SystemHandler serves health and readiness probes
type SystemHandler struct {
	BaseHandler
	directoryDB *gorm.DB
	startedAt   time.Time
}

// NewSystemHandler creates a system handler over the directory database
func NewSystemHandler(directoryDB *gorm.DB) *SystemHandler {
	return &SystemHandler{directoryDB: directoryDB, startedAt: time.Now()}
}

// HealthResponse is the health probe body
type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Directory string `json:"directory"`
}

// Health reports process liveness and directory database reachability
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Directory: "ok",
	}

	if sqlDB, err := h.directoryDB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		resp.Status = "degraded"
		resp.Directory = "unreachable"
	}

	h.Success(c, resp)
}
