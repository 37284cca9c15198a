package models

import (
	"time"

	"github.com/pms/backend/internal/domain/tenant"
)

// TenantModel is the persistence model for the central tenant directory.
// The directory lives in its own database; rows are provisioned out-of-band
// and the synchronization core only ever reads them. Nullable columns are
// per-tenant overrides; NULL means the process default applies.
type TenantModel struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Code     string `gorm:"type:varchar(64);not null;uniqueIndex"`
	Database string `gorm:"type:varchar(128);not null"`

	EnableQueueMode        *bool   `gorm:"column:enable_queue_mode"`
	EnableBackgroundWorker *bool   `gorm:"column:enable_background_worker"`
	WorkerIntervalSeconds  *int    `gorm:"column:worker_interval_seconds"`
	WorkerBatchSize        *int    `gorm:"column:worker_batch_size"`
	DefaultPartner         *string `gorm:"column:default_partner;type:varchar(64)"`
	UseMiddleware          *bool   `gorm:"column:use_middleware"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant
func (m *TenantModel) ToDomain() *tenant.Tenant {
	return &tenant.Tenant{
		ID:                     m.ID,
		Code:                   m.Code,
		Database:               m.Database,
		EnableQueueMode:        m.EnableQueueMode,
		EnableBackgroundWorker: m.EnableBackgroundWorker,
		WorkerIntervalSeconds:  m.WorkerIntervalSeconds,
		WorkerBatchSize:        m.WorkerBatchSize,
		DefaultPartner:         m.DefaultPartner,
		UseMiddleware:          m.UseMiddleware,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Tenant
func (m *TenantModel) FromDomain(t *tenant.Tenant) {
	m.ID = t.ID
	m.Code = t.Code
	m.Database = t.Database
	m.EnableQueueMode = t.EnableQueueMode
	m.EnableBackgroundWorker = t.EnableBackgroundWorker
	m.WorkerIntervalSeconds = t.WorkerIntervalSeconds
	m.WorkerBatchSize = t.WorkerBatchSize
	m.DefaultPartner = t.DefaultPartner
	m.UseMiddleware = t.UseMiddleware
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt
}
