package tenant

import (
	"context"
	"time"
)

// Tenant is one isolated customer installation registered in the central
// directory. The directory is provisioned out-of-band and read-only to the
// synchronization core. Override fields are nil when the tenant inherits the
// process default.
type Tenant struct {
	ID       int64
	Code     string
	Database string

	EnableQueueMode        *bool
	EnableBackgroundWorker *bool
	WorkerIntervalSeconds  *int
	WorkerBatchSize        *int
	DefaultPartner         *string
	UseMiddleware          *bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Directory is the central registry of tenants
type Directory interface {
	// FindByCode retrieves a tenant by its stable external code
	FindByCode(ctx context.Context, code string) (*Tenant, error)
	// All retrieves every registered tenant
	All(ctx context.Context) ([]*Tenant, error)
}
