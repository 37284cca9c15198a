package directory

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/domain/tenant"
	"github.com/pms/backend/internal/infrastructure/config"
	"github.com/pms/backend/internal/infrastructure/persistence/models"
)

// DSNBuilder produces the connection string for one tenant database target
type DSNBuilder func(database string) (string, error)

// Opener opens a database handle from a connection string
type Opener func(dsn string) (*gorm.DB, error)

// NewDSNBuilder builds tenant connection strings from the process credential
// settings. Each credential is validated at build time so a missing setting
// surfaces as a configuration error instead of a connect failure.
func NewDSNBuilder(cfg config.DatabaseConfig) DSNBuilder {
	return func(database string) (string, error) {
		if cfg.Host == "" {
			return "", shared.NewConfigurationMissingError("database.host")
		}
		if cfg.User == "" {
			return "", shared.NewConfigurationMissingError("database.user")
		}
		if cfg.Secret == "" {
			return "", shared.NewConfigurationMissingError("database.secret")
		}
		return cfg.TenantDSN(database), nil
	}
}

// ConnectionPool hands out one database handle per tenant, opening lazily on
// first use and reusing it afterwards. The tenant schema is provisioned on
// first open; AutoMigrate is idempotent so a racing second open is harmless.
type ConnectionPool struct {
	buildDSN DSNBuilder
	open     Opener
	logger   *zap.Logger

	mu    sync.Mutex
	conns map[string]*gorm.DB
}

// NewConnectionPool creates an empty pool
func NewConnectionPool(buildDSN DSNBuilder, open Opener, log *zap.Logger) *ConnectionPool {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConnectionPool{
		buildDSN: buildDSN,
		open:     open,
		logger:   log,
		conns:    make(map[string]*gorm.DB),
	}
}

// Get returns the database handle for the tenant, opening and provisioning
// it on first use
func (p *ConnectionPool) Get(ctx context.Context, t *tenant.Tenant) (*gorm.DB, error) {
	if t.Database == "" {
		return nil, shared.NewTenantMisconfiguredError(t.Code, "no database target")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if db, ok := p.conns[t.Code]; ok {
		return db, nil
	}

	dsn, err := p.buildDSN(t.Database)
	if err != nil {
		return nil, err
	}

	db, err := p.open(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database for tenant %q: %w", t.Code, err)
	}

	if err := db.WithContext(ctx).AutoMigrate(models.TenantSchema()...); err != nil {
		return nil, fmt.Errorf("failed to provision schema for tenant %q: %w", t.Code, err)
	}

	p.logger.Info("Opened tenant database",
		zap.String("tenant", t.Code),
		zap.String("database", t.Database))

	p.conns[t.Code] = db
	return db, nil
}

// Close closes every pooled connection
func (p *ConnectionPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for code, db := range p.conns {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close connection for tenant %q: %w", code, err)
		}
		delete(p.conns, code)
	}
	return firstErr
}
