package directory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/domain/tenant"
	"github.com/pms/backend/internal/infrastructure/persistence/models"
)

// GormDirectory reads the central tenant registry. The registry is
// provisioned out-of-band; this implementation never writes to it.
type GormDirectory struct {
	db *gorm.DB
}

// NewGormDirectory creates a directory backed by the given database
func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

// FindByCode retrieves a tenant by its stable external code
func (d *GormDirectory) FindByCode(ctx context.Context, code string) (*tenant.Tenant, error) {
	var model models.TenantModel
	err := d.db.WithContext(ctx).Where("code = ?", code).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewTenantNotFoundError(code)
		}
		return nil, fmt.Errorf("failed to query tenant directory: %w", err)
	}
	return model.ToDomain(), nil
}

// All retrieves every registered tenant ordered by code
func (d *GormDirectory) All(ctx context.Context) ([]*tenant.Tenant, error) {
	var rows []models.TenantModel
	if err := d.db.WithContext(ctx).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list tenant directory: %w", err)
	}

	tenants := make([]*tenant.Tenant, 0, len(rows))
	for i := range rows {
		tenants = append(tenants, rows[i].ToDomain())
	}
	return tenants, nil
}

var _ tenant.Directory = (*GormDirectory)(nil)
