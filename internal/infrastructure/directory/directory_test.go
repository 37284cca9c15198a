package directory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/infrastructure/persistence/models"
)

func newDirectoryDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.TenantModel{}))
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, code, database string) {
	t.Helper()
	require.NoError(t, db.Create(&models.TenantModel{Code: code, Database: database}).Error)
}

func TestGormDirectory_FindByCode(t *testing.T) {
	db := newDirectoryDB(t)
	seedTenant(t, db, "alfa", "pms_alfa")

	dir := NewGormDirectory(db)

	found, err := dir.FindByCode(context.Background(), "alfa")
	require.NoError(t, err)
	assert.Equal(t, "alfa", found.Code)
	assert.Equal(t, "pms_alfa", found.Database)
	assert.Nil(t, found.EnableQueueMode)
}

func TestGormDirectory_FindByCode_NotFound(t *testing.T) {
	dir := NewGormDirectory(newDirectoryDB(t))

	_, err := dir.FindByCode(context.Background(), "ghost")
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeTenantNotFound, domainErr.Code)
}

func TestGormDirectory_All(t *testing.T) {
	db := newDirectoryDB(t)
	seedTenant(t, db, "bravo", "pms_bravo")
	seedTenant(t, db, "alfa", "pms_alfa")

	dir := NewGormDirectory(db)

	all, err := dir.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alfa", all[0].Code)
	assert.Equal(t, "bravo", all[1].Code)
}
