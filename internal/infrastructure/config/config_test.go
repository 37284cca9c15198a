package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pms-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 180, cfg.Sync.WorkerIntervalSeconds)
	assert.Equal(t, 50, cfg.Sync.WorkerBatchSize)
	assert.Equal(t, 5, cfg.Sync.MaxAttempts)
	assert.False(t, cfg.Sync.EnableQueueMode)
	assert.False(t, cfg.Sync.EnableBackgroundWorker)
	assert.False(t, cfg.Sync.DedupEnabled)
	assert.Equal(t, 24*time.Hour, cfg.Sync.DedupTTL)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PMS_SYNC_WORKER_BATCH_SIZE", "10")
	t.Setenv("PMS_SYNC_ENABLE_QUEUE_MODE", "true")
	t.Setenv("PMS_DATABASE_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Sync.WorkerBatchSize)
	assert.True(t, cfg.Sync.EnableQueueMode)
	assert.Equal(t, "s3cret", cfg.Database.Secret)
}

func TestLoad_IntervalFloor(t *testing.T) {
	t.Setenv("PMS_SYNC_WORKER_INTERVAL_SECONDS", "2")

	_, err := Load()
	assert.Error(t, err, "intervals below the 5s floor are rejected")
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("PMS_APP_ENV", "production")
	t.Setenv("PMS_DATABASE_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseConfig_TenantDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:    "db.internal",
		Port:    5432,
		User:    "pms",
		Secret:  "p@ss/word",
		SSLMode: "require",
	}

	dsn := d.TenantDSN("pms_alfa")

	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "pms_alfa")
	assert.Contains(t, dsn, "sslmode=require")
	assert.NotContains(t, dsn, "p@ss/word", "password must be escaped")
}

func TestSyncConfig_QueueDefaults(t *testing.T) {
	c := SyncConfig{
		EnableQueueMode:       true,
		WorkerIntervalSeconds: 60,
		WorkerBatchSize:       25,
		DefaultPartner:        "channelmgr",
	}

	s := c.QueueDefaults()

	assert.True(t, s.EnableQueueMode)
	assert.Equal(t, 60, s.WorkerIntervalSeconds)
	assert.Equal(t, 25, s.WorkerBatchSize)
	assert.Equal(t, "channelmgr", s.DefaultPartner)
}
