package tenant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func defaults() QueueSettings {
	return QueueSettings{
		EnableQueueMode:        false,
		EnableBackgroundWorker: false,
		WorkerIntervalSeconds:  180,
		WorkerBatchSize:        50,
		DefaultPartner:         "channelmgr",
	}
}

func TestQueueSettings_Merge_NilTenant(t *testing.T) {
	eff := defaults().Merge(nil)
	assert.Equal(t, defaults(), eff)
}

func TestQueueSettings_Merge_NoOverrides(t *testing.T) {
	eff := defaults().Merge(&Tenant{Code: "alfa", Database: "pms_alfa"})
	assert.Equal(t, defaults(), eff)
}

func TestQueueSettings_Merge_OverridesWin(t *testing.T) {
	tn := &Tenant{
		Code:                   "alfa",
		Database:               "pms_alfa",
		EnableQueueMode:        boolPtr(true),
		EnableBackgroundWorker: boolPtr(true),
		WorkerIntervalSeconds:  intPtr(30),
		WorkerBatchSize:        intPtr(10),
		DefaultPartner:         strPtr("bookingsync"),
		UseMiddleware:          boolPtr(true),
	}

	eff := defaults().Merge(tn)

	assert.True(t, eff.EnableQueueMode)
	assert.True(t, eff.EnableBackgroundWorker)
	assert.Equal(t, 30, eff.WorkerIntervalSeconds)
	assert.Equal(t, 10, eff.WorkerBatchSize)
	assert.Equal(t, "bookingsync", eff.DefaultPartner)
	assert.True(t, eff.UseMiddleware)
}

func TestQueueSettings_Merge_ExplicitFalseOverride(t *testing.T) {
	d := defaults()
	d.EnableQueueMode = true

	eff := d.Merge(&Tenant{Code: "alfa", EnableQueueMode: boolPtr(false)})
	assert.False(t, eff.EnableQueueMode, "an explicit false override must win over a true default")
}

func TestQueueSettings_Interval_Floor(t *testing.T) {
	s := QueueSettings{WorkerIntervalSeconds: 1}
	assert.Equal(t, 5*time.Second, s.Interval())

	s.WorkerIntervalSeconds = 180
	assert.Equal(t, 180*time.Second, s.Interval())
}

func TestQueueSettings_BatchSize_Minimum(t *testing.T) {
	s := QueueSettings{WorkerBatchSize: 0}
	assert.Equal(t, 1, s.BatchSize())

	s.WorkerBatchSize = 50
	assert.Equal(t, 50, s.BatchSize())
}
