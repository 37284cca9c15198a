package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pms/backend/internal/domain/outbox"
	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/domain/tenant"
	"github.com/pms/backend/internal/infrastructure/directory"
)

func newDispatcher(f *workerFixture) *Dispatcher {
	resolver := directory.NewResolver(f.dir)
	enqueuer := NewEnqueuer(resolver, f.pool, testDefaults())
	return NewDispatcher(enqueuer, resolver, f.pool, f.registry)
}

func inlineTenant(code string) *tenant.Tenant {
	return &tenant.Tenant{Code: code, Database: "pms_" + code}
}

func TestDispatcher_QueueModeEnqueues(t *testing.T) {
	tn := queueTenant("alfa")
	f := newWorkerFixture(t, tn)
	d := newDispatcher(f)

	res, err := d.Submit(context.Background(), EnqueueRequest{
		TenantCode:   "alfa",
		RequestRef:   "ref-1",
		Operation:    "op",
		OperationKey: "K",
	})
	require.NoError(t, err)
	assert.True(t, res.Queued)
	assert.Equal(t, outbox.StatusQueued, res.Status)

	got, err := f.store(t, tn).FindByRequestRef(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, outbox.StatusQueued, got.Status)
}

func TestDispatcher_InlineExecutesImmediately(t *testing.T) {
	tn := inlineTenant("alfa")
	f := newWorkerFixture(t, tn)

	calls := 0
	f.registry.MustRegister("K", HandlerFunc(func(ctx context.Context, db *gorm.DB, item *outbox.QueueItem) error {
		calls++
		return nil
	}))
	d := newDispatcher(f)

	res, err := d.Submit(context.Background(), EnqueueRequest{
		TenantCode:   "alfa",
		RequestRef:   "ref-1",
		Operation:    "op",
		OperationKey: "K",
	})
	require.NoError(t, err)
	assert.False(t, res.Queued)
	assert.Equal(t, outbox.StatusSucceeded, res.Status)
	assert.Equal(t, 1, calls)

	store := f.store(t, tn)

	// no queue row, but the audit trail records the outcome
	_, err = store.FindByRequestRef(context.Background(), "ref-1")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	entries, err := store.FindLogByRequestRef(context.Background(), "ref-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, outbox.StatusSucceeded, entries[0].Status)
}

func TestDispatcher_InlineFailureSurfacesToCaller(t *testing.T) {
	tn := inlineTenant("alfa")
	f := newWorkerFixture(t, tn)
	f.registry.MustRegister("K", HandlerFunc(func(ctx context.Context, db *gorm.DB, item *outbox.QueueItem) error {
		return errors.New("partner rejected payload")
	}))
	d := newDispatcher(f)

	res, err := d.Submit(context.Background(), EnqueueRequest{
		TenantCode:   "alfa",
		RequestRef:   "ref-1",
		Operation:    "op",
		OperationKey: "K",
	})
	require.Error(t, err)
	assert.Equal(t, outbox.StatusFailed, res.Status)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeHandlerFailure, domainErr.Code)

	entries, logErr := f.store(t, tn).FindLogByRequestRef(context.Background(), "ref-1")
	require.NoError(t, logErr)
	require.Len(t, entries, 1)
	assert.Equal(t, outbox.StatusFailed, entries[0].Status)
	assert.Contains(t, entries[0].Message, "partner rejected payload")
}

func TestDispatcher_InlineUnknownKey(t *testing.T) {
	tn := inlineTenant("alfa")
	f := newWorkerFixture(t, tn)
	d := newDispatcher(f)

	res, err := d.Submit(context.Background(), EnqueueRequest{
		TenantCode:   "alfa",
		RequestRef:   "ref-1",
		Operation:    "op",
		OperationKey: "Ghost.Key",
	})
	require.Error(t, err)
	assert.Equal(t, outbox.StatusFailed, res.Status)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeUnknownOperationKey, domainErr.Code)
}
