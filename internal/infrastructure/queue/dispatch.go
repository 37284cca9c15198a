package queue

import (
	"context"

	"go.uber.org/zap"

	"github.com/pms/backend/internal/domain/outbox"
	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/infrastructure/directory"
	"github.com/pms/backend/internal/infrastructure/logger"
)

// SubmitResult reports how a submission was handled. Queued submissions
// complete later; inline submissions carry their outcome directly.
type SubmitResult struct {
	RequestRef string
	Queued     bool
	Status     outbox.Status
}

// Dispatcher is the single entry point for partner work. When the tenant's
// effective queue mode is on, the work is accepted into the queue table and
// the caller gets a reference. When it is off, the operation runs inline on
// the caller's request, writing the same audit record either way.
type Dispatcher struct {
	enqueuer *Enqueuer
	resolver *directory.Resolver
	pool     *directory.ConnectionPool
	registry *Registry
}

// NewDispatcher creates a dispatcher
func NewDispatcher(enqueuer *Enqueuer, resolver *directory.Resolver, pool *directory.ConnectionPool, registry *Registry) *Dispatcher {
	return &Dispatcher{enqueuer: enqueuer, resolver: resolver, pool: pool, registry: registry}
}

// Submit routes one unit of partner work by the tenant's effective settings
func (d *Dispatcher) Submit(ctx context.Context, req EnqueueRequest) (*SubmitResult, error) {
	settings, err := d.enqueuer.SettingsFor(ctx, req.TenantCode)
	if err != nil {
		return nil, err
	}

	if settings.EnableQueueMode {
		item, err := d.enqueuer.Enqueue(ctx, req)
		if err != nil {
			return nil, err
		}
		return &SubmitResult{RequestRef: item.RequestRef, Queued: true, Status: item.Status}, nil
	}
	return d.executeInline(ctx, req)
}

// executeInline runs the operation synchronously against the tenant
// database. No queue row is written; the audit log still records the
// outcome under the request reference.
func (d *Dispatcher) executeInline(ctx context.Context, req EnqueueRequest) (*SubmitResult, error) {
	t, err := d.resolver.Resolve(ctx, req.TenantCode)
	if err != nil {
		return nil, err
	}
	db, err := d.pool.Get(ctx, t)
	if err != nil {
		return nil, err
	}
	store := NewGormStore(db)

	item := d.enqueuer.buildItem(req, t)
	log := logger.FromContext(ctx)

	handler, ok := d.registry.Resolve(item.OperationKey)
	if !ok {
		unknownErr := shared.NewUnknownOperationKeyError(item.OperationKey)
		d.appendLog(ctx, store, item, outbox.StatusFailed, unknownErr.Error(), log)
		return &SubmitResult{RequestRef: item.RequestRef, Status: outbox.StatusFailed}, unknownErr
	}

	if err := handler.Handle(ctx, db, item); err != nil {
		d.appendLog(ctx, store, item, outbox.StatusFailed, err.Error(), log)
		log.Warn("Inline operation failed",
			zap.String("tenant", t.Code),
			zap.String("request_ref", item.RequestRef),
			zap.String("operation_key", item.OperationKey),
			zap.Error(err))
		return &SubmitResult{RequestRef: item.RequestRef, Status: outbox.StatusFailed},
			shared.NewDomainError(shared.CodeHandlerFailure, err.Error())
	}

	d.appendLog(ctx, store, item, outbox.StatusSucceeded, "", log)
	return &SubmitResult{RequestRef: item.RequestRef, Status: outbox.StatusSucceeded}, nil
}

func (d *Dispatcher) appendLog(ctx context.Context, store *GormStore, item *outbox.QueueItem, status outbox.Status, message string, log *zap.Logger) {
	if err := store.AppendLog(ctx, outbox.NewLogEntry(item, status, message)); err != nil {
		log.Error("Failed to append audit log entry",
			zap.String("request_ref", item.RequestRef),
			zap.Error(err))
	}
}
