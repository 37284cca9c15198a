package queue

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pms/backend/internal/domain/outbox"
	"github.com/pms/backend/internal/domain/tenant"
	"github.com/pms/backend/internal/infrastructure/directory"
	"github.com/pms/backend/internal/infrastructure/logger"
)

// EnqueueRequest describes one unit of deferred partner work to accept.
// TenantCode may be empty when the ambient request context carries one.
// RequestRef may be empty; a reference is generated then. Partner falls back
// to the tenant's effective default partner.
type EnqueueRequest struct {
	TenantCode   string
	RequestRef   string
	Partner      string
	Operation    string
	OperationKey string
	TargetID     string
	PayloadType  string
	Payload      []byte
	HotelID      string
}

// Enqueuer accepts queue items into the resolved tenant's queue table.
// Acceptance is deliberately permissive: an item with an unknown or empty
// operation key is stored as-is and fails at dispatch, where the failure is
// recorded durably instead of being lost at the door.
type Enqueuer struct {
	resolver *directory.Resolver
	pool     *directory.ConnectionPool
	defaults tenant.QueueSettings
}

// NewEnqueuer creates an enqueuer over the given resolver and pool
func NewEnqueuer(resolver *directory.Resolver, pool *directory.ConnectionPool, defaults tenant.QueueSettings) *Enqueuer {
	return &Enqueuer{resolver: resolver, pool: pool, defaults: defaults}
}

// Enqueue persists a new queue item for the resolved tenant and returns it
func (e *Enqueuer) Enqueue(ctx context.Context, req EnqueueRequest) (*outbox.QueueItem, error) {
	t, err := e.resolver.Resolve(ctx, req.TenantCode)
	if err != nil {
		return nil, err
	}

	item := e.buildItem(req, t)

	db, err := e.pool.Get(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := NewGormStore(db).Save(ctx, item); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Queue item accepted",
		zap.String("tenant", t.Code),
		zap.String("request_ref", item.RequestRef),
		zap.String("operation_key", item.OperationKey),
		zap.String("partner", item.Partner))

	return item, nil
}

// buildItem materialises a queue item from a request, applying the tenant's
// effective defaults for partner and generating a reference when absent
func (e *Enqueuer) buildItem(req EnqueueRequest, t *tenant.Tenant) *outbox.QueueItem {
	settings := e.defaults.Merge(t)

	partner := req.Partner
	if partner == "" {
		partner = settings.DefaultPartner
	}
	requestRef := req.RequestRef
	if requestRef == "" {
		requestRef = uuid.NewString()
	}

	item := outbox.NewQueueItem(requestRef, partner, req.Operation, req.OperationKey, req.Payload)
	item.TargetID = req.TargetID
	item.PayloadType = req.PayloadType
	item.HotelID = req.HotelID
	return item
}

// SettingsFor returns the effective queue settings for the resolved tenant,
// merged fresh on every call
func (e *Enqueuer) SettingsFor(ctx context.Context, tenantCode string) (tenant.QueueSettings, error) {
	t, err := e.resolver.Resolve(ctx, tenantCode)
	if err != nil {
		return tenant.QueueSettings{}, err
	}
	return e.defaults.Merge(t), nil
}
