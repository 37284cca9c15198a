package syncqueue

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pms/backend/internal/domain/outbox"
	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/domain/tenant"
	"github.com/pms/backend/internal/infrastructure/directory"
	"github.com/pms/backend/internal/infrastructure/queue"
)

// Service exposes the operational surface of the queue: effective settings,
// item listings, per-reference detail with the audit trail, status counts
// and manual retry. Every call resolves the tenant fresh so directory
// changes apply immediately.
type Service struct {
	resolver    *directory.Resolver
	pool        *directory.ConnectionPool
	defaults    tenant.QueueSettings
	maxAttempts int
	logger      *zap.Logger
}

// NewService creates a queue inspection service
func NewService(resolver *directory.Resolver, pool *directory.ConnectionPool, defaults tenant.QueueSettings, maxAttempts int, logger *zap.Logger) *Service {
	if maxAttempts <= 0 {
		maxAttempts = outbox.DefaultMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		resolver:    resolver,
		pool:        pool,
		defaults:    defaults,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// QueueItemDTO represents a queue item for API consumers
type QueueItemDTO struct {
	ID           int64     `json:"id"`
	RequestRef   string    `json:"request_ref"`
	Partner      string    `json:"partner"`
	Operation    string    `json:"operation"`
	OperationKey string    `json:"operation_key"`
	TargetID     string    `json:"target_id,omitempty"`
	PayloadType  string    `json:"payload_type,omitempty"`
	Status       string    `json:"status"`
	Attempts     int       `json:"attempts"`
	LastError    string    `json:"last_error,omitempty"`
	HotelID      string    `json:"hotel_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LogEntryDTO represents one audit record for API consumers
type LogEntryDTO struct {
	ID         int64     `json:"id"`
	RequestRef string    `json:"request_ref"`
	Partner    string    `json:"partner"`
	Operation  string    `json:"operation"`
	Status     string    `json:"status"`
	Message    string    `json:"message,omitempty"`
	HotelID    string    `json:"hotel_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ItemDetailDTO combines a queue item with its audit trail
type ItemDetailDTO struct {
	Item QueueItemDTO  `json:"item"`
	Log  []LogEntryDTO `json:"log"`
}

// ListFilter represents pagination for queue listings
type ListFilter struct {
	Page     int `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
}

// ListResult represents a paginated queue listing
type ListResult struct {
	Items      []QueueItemDTO `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// StatsDTO represents queue item counts per status
type StatsDTO struct {
	Queued     int64 `json:"queued"`
	Processing int64 `json:"processing"`
	Succeeded  int64 `json:"succeeded"`
	Failed     int64 `json:"failed"`
	Total      int64 `json:"total"`
}

// SettingsDTO represents the effective settings for one tenant
type SettingsDTO struct {
	TenantCode             string `json:"tenant_code"`
	EnableQueueMode        bool   `json:"enable_queue_mode"`
	EnableBackgroundWorker bool   `json:"enable_background_worker"`
	WorkerIntervalSeconds  int    `json:"worker_interval_seconds"`
	WorkerBatchSize        int    `json:"worker_batch_size"`
	UseMiddleware          bool   `json:"use_middleware"`
	DefaultPartner         string `json:"default_partner"`
	MaxAttempts            int    `json:"max_attempts"`
}

// Settings returns the effective settings for the resolved tenant
func (s *Service) Settings(ctx context.Context, tenantCode string) (*SettingsDTO, error) {
	t, err := s.resolver.Resolve(ctx, tenantCode)
	if err != nil {
		return nil, err
	}
	eff := s.defaults.Merge(t)
	return &SettingsDTO{
		TenantCode:             t.Code,
		EnableQueueMode:        eff.EnableQueueMode,
		EnableBackgroundWorker: eff.EnableBackgroundWorker,
		WorkerIntervalSeconds:  eff.WorkerIntervalSeconds,
		WorkerBatchSize:        eff.WorkerBatchSize,
		UseMiddleware:          eff.UseMiddleware,
		DefaultPartner:         eff.DefaultPartner,
		MaxAttempts:            s.maxAttempts,
	}, nil
}

// List returns a page of the resolved tenant's queue items, newest first
func (s *Service) List(ctx context.Context, tenantCode string, filter ListFilter) (*ListResult, error) {
	store, err := s.storeFor(ctx, tenantCode)
	if err != nil {
		return nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := store.List(ctx, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to list queue items", zap.Error(err))
		return nil, shared.NewDomainError(shared.CodePersistenceFailure, "Failed to retrieve queue items")
	}

	dtos := make([]QueueItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toItemDTO(item))
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &ListResult{
		Items:      dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// GetByRef returns one queue item and its audit trail
func (s *Service) GetByRef(ctx context.Context, tenantCode, requestRef string) (*ItemDetailDTO, error) {
	store, err := s.storeFor(ctx, tenantCode)
	if err != nil {
		return nil, err
	}

	item, err := store.FindByRequestRef(ctx, requestRef)
	if err != nil {
		return nil, err
	}
	entries, err := store.FindLogByRequestRef(ctx, requestRef)
	if err != nil {
		s.logger.Error("Failed to load audit trail", zap.String("request_ref", requestRef), zap.Error(err))
		return nil, shared.NewDomainError(shared.CodePersistenceFailure, "Failed to retrieve audit trail")
	}

	logDTOs := make([]LogEntryDTO, 0, len(entries))
	for _, e := range entries {
		logDTOs = append(logDTOs, toLogDTO(e))
	}
	return &ItemDetailDTO{Item: toItemDTO(item), Log: logDTOs}, nil
}

// Stats returns the resolved tenant's queue item counts per status
func (s *Service) Stats(ctx context.Context, tenantCode string) (*StatsDTO, error) {
	store, err := s.storeFor(ctx, tenantCode)
	if err != nil {
		return nil, err
	}

	counts, err := store.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to count queue items", zap.Error(err))
		return nil, shared.NewDomainError(shared.CodePersistenceFailure, "Failed to retrieve queue statistics")
	}

	stats := &StatsDTO{
		Queued:     counts[outbox.StatusQueued],
		Processing: counts[outbox.StatusProcessing],
		Succeeded:  counts[outbox.StatusSucceeded],
		Failed:     counts[outbox.StatusFailed],
	}
	stats.Total = stats.Queued + stats.Processing + stats.Succeeded + stats.Failed
	return stats, nil
}

// Retry re-arms a failed item so the worker selects it again. Only failed
// items can be retried; the attempts counter starts over.
func (s *Service) Retry(ctx context.Context, tenantCode, requestRef string) (*QueueItemDTO, error) {
	store, err := s.storeFor(ctx, tenantCode)
	if err != nil {
		return nil, err
	}

	item, err := store.FindByRequestRef(ctx, requestRef)
	if err != nil {
		return nil, err
	}
	if err := item.ResetForRetry(); err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, err.Error())
	}
	if err := store.Update(ctx, item); err != nil {
		s.logger.Error("Failed to re-arm queue item", zap.String("request_ref", requestRef), zap.Error(err))
		return nil, shared.NewDomainError(shared.CodePersistenceFailure, "Failed to update queue item")
	}

	s.logger.Info("Queue item re-armed for retry",
		zap.String("request_ref", requestRef))

	dto := toItemDTO(item)
	return &dto, nil
}

func (s *Service) storeFor(ctx context.Context, tenantCode string) (outbox.Store, error) {
	t, err := s.resolver.Resolve(ctx, tenantCode)
	if err != nil {
		return nil, err
	}
	db, err := s.pool.Get(ctx, t)
	if err != nil {
		return nil, err
	}
	return queue.NewGormStore(db), nil
}

func toItemDTO(item *outbox.QueueItem) QueueItemDTO {
	return QueueItemDTO{
		ID:           item.ID,
		RequestRef:   item.RequestRef,
		Partner:      item.Partner,
		Operation:    item.Operation,
		OperationKey: item.OperationKey,
		TargetID:     item.TargetID,
		PayloadType:  item.PayloadType,
		Status:       string(item.Status),
		Attempts:     item.Attempts,
		LastError:    item.LastError,
		HotelID:      item.HotelID,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

func toLogDTO(e *outbox.LogEntry) LogEntryDTO {
	return LogEntryDTO{
		ID:         e.ID,
		RequestRef: e.RequestRef,
		Partner:    e.Partner,
		Operation:  e.Operation,
		Status:     string(e.Status),
		Message:    e.Message,
		HotelID:    e.HotelID,
		CreatedAt:  e.CreatedAt,
	}
}
