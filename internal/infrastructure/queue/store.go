package queue

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pms/backend/internal/domain/outbox"
	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/infrastructure/persistence/models"
)

// GormStore persists one tenant's queue and log tables. A store wraps the
// tenant's own database handle; nothing here can reach another tenant's rows.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over the given tenant database
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// EnsureSchema provisions the queue and log tables. AutoMigrate only adds
// what is missing, so running it repeatedly is safe.
func (s *GormStore) EnsureSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.QueueItemModel{}, &models.LogEntryModel{}); err != nil {
		return fmt.Errorf("failed to provision queue schema: %w", err)
	}
	return nil
}

// Save persists a new queue item and backfills its generated id
func (s *GormStore) Save(ctx context.Context, item *outbox.QueueItem) error {
	model := models.QueueItemModelFromDomain(item)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save queue item %q: %w", item.RequestRef, err)
	}
	item.ID = model.ID
	return nil
}

// FindEligible retrieves up to limit selectable items, oldest first.
// Succeeded items and failed items at the attempts ceiling are excluded;
// items seen in Processing were abandoned by a crashed pass and stay
// selectable.
func (s *GormStore) FindEligible(ctx context.Context, limit, maxAttempts int) ([]*outbox.QueueItem, error) {
	var rows []models.QueueItemModel
	err := s.db.WithContext(ctx).
		Where("status <> ?", outbox.StatusSucceeded).
		Where("status <> ? OR attempts < ?", outbox.StatusFailed, maxAttempts).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find eligible queue items: %w", err)
	}
	return toDomainItems(rows), nil
}

// FindByRequestRef retrieves a single item by its request reference
func (s *GormStore) FindByRequestRef(ctx context.Context, requestRef string) (*outbox.QueueItem, error) {
	var model models.QueueItemModel
	err := s.db.WithContext(ctx).Where("request_ref = ?", requestRef).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find queue item %q: %w", requestRef, err)
	}
	return model.ToDomain(), nil
}

// Update persists the current state of an existing item
func (s *GormStore) Update(ctx context.Context, item *outbox.QueueItem) error {
	model := models.QueueItemModelFromDomain(item)
	if err := s.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to update queue item %q: %w", item.RequestRef, err)
	}
	return nil
}

// AppendLog appends one audit record
func (s *GormStore) AppendLog(ctx context.Context, entry *outbox.LogEntry) error {
	model := models.LogEntryModelFromDomain(entry)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append log entry for %q: %w", entry.RequestRef, err)
	}
	entry.ID = model.ID
	return nil
}

// FindLogByRequestRef retrieves the audit trail for a request reference,
// oldest first
func (s *GormStore) FindLogByRequestRef(ctx context.Context, requestRef string) ([]*outbox.LogEntry, error) {
	var rows []models.LogEntryModel
	err := s.db.WithContext(ctx).
		Where("request_ref = ?", requestRef).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find log entries for %q: %w", requestRef, err)
	}

	entries := make([]*outbox.LogEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].ToDomain())
	}
	return entries, nil
}

// List retrieves items with pagination, newest first
func (s *GormStore) List(ctx context.Context, page, pageSize int) ([]*outbox.QueueItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.QueueItemModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count queue items: %w", err)
	}

	var rows []models.QueueItemModel
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list queue items: %w", err)
	}
	return toDomainItems(rows), total, nil
}

// CountByStatus returns item counts per status
func (s *GormStore) CountByStatus(ctx context.Context) (map[outbox.Status]int64, error) {
	type row struct {
		Status outbox.Status
		Total  int64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&models.QueueItemModel{}).
		Select("status, count(*) as total").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count queue items by status: %w", err)
	}

	counts := make(map[outbox.Status]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

func toDomainItems(rows []models.QueueItemModel) []*outbox.QueueItem {
	items := make([]*outbox.QueueItem, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].ToDomain())
	}
	return items
}

var _ outbox.Store = (*GormStore)(nil)
