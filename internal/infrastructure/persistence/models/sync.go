package models

import (
	"time"

	"github.com/pms/backend/internal/domain/outbox"
)

// QueueItemModel is the persistence model for deferred partner operations.
// One row per accepted request; the table lives in each tenant's database.
type QueueItemModel struct {
	ID           int64         `gorm:"primaryKey;autoIncrement"`
	RequestRef   string        `gorm:"type:varchar(64);not null;uniqueIndex"`
	Partner      string        `gorm:"type:varchar(64);not null"`
	Operation    string        `gorm:"type:varchar(255);not null"`
	OperationKey string        `gorm:"type:varchar(255);not null;index"`
	TargetID     string        `gorm:"type:varchar(64)"`
	PayloadType  string        `gorm:"type:varchar(255)"`
	PayloadJSON  []byte        `gorm:"type:jsonb"`
	Status       outbox.Status `gorm:"type:varchar(20);not null;default:QUEUED;index:idx_sync_queue_status_created,priority:1"`
	Attempts     int           `gorm:"not null;default:0"`
	LastError    string        `gorm:"type:varchar(2000)"`
	HotelID      string        `gorm:"type:varchar(64);index"`
	CreatedAt    time.Time     `gorm:"not null;index:idx_sync_queue_status_created,priority:2"`
	UpdatedAt    time.Time     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (QueueItemModel) TableName() string {
	return "sync_queue_items"
}

// ToDomain converts the persistence model to a domain QueueItem
func (m *QueueItemModel) ToDomain() *outbox.QueueItem {
	return &outbox.QueueItem{
		ID:           m.ID,
		RequestRef:   m.RequestRef,
		Partner:      m.Partner,
		Operation:    m.Operation,
		OperationKey: m.OperationKey,
		TargetID:     m.TargetID,
		PayloadType:  m.PayloadType,
		PayloadJSON:  m.PayloadJSON,
		Status:       m.Status,
		Attempts:     m.Attempts,
		LastError:    m.LastError,
		HotelID:      m.HotelID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain QueueItem
func (m *QueueItemModel) FromDomain(i *outbox.QueueItem) {
	m.ID = i.ID
	m.RequestRef = i.RequestRef
	m.Partner = i.Partner
	m.Operation = i.Operation
	m.OperationKey = i.OperationKey
	m.TargetID = i.TargetID
	m.PayloadType = i.PayloadType
	m.PayloadJSON = i.PayloadJSON
	m.Status = i.Status
	m.Attempts = i.Attempts
	m.LastError = i.LastError
	m.HotelID = i.HotelID
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// QueueItemModelFromDomain creates a new persistence model from a domain QueueItem
func QueueItemModelFromDomain(i *outbox.QueueItem) *QueueItemModel {
	m := &QueueItemModel{}
	m.FromDomain(i)
	return m
}

// LogEntryModel is the append-only audit record for attempt outcomes.
// Rows are inserted and read, never updated or deleted.
type LogEntryModel struct {
	ID         int64         `gorm:"primaryKey;autoIncrement"`
	RequestRef string        `gorm:"type:varchar(64);not null;index"`
	Partner    string        `gorm:"type:varchar(64);not null"`
	Operation  string        `gorm:"type:varchar(255);not null"`
	Status     outbox.Status `gorm:"type:varchar(20);not null"`
	Message    string        `gorm:"type:varchar(2000)"`
	HotelID    string        `gorm:"type:varchar(64)"`
	CreatedAt  time.Time     `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (LogEntryModel) TableName() string {
	return "sync_log_entries"
}

// ToDomain converts the persistence model to a domain LogEntry
func (m *LogEntryModel) ToDomain() *outbox.LogEntry {
	return &outbox.LogEntry{
		ID:         m.ID,
		RequestRef: m.RequestRef,
		Partner:    m.Partner,
		Operation:  m.Operation,
		Status:     m.Status,
		Message:    m.Message,
		HotelID:    m.HotelID,
		CreatedAt:  m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain LogEntry
func (m *LogEntryModel) FromDomain(e *outbox.LogEntry) {
	m.ID = e.ID
	m.RequestRef = e.RequestRef
	m.Partner = e.Partner
	m.Operation = e.Operation
	m.Status = e.Status
	m.Message = e.Message
	m.HotelID = e.HotelID
	m.CreatedAt = e.CreatedAt
}

// LogEntryModelFromDomain creates a new persistence model from a domain LogEntry
func LogEntryModelFromDomain(e *outbox.LogEntry) *LogEntryModel {
	m := &LogEntryModel{}
	m.FromDomain(e)
	return m
}
