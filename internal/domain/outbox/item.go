package outbox

import (
	"errors"
	"time"
)

// Status represents the lifecycle state of a queue item
type Status string

const (
	StatusQueued     Status = "QUEUED"
	StatusProcessing Status = "PROCESSING"
	StatusSucceeded  Status = "SUCCEEDED"
	StatusFailed     Status = "FAILED"
)

// Default processing limits
const (
	DefaultMaxAttempts = 5
	MaxErrorLength     = 2000
)

// QueueItem is one durable unit of deferred partner work, owned exclusively
// by a single tenant's data store. The operation key is the sole dispatch
// contract between the enqueue path and the worker; once set it never changes.
type QueueItem struct {
	ID           int64
	RequestRef   string
	Partner      string
	Operation    string
	OperationKey string
	TargetID     string
	PayloadType  string
	PayloadJSON  []byte
	Status       Status
	Attempts     int
	LastError    string
	HotelID      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewQueueItem creates a queue item in its initial state
func NewQueueItem(requestRef, partner, operation, operationKey string, payload []byte) *QueueItem {
	now := time.Now()
	return &QueueItem{
		RequestRef:   requestRef,
		Partner:      partner,
		Operation:    operation,
		OperationKey: operationKey,
		PayloadJSON:  payload,
		Status:       StatusQueued,
		Attempts:     0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Eligible reports whether the item may still be selected for a batch.
// Succeeded items are terminal; failed items are terminal once the attempts
// ceiling is reached. Processing items remain eligible because a row seen in
// that state at selection time was abandoned by a crashed pass.
func (i *QueueItem) Eligible(maxAttempts int) bool {
	if i.Status == StatusSucceeded {
		return false
	}
	if i.Status == StatusFailed && i.Attempts >= maxAttempts {
		return false
	}
	return true
}

// Exhausted reports whether the item failed and reached the attempts ceiling
func (i *QueueItem) Exhausted(maxAttempts int) bool {
	return i.Status == StatusFailed && i.Attempts >= maxAttempts
}

// MarkProcessing transitions the item to Processing and counts the attempt.
// The transition must be persisted before the handler runs.
func (i *QueueItem) MarkProcessing() error {
	if i.Status == StatusSucceeded {
		return errors.New("cannot process a succeeded item")
	}
	i.Status = StatusProcessing
	i.Attempts++
	i.UpdatedAt = time.Now()
	return nil
}

// MarkSucceeded transitions the item to its terminal success state
func (i *QueueItem) MarkSucceeded() {
	i.Status = StatusSucceeded
	i.LastError = ""
	i.UpdatedAt = time.Now()
}

// MarkFailed records the failure text, truncated to a bounded length
func (i *QueueItem) MarkFailed(errMsg string) {
	i.Status = StatusFailed
	i.LastError = TruncateError(errMsg)
	i.UpdatedAt = time.Now()
}

// ResetForRetry re-arms a failed item so the worker selects it again.
// Used by the manual retry endpoint on exhausted items.
func (i *QueueItem) ResetForRetry() error {
	if i.Status != StatusFailed {
		return errors.New("can only retry failed items")
	}
	i.Status = StatusQueued
	i.Attempts = 0
	i.UpdatedAt = time.Now()
	return nil
}

// TruncateError bounds handler error text before it is persisted
func TruncateError(msg string) string {
	if len(msg) > MaxErrorLength {
		return msg[:MaxErrorLength]
	}
	return msg
}

// LogEntry is one append-only record of a terminal attempt outcome. Entries
// are never updated or deleted; they exist for audit and troubleshooting and
// are independent of the queue item's current state.
type LogEntry struct {
	ID         int64
	RequestRef string
	Partner    string
	Operation  string
	Status     Status
	Message    string
	HotelID    string
	CreatedAt  time.Time
}

// NewLogEntry creates an audit record for one attempt outcome of an item
func NewLogEntry(item *QueueItem, status Status, message string) *LogEntry {
	return &LogEntry{
		RequestRef: item.RequestRef,
		Partner:    item.Partner,
		Operation:  item.Operation,
		Status:     status,
		Message:    TruncateError(message),
		HotelID:    item.HotelID,
		CreatedAt:  time.Now(),
	}
}
