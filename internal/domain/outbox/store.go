package outbox

import "context"

// Store defines persistence for one tenant's queue and log tables. Every
// implementation is scoped to a single tenant database; items never cross
// tenant boundaries.
type Store interface {
	// EnsureSchema provisions the queue and log tables. Idempotent and safe
	// to run on every use.
	EnsureSchema(ctx context.Context) error
	// Save persists a new queue item
	Save(ctx context.Context, item *QueueItem) error
	// FindEligible retrieves up to limit selectable items ordered by
	// creation time ascending, excluding terminal ones.
	FindEligible(ctx context.Context, limit, maxAttempts int) ([]*QueueItem, error)
	// FindByRequestRef retrieves a single item by its request reference
	FindByRequestRef(ctx context.Context, requestRef string) (*QueueItem, error)
	// Update persists the current state of an existing item
	Update(ctx context.Context, item *QueueItem) error
	// AppendLog appends one audit record; log rows are never mutated
	AppendLog(ctx context.Context, entry *LogEntry) error
	// FindLogByRequestRef retrieves the audit trail for a request reference
	FindLogByRequestRef(ctx context.Context, requestRef string) ([]*LogEntry, error)
	// List retrieves items with pagination, newest first
	List(ctx context.Context, page, pageSize int) ([]*QueueItem, int64, error)
	// CountByStatus returns item counts per status
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
