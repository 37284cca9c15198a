package shared

import (
	"context"
	"time"
)

// DedupStore remembers request references that completed successfully so the
// worker can suppress a second execution of the same unit of work. Delivery is
// at-least-once; this store narrows, but does not close, the duplicate window.
type DedupStore interface {
	// MarkProcessed records a request reference with a TTL.
	// Returns true if the reference was newly recorded, false if it was
	// already present.
	MarkProcessed(ctx context.Context, tenantCode, requestRef string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether a request reference was already recorded.
	IsProcessed(ctx context.Context, tenantCode, requestRef string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// DedupConfig holds configuration for duplicate suppression
type DedupConfig struct {
	// TTL is the time-to-live for recorded request references.
	// After this duration the same reference may be processed again.
	// Default: 24 hours
	TTL time.Duration

	// Enabled determines whether duplicate suppression is enabled.
	// Default: false, matching the handler-level-upserts-only design.
	Enabled bool
}

// DefaultDedupConfig returns the default duplicate-suppression configuration
func DefaultDedupConfig() DedupConfig {
	return DedupConfig{
		TTL:     24 * time.Hour,
		Enabled: false,
	}
}
