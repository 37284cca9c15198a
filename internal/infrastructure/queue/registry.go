package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/pms/backend/internal/domain/outbox"
)

// Handler executes one partner operation against the tenant's database.
// Handlers must be idempotent under redelivery; the same item may be handed
// to them more than once.
type Handler interface {
	Handle(ctx context.Context, db *gorm.DB, item *outbox.QueueItem) error
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc func(ctx context.Context, db *gorm.DB, item *outbox.QueueItem) error

// Handle implements Handler
func (f HandlerFunc) Handle(ctx context.Context, db *gorm.DB, item *outbox.QueueItem) error {
	return f(ctx, db, item)
}

// Registry maps operation keys to handlers. Keys are matched
// case-insensitively; registration happens at startup, resolution at
// dispatch time.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds a handler to an operation key. Registering an already
// bound key is a programming error and rejected.
func (r *Registry) Register(key string, h Handler) error {
	normalized := normalizeKey(key)
	if normalized == "" {
		return fmt.Errorf("cannot register handler for empty operation key")
	}
	if h == nil {
		return fmt.Errorf("cannot register nil handler for key %q", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[normalized]; exists {
		return fmt.Errorf("handler already registered for key %q", key)
	}
	r.handlers[normalized] = h
	return nil
}

// MustRegister is Register that panics on error, for startup wiring
func (r *Registry) MustRegister(key string, h Handler) {
	if err := r.Register(key, h); err != nil {
		panic(err)
	}
}

// Resolve returns the handler bound to the key, if any
func (r *Registry) Resolve(key string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[normalizeKey(key)]
	return h, ok
}

// Keys returns the registered operation keys in normalized form
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		keys = append(keys, k)
	}
	return keys
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
