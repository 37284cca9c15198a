package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pms/backend/internal/domain/outbox"
)

func noopHandler() Handler {
	return HandlerFunc(func(ctx context.Context, db *gorm.DB, item *outbox.QueueItem) error {
		return nil
	})
}

func TestRegistry_CaseInsensitiveResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("Reservation.Upsert", noopHandler()))

	for _, key := range []string{"reservation.upsert", "RESERVATION.UPSERT", " Reservation.Upsert "} {
		_, ok := r.Resolve(key)
		assert.True(t, ok, key)
	}
}

func TestRegistry_UnknownKey(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Resolve("ghost")
	assert.False(t, ok)

	_, ok = r.Resolve("")
	assert.False(t, ok)
}

func TestRegistry_RejectsDuplicateAndEmpty(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("K", noopHandler()))

	assert.Error(t, r.Register("k", noopHandler()), "duplicate differs only by case")
	assert.Error(t, r.Register("", noopHandler()))
	assert.Error(t, r.Register("other", nil))
}
