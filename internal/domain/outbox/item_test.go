package outbox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueueItem(t *testing.T) {
	item := NewQueueItem("ref-1", "channelmgr", "reservations/create", "Reservation.Create", []byte(`{"a":1}`))

	assert.Equal(t, StatusQueued, item.Status)
	assert.Equal(t, 0, item.Attempts)
	assert.Equal(t, "ref-1", item.RequestRef)
	assert.Equal(t, "Reservation.Create", item.OperationKey)
	assert.Empty(t, item.LastError)
}

func TestQueueItem_MarkProcessing(t *testing.T) {
	item := NewQueueItem("ref-1", "p", "op", "K", nil)

	require.NoError(t, item.MarkProcessing())
	assert.Equal(t, StatusProcessing, item.Status)
	assert.Equal(t, 1, item.Attempts)

	// a failed item can be re-pulled
	item.MarkFailed("boom")
	require.NoError(t, item.MarkProcessing())
	assert.Equal(t, 2, item.Attempts)
}

func TestQueueItem_MarkProcessing_Succeeded(t *testing.T) {
	item := NewQueueItem("ref-1", "p", "op", "K", nil)
	item.MarkSucceeded()

	err := item.MarkProcessing()
	assert.Error(t, err)
}

func TestQueueItem_MarkSucceeded_ClearsError(t *testing.T) {
	item := NewQueueItem("ref-1", "p", "op", "K", nil)
	item.MarkFailed("transient")
	item.MarkSucceeded()

	assert.Equal(t, StatusSucceeded, item.Status)
	assert.Empty(t, item.LastError)
}

func TestQueueItem_MarkFailed_Truncates(t *testing.T) {
	item := NewQueueItem("ref-1", "p", "op", "K", nil)
	item.MarkFailed(strings.Repeat("x", MaxErrorLength+500))

	assert.Equal(t, StatusFailed, item.Status)
	assert.Len(t, item.LastError, MaxErrorLength)
}

func TestQueueItem_Eligible(t *testing.T) {
	item := NewQueueItem("ref-1", "p", "op", "K", nil)
	assert.True(t, item.Eligible(DefaultMaxAttempts))

	// stuck processing rows stay selectable
	require.NoError(t, item.MarkProcessing())
	assert.True(t, item.Eligible(DefaultMaxAttempts))

	// failed below the ceiling stays selectable
	item.MarkFailed("boom")
	assert.True(t, item.Eligible(DefaultMaxAttempts))

	// failed at the ceiling is excluded forever
	for item.Attempts < DefaultMaxAttempts {
		require.NoError(t, item.MarkProcessing())
		item.MarkFailed("boom")
	}
	assert.False(t, item.Eligible(DefaultMaxAttempts))
	assert.True(t, item.Exhausted(DefaultMaxAttempts))

	item.MarkSucceeded()
	assert.False(t, item.Eligible(DefaultMaxAttempts))
}

func TestQueueItem_ResetForRetry(t *testing.T) {
	item := NewQueueItem("ref-1", "p", "op", "K", nil)

	err := item.ResetForRetry()
	assert.Error(t, err, "only failed items can be re-armed")

	require.NoError(t, item.MarkProcessing())
	item.MarkFailed("boom")

	require.NoError(t, item.ResetForRetry())
	assert.Equal(t, StatusQueued, item.Status)
	assert.Equal(t, 0, item.Attempts)
}

func TestNewLogEntry(t *testing.T) {
	item := NewQueueItem("ref-9", "channelmgr", "invoices/update", "Invoice.Upsert", nil)
	item.HotelID = "H42"

	entry := NewLogEntry(item, StatusFailed, "timeout")

	assert.Equal(t, "ref-9", entry.RequestRef)
	assert.Equal(t, "channelmgr", entry.Partner)
	assert.Equal(t, StatusFailed, entry.Status)
	assert.Equal(t, "timeout", entry.Message)
	assert.Equal(t, "H42", entry.HotelID)
}
