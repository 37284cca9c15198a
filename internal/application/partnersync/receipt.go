package partnersync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pms/backend/internal/domain/outbox"
	"github.com/pms/backend/internal/infrastructure/persistence/models"
)

// ReceiptPayload is the wire shape of a partner payment receipt
type ReceiptPayload struct {
	ExternalRef string          `json:"external_ref"`
	InvoiceRef  string          `json:"invoice_ref"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Method      string          `json:"method"`
	ReceivedAt  time.Time       `json:"received_at"`
}

// LedgerPoster posts accepted receipts onward to the accounting system.
// The queue core treats it as opaque; failures fail the attempt so posting
// is retried with the item.
type LedgerPoster interface {
	Post(ctx context.Context, receipt ReceiptPayload) error
}

// NopLedgerPoster discards postings, for tenants without accounting wiring
type NopLedgerPoster struct{}

// Post implements LedgerPoster
func (NopLedgerPoster) Post(ctx context.Context, receipt ReceiptPayload) error {
	return nil
}

// ReceiptHandler records partner payment receipts and forwards them to the
// ledger. The insert ignores conflicts on the external reference so a
// redelivered receipt is stored once while the ledger posting still runs;
// the poster is expected to be idempotent by reference.
type ReceiptHandler struct {
	ledger LedgerPoster
}

// NewReceiptHandler creates a receipt handler posting to the given ledger
func NewReceiptHandler(ledger LedgerPoster) *ReceiptHandler {
	if ledger == nil {
		ledger = NopLedgerPoster{}
	}
	return &ReceiptHandler{ledger: ledger}
}

// Handle implements the queue handler contract
func (h *ReceiptHandler) Handle(ctx context.Context, db *gorm.DB, item *outbox.QueueItem) error {
	var payload ReceiptPayload
	if err := json.Unmarshal(item.PayloadJSON, &payload); err != nil {
		return fmt.Errorf("invalid receipt payload: %w", err)
	}
	if payload.ExternalRef == "" {
		payload.ExternalRef = item.TargetID
	}
	if payload.ExternalRef == "" {
		return fmt.Errorf("receipt payload has no external reference")
	}
	if payload.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("receipt %q has non-positive amount %s", payload.ExternalRef, payload.Amount)
	}

	row := models.ReceiptModel{
		ExternalRef: payload.ExternalRef,
		Partner:     item.Partner,
		InvoiceRef:  payload.InvoiceRef,
		Amount:      payload.Amount,
		Currency:    payload.Currency,
		Method:      payload.Method,
		ReceivedAt:  payload.ReceivedAt,
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_ref"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return err
	}

	if err := h.ledger.Post(ctx, payload); err != nil {
		return fmt.Errorf("ledger posting for receipt %q failed: %w", payload.ExternalRef, err)
	}
	return nil
}
