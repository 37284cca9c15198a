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

// InvoicePayload is the wire shape of a partner invoice
type InvoicePayload struct {
	ExternalRef string          `json:"external_ref"`
	HotelID     string          `json:"hotel_id"`
	CustomerRef string          `json:"customer_ref"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	GrossAmount decimal.Decimal `json:"gross_amount"`
	Currency    string          `json:"currency"`
	IssuedAt    time.Time       `json:"issued_at"`
}

// UpsertInvoice mirrors a partner invoice into the tenant database. A
// missing gross amount is derived from net plus tax; a stated one must
// reconcile.
func UpsertInvoice(ctx context.Context, db *gorm.DB, item *outbox.QueueItem) error {
	var payload InvoicePayload
	if err := json.Unmarshal(item.PayloadJSON, &payload); err != nil {
		return fmt.Errorf("invalid invoice payload: %w", err)
	}
	ref := externalRef(payload.ExternalRef, item)
	if ref == "" {
		return fmt.Errorf("invoice payload has no external reference")
	}
	if payload.Currency == "" {
		return fmt.Errorf("invoice %q has no currency", ref)
	}

	gross := payload.GrossAmount
	expected := payload.NetAmount.Add(payload.TaxAmount)
	if gross.IsZero() {
		gross = expected
	} else if !gross.Equal(expected) {
		return fmt.Errorf("invoice %q gross %s does not reconcile with net %s + tax %s",
			ref, gross, payload.NetAmount, payload.TaxAmount)
	}

	row := models.InvoiceModel{
		ExternalRef: ref,
		Partner:     item.Partner,
		HotelID:     payload.HotelID,
		CustomerRef: payload.CustomerRef,
		NetAmount:   payload.NetAmount,
		TaxAmount:   payload.TaxAmount,
		GrossAmount: gross,
		Currency:    payload.Currency,
		IssuedAt:    payload.IssuedAt,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_ref"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"partner", "hotel_id", "customer_ref", "net_amount", "tax_amount",
			"gross_amount", "currency", "issued_at", "updated_at",
		}),
	}).Create(&row).Error
}
