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

// ReservationPayload is the wire shape of a partner reservation
type ReservationPayload struct {
	ExternalRef string          `json:"external_ref"`
	HotelID     string          `json:"hotel_id"`
	GuestName   string          `json:"guest_name"`
	RoomType    string          `json:"room_type"`
	CheckIn     time.Time       `json:"check_in"`
	CheckOut    time.Time       `json:"check_out"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
}

// UpsertReservation mirrors a partner reservation into the tenant database.
// The external reference keys the upsert, so redelivering the same item
// converges on one row.
func UpsertReservation(ctx context.Context, db *gorm.DB, item *outbox.QueueItem) error {
	var payload ReservationPayload
	if err := json.Unmarshal(item.PayloadJSON, &payload); err != nil {
		return fmt.Errorf("invalid reservation payload: %w", err)
	}
	ref := externalRef(payload.ExternalRef, item)
	if ref == "" {
		return fmt.Errorf("reservation payload has no external reference")
	}

	row := models.ReservationModel{
		ExternalRef: ref,
		Partner:     item.Partner,
		HotelID:     payload.HotelID,
		GuestName:   payload.GuestName,
		RoomType:    payload.RoomType,
		CheckIn:     payload.CheckIn,
		CheckOut:    payload.CheckOut,
		TotalAmount: payload.TotalAmount,
		Currency:    payload.Currency,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_ref"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"partner", "hotel_id", "guest_name", "room_type",
			"check_in", "check_out", "total_amount", "currency", "updated_at",
		}),
	}).Create(&row).Error
}

// CancelReservation flags an existing reservation as cancelled. Cancelling
// an already cancelled reservation is a no-op; a reservation that never
// arrived is an error so the attempt is retried after the create lands.
func CancelReservation(ctx context.Context, db *gorm.DB, item *outbox.QueueItem) error {
	ref := externalRef("", item)
	if ref == "" {
		return fmt.Errorf("cancel request has no target reservation")
	}

	result := db.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Where("external_ref = ?", ref).
		Update("cancelled", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("reservation %q not found", ref)
	}
	return nil
}

// externalRef prefers the payload's own reference and falls back to the
// queue item's target id
func externalRef(payloadRef string, item *outbox.QueueItem) string {
	if payloadRef != "" {
		return payloadRef
	}
	return item.TargetID
}
