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

// RatePlanPayload is the wire shape of a partner rate plan
type RatePlanPayload struct {
	ExternalRef string          `json:"external_ref"`
	HotelID     string          `json:"hotel_id"`
	RoomType    string          `json:"room_type"`
	Name        string          `json:"name"`
	NightlyRate decimal.Decimal `json:"nightly_rate"`
	Currency    string          `json:"currency"`
	ValidFrom   time.Time       `json:"valid_from"`
	ValidTo     time.Time       `json:"valid_to"`
}

// UpsertRatePlan mirrors a partner rate plan into the tenant database
func UpsertRatePlan(ctx context.Context, db *gorm.DB, item *outbox.QueueItem) error {
	var payload RatePlanPayload
	if err := json.Unmarshal(item.PayloadJSON, &payload); err != nil {
		return fmt.Errorf("invalid rate plan payload: %w", err)
	}
	ref := externalRef(payload.ExternalRef, item)
	if ref == "" {
		return fmt.Errorf("rate plan payload has no external reference")
	}
	if payload.RoomType == "" {
		return fmt.Errorf("rate plan %q has no room type", ref)
	}
	if !payload.ValidTo.After(payload.ValidFrom) {
		return fmt.Errorf("rate plan %q validity window is empty", ref)
	}

	row := models.RatePlanModel{
		ExternalRef: ref,
		Partner:     item.Partner,
		HotelID:     payload.HotelID,
		RoomType:    payload.RoomType,
		Name:        payload.Name,
		NightlyRate: payload.NightlyRate,
		Currency:    payload.Currency,
		ValidFrom:   payload.ValidFrom,
		ValidTo:     payload.ValidTo,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_ref"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"partner", "hotel_id", "room_type", "name", "nightly_rate",
			"currency", "valid_from", "valid_to", "updated_at",
		}),
	}).Create(&row).Error
}
