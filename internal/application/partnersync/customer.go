package partnersync

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pms/backend/internal/domain/outbox"
	"github.com/pms/backend/internal/infrastructure/persistence/models"
)

// CustomerPayload is the wire shape of a partner guest profile
type CustomerPayload struct {
	ExternalRef string `json:"external_ref"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Country     string `json:"country"`
}

// UpsertCustomer mirrors a partner guest profile into the tenant database
func UpsertCustomer(ctx context.Context, db *gorm.DB, item *outbox.QueueItem) error {
	var payload CustomerPayload
	if err := json.Unmarshal(item.PayloadJSON, &payload); err != nil {
		return fmt.Errorf("invalid customer payload: %w", err)
	}
	ref := externalRef(payload.ExternalRef, item)
	if ref == "" {
		return fmt.Errorf("customer payload has no external reference")
	}
	if payload.Name == "" {
		return fmt.Errorf("customer payload has no name")
	}

	row := models.CustomerModel{
		ExternalRef: ref,
		Partner:     item.Partner,
		Name:        payload.Name,
		Email:       payload.Email,
		Phone:       payload.Phone,
		Country:     payload.Country,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_ref"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"partner", "name", "email", "phone", "country", "updated_at",
		}),
	}).Create(&row).Error
}
