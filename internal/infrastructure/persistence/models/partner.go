package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Partner-facing business tables written by operation handlers. Handlers
// upsert by the partner's external reference so redelivered items converge
// on the same row.

// ReservationModel mirrors a partner reservation in the tenant database
type ReservationModel struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	ExternalRef string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Partner     string          `gorm:"type:varchar(64);not null"`
	HotelID     string          `gorm:"type:varchar(64);index"`
	GuestName   string          `gorm:"type:varchar(255)"`
	RoomType    string          `gorm:"type:varchar(64)"`
	CheckIn     time.Time       `gorm:"not null"`
	CheckOut    time.Time       `gorm:"not null"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(18,4)"`
	Currency    string          `gorm:"type:varchar(3)"`
	Cancelled   bool            `gorm:"not null;default:false"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReservationModel) TableName() string {
	return "partner_reservations"
}

// CustomerModel mirrors a partner guest profile in the tenant database
type CustomerModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	ExternalRef string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Partner     string    `gorm:"type:varchar(64);not null"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Email       string    `gorm:"type:varchar(255)"`
	Phone       string    `gorm:"type:varchar(32)"`
	Country     string    `gorm:"type:varchar(2)"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "partner_customers"
}

// InvoiceModel mirrors a partner invoice in the tenant database
type InvoiceModel struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	ExternalRef string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Partner     string          `gorm:"type:varchar(64);not null"`
	HotelID     string          `gorm:"type:varchar(64);index"`
	CustomerRef string          `gorm:"type:varchar(64);index"`
	NetAmount   decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	TaxAmount   decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	GrossAmount decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	Currency    string          `gorm:"type:varchar(3);not null"`
	IssuedAt    time.Time       `gorm:"not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "partner_invoices"
}

// ReceiptModel records a partner payment receipt in the tenant database
type ReceiptModel struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	ExternalRef string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Partner     string          `gorm:"type:varchar(64);not null"`
	InvoiceRef  string          `gorm:"type:varchar(64);index"`
	Amount      decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	Currency    string          `gorm:"type:varchar(3);not null"`
	Method      string          `gorm:"type:varchar(32)"`
	ReceivedAt  time.Time       `gorm:"not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "partner_receipts"
}

// RatePlanModel mirrors a partner rate plan in the tenant database
type RatePlanModel struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	ExternalRef string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Partner     string          `gorm:"type:varchar(64);not null"`
	HotelID     string          `gorm:"type:varchar(64);index"`
	RoomType    string          `gorm:"type:varchar(64);not null"`
	Name        string          `gorm:"type:varchar(255)"`
	NightlyRate decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	Currency    string          `gorm:"type:varchar(3);not null"`
	ValidFrom   time.Time       `gorm:"not null"`
	ValidTo     time.Time       `gorm:"not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RatePlanModel) TableName() string {
	return "partner_rate_plans"
}

// TenantSchema lists the models provisioned in every tenant database
func TenantSchema() []any {
	return []any{
		&QueueItemModel{},
		&LogEntryModel{},
		&ReservationModel{},
		&CustomerModel{},
		&InvoiceModel{},
		&ReceiptModel{},
		&RatePlanModel{},
	}
}
