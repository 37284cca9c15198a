package partnersync

import (
	"github.com/pms/backend/internal/infrastructure/queue"
)

// Operation keys dispatched by the queue. Matching is case-insensitive.
const (
	KeyReservationUpsert = "Reservation.Upsert"
	KeyReservationCancel = "Reservation.Cancel"
	KeyCustomerUpsert    = "Customer.Upsert"
	KeyInvoiceUpsert     = "Invoice.Upsert"
	KeyReceiptCreate     = "Receipt.Create"
	KeyRatePlanUpsert    = "RatePlan.Upsert"
)

// RegisterAll binds every partner operation handler into the registry
func RegisterAll(r *queue.Registry, ledger LedgerPoster) {
	r.MustRegister(KeyReservationUpsert, queue.HandlerFunc(UpsertReservation))
	r.MustRegister(KeyReservationCancel, queue.HandlerFunc(CancelReservation))
	r.MustRegister(KeyCustomerUpsert, queue.HandlerFunc(UpsertCustomer))
	r.MustRegister(KeyInvoiceUpsert, queue.HandlerFunc(UpsertInvoice))
	r.MustRegister(KeyReceiptCreate, NewReceiptHandler(ledger))
	r.MustRegister(KeyRatePlanUpsert, queue.HandlerFunc(UpsertRatePlan))
}
