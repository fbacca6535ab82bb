package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the current status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusFailed    InvoiceStatus = "failed"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice bills a shipment. There is exactly one invoice per shipment and
// it is removed together with it. TotalAmount is always recomputed as
// Amount + DriverAssistFee whenever the invoice is persisted.
type Invoice struct {
	ID              string
	ShipmentID      string
	InvoiceNumber   string
	Status          InvoiceStatus
	Amount          decimal.Decimal
	DriverAssistFee decimal.Decimal
	TotalAmount     decimal.Decimal
	CreatedAt       time.Time
	PaidAt          time.Time // zero until the invoice transitions to paid
}
