package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the current status of a payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending        PaymentStatus = "pending"
	PaymentStatusProcessing     PaymentStatus = "processing"
	PaymentStatusSucceeded      PaymentStatus = "succeeded"
	PaymentStatusFailed         PaymentStatus = "failed"
	PaymentStatusCancelled      PaymentStatus = "cancelled"
	PaymentStatusRequiresAction PaymentStatus = "requires_action"
)

// Terminal reports whether the status admits no further transitions.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSucceeded || s == PaymentStatusFailed || s == PaymentStatusCancelled
}

// Payment is a single charge attempt against an invoice. An invoice may
// accumulate several payments across retries; the processor intent id is
// unique per payment. After creation only Status and FailureReason change.
type Payment struct {
	ID                string
	InvoiceID         string
	ProcessorIntentID string
	ProcessorMethodID string
	Amount            decimal.Decimal
	Status            PaymentStatus
	FailureReason     string
	ClientSecret      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
