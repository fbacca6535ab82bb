package repository

import (
	"context"

	"shiporbit/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment attempt.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByIntentID retrieves a payment by its processor intent id.
	GetByIntentID(ctx context.Context, intentID string) (*domain.Payment, error)

	// GetByIntentIDForUser retrieves a payment by processor intent id,
	// scoped to the owner of the invoiced shipment.
	GetByIntentIDForUser(ctx context.Context, intentID, userID string) (*domain.Payment, error)

	// ListByUser returns payments for the user's invoices, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Payment, error)

	// UpdateStatus moves a payment to a new status with an optional failure
	// reason. Payments already in a terminal status are left untouched.
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus, failureReason string) error

	// MarkSucceeded sets the payment to succeeded unless it already failed
	// or was cancelled. Returns false when the payment was terminal in a
	// non-succeeded state and nothing changed.
	MarkSucceeded(ctx context.Context, id string) (bool, error)
}

// UserRepository defines the persistence operations this service needs for
// shipper accounts.
type UserRepository interface {
	// GetByID retrieves a user by id.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// UpdateProcessorCustomerID caches the processor customer id on the
	// user after lazy creation.
	UpdateProcessorCustomerID(ctx context.Context, id, customerID string) error
}
