package repository

import (
	"context"
	"time"

	"shiporbit/internal/domain"
)

// InvoiceRepository defines the persistence operations for invoices.
// Implementations recompute TotalAmount = Amount + DriverAssistFee before
// every write; callers never set it directly.
type InvoiceRepository interface {
	// Create persists a new invoice. Returns ErrDuplicate if the shipment
	// already has one.
	Create(ctx context.Context, invoice *domain.Invoice) error

	// GetByID retrieves an invoice by id.
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)

	// GetByIDForUser retrieves an invoice by id, scoped to the owner of
	// its shipment.
	GetByIDForUser(ctx context.Context, id, userID string) (*domain.Invoice, error)

	// GetByShipmentID retrieves the invoice billing a shipment. Returns
	// ErrNotFound if none exists yet.
	GetByShipmentID(ctx context.Context, shipmentID string) (*domain.Invoice, error)

	// ListByUser returns invoices for shipments owned by the user, newest
	// first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Invoice, error)

	// MarkPaid sets the invoice to paid and stamps paid_at, unless it is
	// already paid. paid_at is therefore written exactly once.
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error

	// Delete removes an invoice. Used only to roll back an invoice created
	// within a failed payment attempt.
	Delete(ctx context.Context, id string) error
}
