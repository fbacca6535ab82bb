package repository

import (
	"context"

	"shiporbit/internal/domain"
)

// ShipmentRepository defines the persistence operations for shipments.
type ShipmentRepository interface {
	// Create persists a new shipment.
	Create(ctx context.Context, shipment *domain.Shipment) error

	// GetByID retrieves a shipment by id.
	GetByID(ctx context.Context, id string) (*domain.Shipment, error)

	// GetByIDForUser retrieves a shipment by id, scoped to its owner.
	GetByIDForUser(ctx context.Context, id, userID string) (*domain.Shipment, error)

	// ListByUser returns the user's shipments, newest first, optionally
	// filtered by status (empty status means all).
	ListByUser(ctx context.Context, userID string, status domain.ShipmentStatus) ([]*domain.Shipment, error)

	// Update persists all mutable shipment fields.
	Update(ctx context.Context, shipment *domain.Shipment) error

	// Delete removes a shipment and, through cascades, its locations,
	// invoice, and status history.
	Delete(ctx context.Context, id string) error

	// MarkInProgress sets the shipment status to inprogress unless it
	// already is. Returns whether the status actually changed; the guard
	// makes replays from concurrent payment reconciliation paths no-ops.
	MarkInProgress(ctx context.Context, id string) (bool, error)

	// CountByStatus returns the number of the user's shipments per status.
	CountByStatus(ctx context.Context, userID string) (map[domain.ShipmentStatus]int, error)
}

// LocationRepository defines the persistence operations for shipment stops.
type LocationRepository interface {
	// Create persists a new location.
	Create(ctx context.Context, location *domain.Location) error

	// GetByShipment returns both stops for a shipment.
	GetByShipment(ctx context.Context, shipmentID string) ([]*domain.Location, error)

	// Update persists all mutable location fields for the shipment's stop
	// of the given type.
	Update(ctx context.Context, location *domain.Location) error
}

// StatusHistoryRepository records shipment status transitions.
type StatusHistoryRepository interface {
	// Create appends a status change record.
	Create(ctx context.Context, change *domain.StatusChange) error

	// ListByShipment returns a shipment's status changes, newest first.
	ListByShipment(ctx context.Context, shipmentID string) ([]*domain.StatusChange, error)
}
