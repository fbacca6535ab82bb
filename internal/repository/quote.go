package repository

import (
	"context"

	"shiporbit/internal/domain"
)

// RouteQuoteRepository defines the persistence operations for the route
// quote cache. Entries are written once per (pickup, dropoff, equipment)
// key and never updated or evicted.
type RouteQuoteRepository interface {
	// GetByRoute retrieves the cache entry for a directional route and
	// equipment type. Returns ErrNotFound on a cache miss.
	GetByRoute(ctx context.Context, pickupCityID, dropoffCityID int64, equipment domain.Equipment) (*domain.RouteQuote, error)

	// Create inserts a new cache entry. Returns ErrDuplicate when the key
	// is already present; the caller should re-read the winning row.
	Create(ctx context.Context, quote *domain.RouteQuote) error

	// ListRecent returns the most recently created cache entries, newest
	// first, up to limit.
	ListRecent(ctx context.Context, limit int) ([]*domain.RouteQuote, error)
}
