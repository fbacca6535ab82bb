package postgres

import (
	"context"
	"database/sql"
	"errors"

	"shiporbit/internal/domain"
	"shiporbit/internal/repository"
)

// RouteQuoteRepository is a PostgreSQL implementation of
// repository.RouteQuoteRepository.
type RouteQuoteRepository struct {
	q Querier
}

// NewRouteQuoteRepository creates a new PostgreSQL route quote repository.
func NewRouteQuoteRepository(db *sql.DB) *RouteQuoteRepository {
	return &RouteQuoteRepository{q: db}
}

// GetByRoute retrieves the cache entry for a directional route and
// equipment type.
func (r *RouteQuoteRepository) GetByRoute(ctx context.Context, pickupCityID, dropoffCityID int64, equipment domain.Equipment) (*domain.RouteQuote, error) {
	query := `
		SELECT id, pickup_city_id, dropoff_city_id, equipment, miles, base_price, min_transit_time, created_at
		FROM route_quotes
		WHERE pickup_city_id = $1 AND dropoff_city_id = $2 AND equipment = $3
	`

	var quote domain.RouteQuote
	err := r.q.QueryRowContext(ctx, query, pickupCityID, dropoffCityID, equipment).Scan(
		&quote.ID,
		&quote.PickupCityID,
		&quote.DropoffCityID,
		&quote.Equipment,
		&quote.Miles,
		&quote.BasePrice,
		&quote.MinTransitTime,
		&quote.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &quote, nil
}

// Create inserts a new cache entry. The unique route key enforces the
// write-once invariant; losing a concurrent insert surfaces as ErrDuplicate
// so the caller can fall back to re-reading the winning row.
func (r *RouteQuoteRepository) Create(ctx context.Context, quote *domain.RouteQuote) error {
	query := `
		INSERT INTO route_quotes (pickup_city_id, dropoff_city_id, equipment, miles, base_price, min_transit_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (pickup_city_id, dropoff_city_id, equipment) DO NOTHING
		RETURNING id, created_at
	`

	err := r.q.QueryRowContext(ctx, query,
		quote.PickupCityID,
		quote.DropoffCityID,
		quote.Equipment,
		quote.Miles,
		quote.BasePrice,
		quote.MinTransitTime,
	).Scan(&quote.ID, &quote.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

// ListRecent returns the most recently created cache entries, newest first.
func (r *RouteQuoteRepository) ListRecent(ctx context.Context, limit int) ([]*domain.RouteQuote, error) {
	query := `
		SELECT id, pickup_city_id, dropoff_city_id, equipment, miles, base_price, min_transit_time, created_at
		FROM route_quotes
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []*domain.RouteQuote
	for rows.Next() {
		var quote domain.RouteQuote
		if err := rows.Scan(
			&quote.ID,
			&quote.PickupCityID,
			&quote.DropoffCityID,
			&quote.Equipment,
			&quote.Miles,
			&quote.BasePrice,
			&quote.MinTransitTime,
			&quote.CreatedAt,
		); err != nil {
			return nil, err
		}
		quotes = append(quotes, &quote)
	}

	return quotes, rows.Err()
}
