package repository

import (
	"context"

	"shiporbit/internal/domain"
)

// CityRepository defines the persistence operations for cities.
type CityRepository interface {
	// GetByID retrieves a city by its provider id.
	GetByID(ctx context.Context, id int64) (*domain.City, error)

	// Create persists a new city. Returns ErrDuplicate if a city with the
	// same id already exists.
	Create(ctx context.Context, city *domain.City) error
}
