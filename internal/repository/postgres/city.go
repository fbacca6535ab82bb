package postgres

import (
	"context"
	"database/sql"
	"errors"

	"shiporbit/internal/domain"
	"shiporbit/internal/repository"
)

// CityRepository is a PostgreSQL implementation of repository.CityRepository.
type CityRepository struct {
	q Querier
}

// NewCityRepository creates a new PostgreSQL city repository.
func NewCityRepository(db *sql.DB) *CityRepository {
	return &CityRepository{q: db}
}

// GetByID retrieves a city by its provider id.
func (r *CityRepository) GetByID(ctx context.Context, id int64) (*domain.City, error) {
	query := `
		SELECT id, name, region_code, country_code, latitude, longitude
		FROM cities WHERE id = $1
	`

	var city domain.City
	var lat, lng sql.NullFloat64
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&city.ID,
		&city.Name,
		&city.RegionCode,
		&city.CountryCode,
		&lat,
		&lng,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if lat.Valid {
		city.Latitude = &lat.Float64
	}
	if lng.Valid {
		city.Longitude = &lng.Float64
	}

	return &city, nil
}

// Create persists a new city. The insert is conditional on the id being
// unseen; a concurrent first-sight insert surfaces as ErrDuplicate.
func (r *CityRepository) Create(ctx context.Context, city *domain.City) error {
	query := `
		INSERT INTO cities (id, name, region_code, country_code, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	var lat, lng sql.NullFloat64
	if city.Latitude != nil {
		lat = sql.NullFloat64{Float64: *city.Latitude, Valid: true}
	}
	if city.Longitude != nil {
		lng = sql.NullFloat64{Float64: *city.Longitude, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query,
		city.ID,
		city.Name,
		city.RegionCode,
		city.CountryCode,
		lat,
		lng,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrDuplicate
	}

	return nil
}
