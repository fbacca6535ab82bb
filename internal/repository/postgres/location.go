package postgres

import (
	"context"
	"database/sql"
	"time"

	"shiporbit/internal/domain"
	"shiporbit/internal/repository"
)

// LocationRepository is a PostgreSQL implementation of
// repository.LocationRepository.
type LocationRepository struct {
	q Querier
}

// NewLocationRepository creates a new PostgreSQL location repository.
func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{q: db}
}

// Create persists a new location.
func (r *LocationRepository) Create(ctx context.Context, location *domain.Location) error {
	query := `
		INSERT INTO locations (
			shipment_id, location_type, city_id, date,
			facility_name, facility_address, zip_code,
			contact_name, phone_number, email,
			scheduling_preference, location_number, additional_notes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	location.CreatedAt = time.Now()

	return r.q.QueryRowContext(ctx, query,
		location.ShipmentID,
		location.LocationType,
		location.CityID,
		location.Date,
		location.FacilityName,
		location.FacilityAddress,
		location.ZipCode,
		location.ContactName,
		location.PhoneNumber,
		location.Email,
		location.SchedulingPreference,
		location.LocationNumber,
		location.AdditionalNotes,
		location.CreatedAt,
	).Scan(&location.ID)
}

// GetByShipment returns both stops for a shipment, pickup first.
func (r *LocationRepository) GetByShipment(ctx context.Context, shipmentID string) ([]*domain.Location, error) {
	query := `
		SELECT id, shipment_id, location_type, city_id, date,
			facility_name, facility_address, zip_code,
			contact_name, phone_number, email,
			scheduling_preference, location_number, additional_notes, created_at
		FROM locations
		WHERE shipment_id = $1
		ORDER BY location_type = 'dropoff'
	`

	rows, err := r.q.QueryContext(ctx, query, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*domain.Location
	for rows.Next() {
		var location domain.Location
		if err := rows.Scan(
			&location.ID,
			&location.ShipmentID,
			&location.LocationType,
			&location.CityID,
			&location.Date,
			&location.FacilityName,
			&location.FacilityAddress,
			&location.ZipCode,
			&location.ContactName,
			&location.PhoneNumber,
			&location.Email,
			&location.SchedulingPreference,
			&location.LocationNumber,
			&location.AdditionalNotes,
			&location.CreatedAt,
		); err != nil {
			return nil, err
		}
		locations = append(locations, &location)
	}

	return locations, rows.Err()
}

// Update persists all mutable fields of the shipment's stop of the given
// type. Locations are addressed by (shipment_id, location_type), which is
// unique.
func (r *LocationRepository) Update(ctx context.Context, location *domain.Location) error {
	query := `
		UPDATE locations SET
			city_id = $1, date = $2,
			facility_name = $3, facility_address = $4, zip_code = $5,
			contact_name = $6, phone_number = $7, email = $8,
			scheduling_preference = $9, location_number = $10, additional_notes = $11
		WHERE shipment_id = $12 AND location_type = $13
	`

	result, err := r.q.ExecContext(ctx, query,
		location.CityID,
		location.Date,
		location.FacilityName,
		location.FacilityAddress,
		location.ZipCode,
		location.ContactName,
		location.PhoneNumber,
		location.Email,
		location.SchedulingPreference,
		location.LocationNumber,
		location.AdditionalNotes,
		location.ShipmentID,
		location.LocationType,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
