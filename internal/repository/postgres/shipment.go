package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"shiporbit/internal/domain"
	"shiporbit/internal/repository"
)

// ShipmentRepository is a PostgreSQL implementation of
// repository.ShipmentRepository.
type ShipmentRepository struct {
	q Querier
}

// NewShipmentRepository creates a new PostgreSQL shipment repository.
func NewShipmentRepository(db *sql.DB) *ShipmentRepository {
	return &ShipmentRepository{q: db}
}

// NewShipmentRepositoryWithTx creates a shipment repository using a transaction.
func NewShipmentRepositoryWithTx(tx *sql.Tx) *ShipmentRepository {
	return &ShipmentRepository{q: tx}
}

const shipmentColumns = `
	id, user_id, status, equipment, pickup_date, dropoff_date,
	base_price, miles, min_transit_time, driver_assist, driver_assist_fee,
	reference_number, weight, commodity, packaging, packaging_type,
	created_at, updated_at
`

// Create persists a new shipment.
func (r *ShipmentRepository) Create(ctx context.Context, shipment *domain.Shipment) error {
	query := `
		INSERT INTO shipments (
			id, user_id, status, equipment, pickup_date, dropoff_date,
			base_price, miles, min_transit_time, driver_assist, driver_assist_fee,
			reference_number, weight, commodity, packaging, packaging_type,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
	`

	now := time.Now()
	shipment.CreatedAt = now
	shipment.UpdatedAt = now

	_, err := r.q.ExecContext(ctx, query,
		shipment.ID,
		shipment.UserID,
		shipment.Status,
		shipment.Equipment,
		shipment.PickupDate,
		shipment.DropoffDate,
		shipment.BasePrice,
		shipment.Miles,
		shipment.MinTransitTime,
		shipment.DriverAssist,
		shipment.DriverAssistFee,
		shipment.ReferenceNumber,
		shipment.Weight,
		shipment.Commodity,
		shipment.Packaging,
		shipment.PackagingType,
		now,
	)

	return err
}

func (r *ShipmentRepository) scanShipment(row *sql.Row) (*domain.Shipment, error) {
	var shipment domain.Shipment
	err := row.Scan(
		&shipment.ID,
		&shipment.UserID,
		&shipment.Status,
		&shipment.Equipment,
		&shipment.PickupDate,
		&shipment.DropoffDate,
		&shipment.BasePrice,
		&shipment.Miles,
		&shipment.MinTransitTime,
		&shipment.DriverAssist,
		&shipment.DriverAssistFee,
		&shipment.ReferenceNumber,
		&shipment.Weight,
		&shipment.Commodity,
		&shipment.Packaging,
		&shipment.PackagingType,
		&shipment.CreatedAt,
		&shipment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &shipment, nil
}

// GetByID retrieves a shipment by id.
func (r *ShipmentRepository) GetByID(ctx context.Context, id string) (*domain.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE id = $1`
	return r.scanShipment(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUser retrieves a shipment by id, scoped to its owner.
func (r *ShipmentRepository) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE id = $1 AND user_id = $2`
	return r.scanShipment(r.q.QueryRowContext(ctx, query, id, userID))
}

// ListByUser returns the user's shipments, newest first, optionally
// filtered by status.
func (r *ShipmentRepository) ListByUser(ctx context.Context, userID string, status domain.ShipmentStatus) ([]*domain.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE user_id = $1`
	args := []any{userID}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shipments []*domain.Shipment
	for rows.Next() {
		var shipment domain.Shipment
		if err := rows.Scan(
			&shipment.ID,
			&shipment.UserID,
			&shipment.Status,
			&shipment.Equipment,
			&shipment.PickupDate,
			&shipment.DropoffDate,
			&shipment.BasePrice,
			&shipment.Miles,
			&shipment.MinTransitTime,
			&shipment.DriverAssist,
			&shipment.DriverAssistFee,
			&shipment.ReferenceNumber,
			&shipment.Weight,
			&shipment.Commodity,
			&shipment.Packaging,
			&shipment.PackagingType,
			&shipment.CreatedAt,
			&shipment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		shipments = append(shipments, &shipment)
	}

	return shipments, rows.Err()
}

// Update persists all mutable shipment fields.
func (r *ShipmentRepository) Update(ctx context.Context, shipment *domain.Shipment) error {
	query := `
		UPDATE shipments SET
			status = $1, equipment = $2, pickup_date = $3, dropoff_date = $4,
			base_price = $5, miles = $6, min_transit_time = $7,
			driver_assist = $8, driver_assist_fee = $9,
			reference_number = $10, weight = $11, commodity = $12,
			packaging = $13, packaging_type = $14, updated_at = $15
		WHERE id = $16
	`

	shipment.UpdatedAt = time.Now()

	result, err := r.q.ExecContext(ctx, query,
		shipment.Status,
		shipment.Equipment,
		shipment.PickupDate,
		shipment.DropoffDate,
		shipment.BasePrice,
		shipment.Miles,
		shipment.MinTransitTime,
		shipment.DriverAssist,
		shipment.DriverAssistFee,
		shipment.ReferenceNumber,
		shipment.Weight,
		shipment.Commodity,
		shipment.Packaging,
		shipment.PackagingType,
		shipment.UpdatedAt,
		shipment.ID,
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

// Delete removes a shipment; locations, the invoice, and status history
// follow through ON DELETE CASCADE.
func (r *ShipmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM shipments WHERE id = $1`, id)
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

// MarkInProgress sets the shipment status to inprogress unless it already
// is, reporting whether the status changed. The guard keeps the payment
// success transition idempotent.
func (r *ShipmentRepository) MarkInProgress(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE shipments SET status = $1, updated_at = $2
		WHERE id = $3 AND status <> $1
	`

	result, err := r.q.ExecContext(ctx, query, domain.ShipmentStatusInProgress, time.Now(), id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// CountByStatus returns the number of the user's shipments per status.
func (r *ShipmentRepository) CountByStatus(ctx context.Context, userID string) (map[domain.ShipmentStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM shipments WHERE user_id = $1 GROUP BY status`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ShipmentStatus]int)
	for rows.Next() {
		var status domain.ShipmentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, rows.Err()
}
