package postgres

import (
	"context"
	"database/sql"
	"time"

	"shiporbit/internal/domain"
)

// StatusHistoryRepository is a PostgreSQL implementation of
// repository.StatusHistoryRepository.
type StatusHistoryRepository struct {
	q Querier
}

// NewStatusHistoryRepository creates a new PostgreSQL status history repository.
func NewStatusHistoryRepository(db *sql.DB) *StatusHistoryRepository {
	return &StatusHistoryRepository{q: db}
}

// NewStatusHistoryRepositoryWithTx creates a status history repository using
// a transaction.
func NewStatusHistoryRepositoryWithTx(tx *sql.Tx) *StatusHistoryRepository {
	return &StatusHistoryRepository{q: tx}
}

// Create appends a status change record.
func (r *StatusHistoryRepository) Create(ctx context.Context, change *domain.StatusChange) error {
	query := `
		INSERT INTO shipment_status_history (shipment_id, old_status, new_status, changed_by, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	change.CreatedAt = time.Now()

	return r.q.QueryRowContext(ctx, query,
		change.ShipmentID,
		change.OldStatus,
		change.NewStatus,
		change.ChangedBy,
		change.Reason,
		change.CreatedAt,
	).Scan(&change.ID)
}

// ListByShipment returns a shipment's status changes, newest first.
func (r *StatusHistoryRepository) ListByShipment(ctx context.Context, shipmentID string) ([]*domain.StatusChange, error) {
	query := `
		SELECT id, shipment_id, old_status, new_status, changed_by, reason, created_at
		FROM shipment_status_history
		WHERE shipment_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []*domain.StatusChange
	for rows.Next() {
		var change domain.StatusChange
		if err := rows.Scan(
			&change.ID,
			&change.ShipmentID,
			&change.OldStatus,
			&change.NewStatus,
			&change.ChangedBy,
			&change.Reason,
			&change.CreatedAt,
		); err != nil {
			return nil, err
		}
		changes = append(changes, &change)
	}

	return changes, rows.Err()
}
