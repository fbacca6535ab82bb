package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"shiporbit/internal/domain"
	"shiporbit/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of
// repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `
	p.id, p.invoice_id, p.processor_intent_id, p.processor_method_id,
	p.amount, p.status, p.failure_reason, p.client_secret, p.created_at, p.updated_at
`

// Create persists a new payment attempt.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, invoice_id, processor_intent_id, processor_method_id, amount, status, failure_reason, client_secret, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`

	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.InvoiceID,
		payment.ProcessorIntentID,
		payment.ProcessorMethodID,
		payment.Amount,
		payment.Status,
		payment.FailureReason,
		payment.ClientSecret,
		now,
	)

	return err
}

func scanPayment(row *sql.Row) (*domain.Payment, error) {
	var payment domain.Payment
	err := row.Scan(
		&payment.ID,
		&payment.InvoiceID,
		&payment.ProcessorIntentID,
		&payment.ProcessorMethodID,
		&payment.Amount,
		&payment.Status,
		&payment.FailureReason,
		&payment.ClientSecret,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &payment, nil
}

// GetByIntentID retrieves a payment by its processor intent id.
func (r *PaymentRepository) GetByIntentID(ctx context.Context, intentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.processor_intent_id = $1`
	return scanPayment(r.q.QueryRowContext(ctx, query, intentID))
}

// GetByIntentIDForUser retrieves a payment by processor intent id, scoped
// to the owner of the invoiced shipment.
func (r *PaymentRepository) GetByIntentIDForUser(ctx context.Context, intentID, userID string) (*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments p
		JOIN invoices i ON i.id = p.invoice_id
		JOIN shipments s ON s.id = i.shipment_id
		WHERE p.processor_intent_id = $1 AND s.user_id = $2
	`
	return scanPayment(r.q.QueryRowContext(ctx, query, intentID, userID))
}

// ListByUser returns payments for the user's invoices, newest first.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments p
		JOIN invoices i ON i.id = p.invoice_id
		JOIN shipments s ON s.id = i.shipment_id
		WHERE s.user_id = $1
		ORDER BY p.created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		var payment domain.Payment
		if err := rows.Scan(
			&payment.ID,
			&payment.InvoiceID,
			&payment.ProcessorIntentID,
			&payment.ProcessorMethodID,
			&payment.Amount,
			&payment.Status,
			&payment.FailureReason,
			&payment.ClientSecret,
			&payment.CreatedAt,
			&payment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		payments = append(payments, &payment)
	}

	return payments, rows.Err()
}

// UpdateStatus moves a payment to a new status with an optional failure
// reason. Terminal payments are left untouched, so late or replayed
// notifications cannot rewind a settled attempt.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus, failureReason string) error {
	query := `
		UPDATE payments SET status = $1, failure_reason = $2, updated_at = $3
		WHERE id = $4 AND status NOT IN ($5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		status,
		failureReason,
		time.Now(),
		id,
		domain.PaymentStatusSucceeded,
		domain.PaymentStatusFailed,
		domain.PaymentStatusCancelled,
	)

	return err
}

// MarkSucceeded sets the payment to succeeded unless it already failed or
// was cancelled. Re-marking an already-succeeded payment is allowed so the
// rest of the success transition can re-run idempotently.
func (r *PaymentRepository) MarkSucceeded(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE payments SET status = $1, updated_at = $2
		WHERE id = $3 AND status NOT IN ($4, $5)
	`

	result, err := r.q.ExecContext(ctx, query,
		domain.PaymentStatusSucceeded,
		time.Now(),
		id,
		domain.PaymentStatusFailed,
		domain.PaymentStatusCancelled,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
