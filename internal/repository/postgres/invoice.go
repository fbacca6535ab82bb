package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"shiporbit/internal/domain"
	"shiporbit/internal/repository"
)

// InvoiceRepository is a PostgreSQL implementation of
// repository.InvoiceRepository.
type InvoiceRepository struct {
	q Querier
}

// NewInvoiceRepository creates a new PostgreSQL invoice repository.
func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{q: db}
}

// NewInvoiceRepositoryWithTx creates an invoice repository using a transaction.
func NewInvoiceRepositoryWithTx(tx *sql.Tx) *InvoiceRepository {
	return &InvoiceRepository{q: tx}
}

// Create persists a new invoice. TotalAmount is recomputed from Amount and
// DriverAssistFee before the write; the one-invoice-per-shipment constraint
// surfaces as ErrDuplicate.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	query := `
		INSERT INTO invoices (id, shipment_id, invoice_number, status, amount, driver_assist_fee, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	invoice.TotalAmount = invoice.Amount.Add(invoice.DriverAssistFee)
	invoice.CreatedAt = time.Now()

	_, err := r.q.ExecContext(ctx, query,
		invoice.ID,
		invoice.ShipmentID,
		invoice.InvoiceNumber,
		invoice.Status,
		invoice.Amount,
		invoice.DriverAssistFee,
		invoice.TotalAmount,
		invoice.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

const invoiceColumns = `
	i.id, i.shipment_id, i.invoice_number, i.status, i.amount,
	i.driver_assist_fee, i.total_amount, i.created_at, i.paid_at
`

func scanInvoice(row *sql.Row) (*domain.Invoice, error) {
	var invoice domain.Invoice
	var paidAt sql.NullTime
	err := row.Scan(
		&invoice.ID,
		&invoice.ShipmentID,
		&invoice.InvoiceNumber,
		&invoice.Status,
		&invoice.Amount,
		&invoice.DriverAssistFee,
		&invoice.TotalAmount,
		&invoice.CreatedAt,
		&paidAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if paidAt.Valid {
		invoice.PaidAt = paidAt.Time
	}

	return &invoice, nil
}

// GetByID retrieves an invoice by id.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices i WHERE i.id = $1`
	return scanInvoice(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUser retrieves an invoice by id, scoped to the owner of its
// shipment.
func (r *InvoiceRepository) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices i
		JOIN shipments s ON s.id = i.shipment_id
		WHERE i.id = $1 AND s.user_id = $2
	`
	return scanInvoice(r.q.QueryRowContext(ctx, query, id, userID))
}

// GetByShipmentID retrieves the invoice billing a shipment.
func (r *InvoiceRepository) GetByShipmentID(ctx context.Context, shipmentID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices i WHERE i.shipment_id = $1`
	return scanInvoice(r.q.QueryRowContext(ctx, query, shipmentID))
}

// ListByUser returns invoices for shipments owned by the user, newest first.
func (r *InvoiceRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices i
		JOIN shipments s ON s.id = i.shipment_id
		WHERE s.user_id = $1
		ORDER BY i.created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*domain.Invoice
	for rows.Next() {
		var invoice domain.Invoice
		var paidAt sql.NullTime
		if err := rows.Scan(
			&invoice.ID,
			&invoice.ShipmentID,
			&invoice.InvoiceNumber,
			&invoice.Status,
			&invoice.Amount,
			&invoice.DriverAssistFee,
			&invoice.TotalAmount,
			&invoice.CreatedAt,
			&paidAt,
		); err != nil {
			return nil, err
		}
		if paidAt.Valid {
			invoice.PaidAt = paidAt.Time
		}
		invoices = append(invoices, &invoice)
	}

	return invoices, rows.Err()
}

// MarkPaid sets the invoice to paid and stamps paid_at, unless it is
// already paid. The guard keeps the payment success transition idempotent
// and makes paid_at write-once.
func (r *InvoiceRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	query := `
		UPDATE invoices SET status = $1, paid_at = $2
		WHERE id = $3 AND status <> $1
	`

	_, err := r.q.ExecContext(ctx, query, domain.InvoiceStatusPaid, paidAt, id)
	return err
}

// Delete removes an invoice.
func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
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
