package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shiporbit/internal/domain"
	"shiporbit/internal/repository"
)

// InvoiceService handles invoice operations. Most invoices are created
// lazily by the payment flow; the explicit create operation exists for
// back-office use.
type InvoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	shipmentRepo repository.ShipmentRepository
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(invoiceRepo repository.InvoiceRepository, shipmentRepo repository.ShipmentRepository) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		shipmentRepo: shipmentRepo,
	}
}

// CreateInvoiceRequest contains the parameters for creating an invoice.
type CreateInvoiceRequest struct {
	UserID     string
	ShipmentID string
}

// CreateInvoice creates the invoice for a shipment. Returns
// ErrInvoiceExists if the shipment already has one.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*domain.Invoice, error) {
	shipment, err := s.shipmentRepo.GetByIDForUser(ctx, req.ShipmentID, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, fmt.Errorf("failed to load shipment: %w", err)
	}

	fee := decimal.Zero
	if shipment.DriverAssist {
		fee = shipment.DriverAssistFee
	}

	invoice := &domain.Invoice{
		ID:              uuid.New().String(),
		ShipmentID:      shipment.ID,
		InvoiceNumber:   newInvoiceNumber(),
		Status:          domain.InvoiceStatusPending,
		Amount:          shipment.BasePrice,
		DriverAssistFee: fee,
	}

	err = s.invoiceRepo.Create(ctx, invoice)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrInvoiceExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	return invoice, nil
}

// GetInvoice retrieves an invoice owned by the user.
func (s *InvoiceService) GetInvoice(ctx context.Context, userID, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByIDForUser(ctx, invoiceID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	return invoice, nil
}

// GetInvoiceForShipment retrieves the invoice billing one of the user's
// shipments.
func (s *InvoiceService) GetInvoiceForShipment(ctx context.Context, userID, shipmentID string) (*domain.Invoice, error) {
	if _, err := s.shipmentRepo.GetByIDForUser(ctx, shipmentID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, fmt.Errorf("failed to load shipment: %w", err)
	}

	invoice, err := s.invoiceRepo.GetByShipmentID(ctx, shipmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	return invoice, nil
}

// ListInvoices returns the user's invoices, newest first.
func (s *InvoiceService) ListInvoices(ctx context.Context, userID string) ([]*domain.Invoice, error) {
	return s.invoiceRepo.ListByUser(ctx, userID)
}
