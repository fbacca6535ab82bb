package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"shiporbit/internal/domain"
	"shiporbit/internal/service"
)

func newInvoiceFixture() (*service.InvoiceService, *MockInvoiceRepository, *MockShipmentRepository) {
	shipments := NewMockShipmentRepository()
	invoices := NewMockInvoiceRepository()
	invoices.Shipments = shipments

	shipments.AddShipment(&domain.Shipment{
		ID:              "s1",
		UserID:          "u1",
		Status:          domain.ShipmentStatusUpcoming,
		BasePrice:       decimal.NewFromFloat(3000.00),
		DriverAssist:    true,
		DriverAssistFee: decimal.NewFromFloat(150.00),
	})

	return service.NewInvoiceService(invoices, shipments), invoices, shipments
}

func TestCreateInvoice(t *testing.T) {
	svc, invoices, _ := newInvoiceFixture()

	invoice, err := svc.CreateInvoice(context.Background(), service.CreateInvoiceRequest{
		UserID:     "u1",
		ShipmentID: "s1",
	})
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}

	if invoice.Amount.StringFixed(2) != "3000.00" {
		t.Errorf("amount = %s, want 3000.00", invoice.Amount)
	}
	if invoice.TotalAmount.StringFixed(2) != "3150.00" {
		t.Errorf("total = %s, want 3150.00 with driver assist", invoice.TotalAmount)
	}
	if invoice.Status != domain.InvoiceStatusPending {
		t.Errorf("status = %s, want pending", invoice.Status)
	}
	if invoices.InvoiceCount() != 1 {
		t.Errorf("invoices = %d, want 1", invoices.InvoiceCount())
	}
}

func TestCreateInvoiceDuplicate(t *testing.T) {
	svc, _, _ := newInvoiceFixture()
	ctx := context.Background()

	if _, err := svc.CreateInvoice(ctx, service.CreateInvoiceRequest{UserID: "u1", ShipmentID: "s1"}); err != nil {
		t.Fatalf("first CreateInvoice failed: %v", err)
	}

	_, err := svc.CreateInvoice(ctx, service.CreateInvoiceRequest{UserID: "u1", ShipmentID: "s1"})
	if !errors.Is(err, service.ErrInvoiceExists) {
		t.Fatalf("error = %v, want ErrInvoiceExists", err)
	}
}

func TestCreateInvoiceScopedToOwner(t *testing.T) {
	svc, _, _ := newInvoiceFixture()

	_, err := svc.CreateInvoice(context.Background(), service.CreateInvoiceRequest{
		UserID:     "u2",
		ShipmentID: "s1",
	})
	if !errors.Is(err, service.ErrShipmentNotFound) {
		t.Fatalf("error = %v, want ErrShipmentNotFound", err)
	}
}

func TestGetInvoiceForShipment(t *testing.T) {
	svc, _, _ := newInvoiceFixture()
	ctx := context.Background()

	if _, err := svc.GetInvoiceForShipment(ctx, "u1", "s1"); !errors.Is(err, service.ErrInvoiceNotFound) {
		t.Fatalf("error = %v, want ErrInvoiceNotFound before billing", err)
	}

	created, err := svc.CreateInvoice(ctx, service.CreateInvoiceRequest{UserID: "u1", ShipmentID: "s1"})
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}

	got, err := svc.GetInvoiceForShipment(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("GetInvoiceForShipment failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("invoice id = %s, want %s", got.ID, created.ID)
	}
}
