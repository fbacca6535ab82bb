package tests

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"shiporbit/internal/domain"
	"shiporbit/internal/processor"
	"shiporbit/internal/service"
)

type paymentFixture struct {
	svc       *service.PaymentService
	shipments *MockShipmentRepository
	invoices  *MockInvoiceRepository
	payments  *MockPaymentRepository
	users     *MockUserRepository
	history   *MockStatusHistoryRepository
	proc      *MockProcessor
}

func newPaymentFixture() *paymentFixture {
	shipments := NewMockShipmentRepository()
	invoices := NewMockInvoiceRepository()
	payments := NewMockPaymentRepository()
	users := NewMockUserRepository()
	history := NewMockStatusHistoryRepository()
	proc := NewMockProcessor()

	invoices.Shipments = shipments
	payments.Invoices = invoices

	users.AddUser(&domain.User{
		ID:        "u1",
		Email:     "shipper@example.com",
		FirstName: "Pat",
		LastName:  "Doe",
	})
	shipments.AddShipment(&domain.Shipment{
		ID:              "s1",
		UserID:          "u1",
		Status:          domain.ShipmentStatusUpcoming,
		Equipment:       domain.EquipmentDryVan,
		BasePrice:       decimal.NewFromFloat(1000.00),
		DriverAssist:    true,
		DriverAssistFee: decimal.NewFromFloat(150.00),
	})

	svc := service.NewPaymentService(nil, shipments, invoices, payments, users, history, proc, service.NewNotificationService())
	return &paymentFixture{
		svc:       svc,
		shipments: shipments,
		invoices:  invoices,
		payments:  payments,
		users:     users,
		history:   history,
		proc:      proc,
	}
}

func (f *paymentFixture) createAttempt(t *testing.T) *domain.Payment {
	t.Helper()
	payment, err := f.svc.CreatePaymentAttempt(context.Background(), service.CreatePaymentAttemptRequest{
		UserID:          "u1",
		ShipmentID:      "s1",
		PaymentMethodID: "pm_card",
	})
	if err != nil {
		t.Fatalf("CreatePaymentAttempt failed: %v", err)
	}
	return payment
}

func TestCreatePaymentSucceeded(t *testing.T) {
	f := newPaymentFixture()

	payment := f.createAttempt(t)

	if payment.Status != domain.PaymentStatusSucceeded {
		t.Errorf("payment status = %s, want succeeded", payment.Status)
	}
	if payment.Amount.StringFixed(2) != "1150.00" {
		t.Errorf("payment amount = %s, want 1150.00 (base + driver assist)", payment.Amount)
	}

	invoice := f.invoices.GetInvoice(payment.InvoiceID)
	if invoice == nil {
		t.Fatal("invoice was not created")
	}
	if invoice.Status != domain.InvoiceStatusPaid {
		t.Errorf("invoice status = %s, want paid", invoice.Status)
	}
	if invoice.PaidAt.IsZero() {
		t.Error("invoice paid_at was not stamped")
	}
	if invoice.TotalAmount.StringFixed(2) != "1150.00" {
		t.Errorf("invoice total = %s, want 1150.00", invoice.TotalAmount)
	}
	if len(invoice.InvoiceNumber) != 12 || invoice.InvoiceNumber[:4] != "INV-" {
		t.Errorf("invoice number = %q, want INV- followed by 8 characters", invoice.InvoiceNumber)
	}

	if got := f.shipments.GetShipment("s1").Status; got != domain.ShipmentStatusInProgress {
		t.Errorf("shipment status = %s, want inprogress", got)
	}

	user, _ := f.users.GetByID(context.Background(), "u1")
	if user.ProcessorCustomerID == "" {
		t.Error("processor customer id was not cached on the user")
	}

	if f.history.ChangeCount() != 1 {
		t.Errorf("status changes = %d, want 1 for the inprogress flip", f.history.ChangeCount())
	}
}

func TestCreatePaymentStatusMapping(t *testing.T) {
	cases := []struct {
		intentStatus string
		want         domain.PaymentStatus
	}{
		{processor.IntentStatusRequiresPaymentMethod, domain.PaymentStatusFailed},
		{processor.IntentStatusRequiresConfirmation, domain.PaymentStatusPending},
		{processor.IntentStatusRequiresAction, domain.PaymentStatusRequiresAction},
		{processor.IntentStatusProcessing, domain.PaymentStatusProcessing},
		{processor.IntentStatusSucceeded, domain.PaymentStatusSucceeded},
		{processor.IntentStatusCanceled, domain.PaymentStatusCancelled},
		{"some_future_status", domain.PaymentStatusPending},
	}

	for _, tc := range cases {
		t.Run(tc.intentStatus, func(t *testing.T) {
			f := newPaymentFixture()
			f.proc.IntentStatus = tc.intentStatus

			payment := f.createAttempt(t)
			if payment.Status != tc.want {
				t.Errorf("payment status = %s, want %s", payment.Status, tc.want)
			}
		})
	}
}

func TestCreatePaymentReusesCustomerAndInvoice(t *testing.T) {
	f := newPaymentFixture()
	f.proc.IntentStatus = processor.IntentStatusProcessing

	f.createAttempt(t)
	f.createAttempt(t)

	if got := atomic.LoadInt32(&f.proc.CreateCustomerCallCount); got != 1 {
		t.Errorf("customer creations = %d, want 1 (cached after first attempt)", got)
	}
	if f.invoices.InvoiceCount() != 1 {
		t.Errorf("invoices = %d, want 1 shared across attempts", f.invoices.InvoiceCount())
	}
}

func TestCreatePaymentProcessorErrorRollsBackNewInvoice(t *testing.T) {
	f := newPaymentFixture()
	f.proc.CreateIntentError = &processor.Error{Code: "card_declined", Message: "Your card was declined."}

	_, err := f.svc.CreatePaymentAttempt(context.Background(), service.CreatePaymentAttemptRequest{
		UserID:          "u1",
		ShipmentID:      "s1",
		PaymentMethodID: "pm_card",
	})

	var procErr *processor.Error
	if !errors.As(err, &procErr) {
		t.Fatalf("error = %v, want processor.Error", err)
	}
	if procErr.Message != "Your card was declined." {
		t.Errorf("message = %q, want the processor's message", procErr.Message)
	}

	if f.invoices.InvoiceCount() != 0 {
		t.Errorf("invoices = %d, want 0 (rolled back)", f.invoices.InvoiceCount())
	}
}

func TestCreatePaymentProcessorErrorKeepsExistingInvoice(t *testing.T) {
	f := newPaymentFixture()
	f.invoices.AddInvoice(&domain.Invoice{
		ID:         "inv1",
		ShipmentID: "s1",
		Status:     domain.InvoiceStatusPending,
		Amount:     decimal.NewFromFloat(1000.00),
	})
	f.proc.CreateIntentError = &processor.Error{Code: "card_declined", Message: "declined"}

	_, err := f.svc.CreatePaymentAttempt(context.Background(), service.CreatePaymentAttemptRequest{
		UserID:          "u1",
		ShipmentID:      "s1",
		PaymentMethodID: "pm_card",
	})
	if err == nil {
		t.Fatal("expected processor error")
	}

	if f.invoices.GetInvoice("inv1") == nil {
		t.Error("pre-existing invoice was deleted")
	}
	if got := atomic.LoadInt32(&f.invoices.DeleteCallCount); got != 0 {
		t.Errorf("invoice deletes = %d, want 0", got)
	}
}

func TestCreatePaymentShipmentNotPayable(t *testing.T) {
	f := newPaymentFixture()
	f.shipments.GetShipment("s1").Status = domain.ShipmentStatusUnfinished

	_, err := f.svc.CreatePaymentAttempt(context.Background(), service.CreatePaymentAttemptRequest{
		UserID:          "u1",
		ShipmentID:      "s1",
		PaymentMethodID: "pm_card",
	})
	if !errors.Is(err, service.ErrShipmentNotPayable) {
		t.Fatalf("error = %v, want ErrShipmentNotPayable", err)
	}
	if got := atomic.LoadInt32(&f.proc.CreateIntentCallCount); got != 0 {
		t.Errorf("intent creations = %d, want 0", got)
	}
}

func TestCreatePaymentInvoiceNotPending(t *testing.T) {
	f := newPaymentFixture()
	f.invoices.AddInvoice(&domain.Invoice{
		ID:         "inv1",
		ShipmentID: "s1",
		Status:     domain.InvoiceStatusPaid,
		Amount:     decimal.NewFromFloat(1000.00),
	})

	_, err := f.svc.CreatePaymentAttempt(context.Background(), service.CreatePaymentAttemptRequest{
		UserID:          "u1",
		ShipmentID:      "s1",
		PaymentMethodID: "pm_card",
	})
	if !errors.Is(err, service.ErrInvoiceNotPending) {
		t.Fatalf("error = %v, want ErrInvoiceNotPending", err)
	}
}

func seedPendingPayment(f *paymentFixture, status domain.PaymentStatus) *domain.Payment {
	f.invoices.AddInvoice(&domain.Invoice{
		ID:              "inv1",
		ShipmentID:      "s1",
		Status:          domain.InvoiceStatusPending,
		Amount:          decimal.NewFromFloat(1000.00),
		DriverAssistFee: decimal.NewFromFloat(150.00),
	})
	payment := &domain.Payment{
		ID:                "pay1",
		InvoiceID:         "inv1",
		ProcessorIntentID: "pi_1",
		Amount:            decimal.NewFromFloat(1150.00),
		Status:            status,
	}
	f.payments.AddPayment(payment)
	return payment
}

func TestWebhookSuccessIsIdempotent(t *testing.T) {
	f := newPaymentFixture()
	seedPendingPayment(f, domain.PaymentStatusProcessing)
	ctx := context.Background()

	event := &processor.Event{Type: processor.EventIntentSucceeded, IntentID: "pi_1"}

	if err := f.svc.HandleWebhookEvent(ctx, event); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}

	invoice := f.invoices.GetInvoice("inv1")
	if invoice.Status != domain.InvoiceStatusPaid {
		t.Fatalf("invoice status = %s, want paid", invoice.Status)
	}
	firstPaidAt := invoice.PaidAt

	// Redelivery must not move paid_at or disturb the shipment.
	if err := f.svc.HandleWebhookEvent(ctx, event); err != nil {
		t.Fatalf("second delivery failed: %v", err)
	}

	invoice = f.invoices.GetInvoice("inv1")
	if !invoice.PaidAt.Equal(firstPaidAt) {
		t.Errorf("paid_at changed on redelivery: %v -> %v", firstPaidAt, invoice.PaidAt)
	}
	if got := f.payments.GetPayment("pay1").Status; got != domain.PaymentStatusSucceeded {
		t.Errorf("payment status = %s, want succeeded", got)
	}
	if got := f.shipments.GetShipment("s1").Status; got != domain.ShipmentStatusInProgress {
		t.Errorf("shipment status = %s, want inprogress", got)
	}
	if f.history.ChangeCount() != 1 {
		t.Errorf("status changes = %d, want 1 (redelivery flips nothing)", f.history.ChangeCount())
	}
}

func TestWebhookSuccessRecordsStatusHistory(t *testing.T) {
	f := newPaymentFixture()
	seedPendingPayment(f, domain.PaymentStatusProcessing)
	ctx := context.Background()

	event := &processor.Event{Type: processor.EventIntentSucceeded, IntentID: "pi_1"}
	if err := f.svc.HandleWebhookEvent(ctx, event); err != nil {
		t.Fatalf("HandleWebhookEvent failed: %v", err)
	}

	changes, err := f.history.ListByShipment(ctx, "s1")
	if err != nil {
		t.Fatalf("ListByShipment failed: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("status changes = %d, want 1", len(changes))
	}
	change := changes[0]
	if change.OldStatus != domain.ShipmentStatusUpcoming || change.NewStatus != domain.ShipmentStatusInProgress {
		t.Errorf("transition = %s -> %s, want upcoming -> inprogress", change.OldStatus, change.NewStatus)
	}
	if change.ChangedBy != "system" {
		t.Errorf("changed by = %q, want system", change.ChangedBy)
	}
}

func TestWebhookSuccessDoesNotReviveFailedPayment(t *testing.T) {
	f := newPaymentFixture()
	seedPendingPayment(f, domain.PaymentStatusFailed)

	var logged bytes.Buffer
	log.SetOutput(&logged)
	defer log.SetOutput(os.Stderr)

	event := &processor.Event{Type: processor.EventIntentSucceeded, IntentID: "pi_1"}
	if err := f.svc.HandleWebhookEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleWebhookEvent failed: %v", err)
	}

	if got := f.payments.GetPayment("pay1").Status; got != domain.PaymentStatusFailed {
		t.Errorf("payment status = %s, want failed (stored outcome kept)", got)
	}
	if got := f.invoices.GetInvoice("inv1").Status; got != domain.InvoiceStatusPending {
		t.Errorf("invoice status = %s, want pending (untouched)", got)
	}
	if f.history.ChangeCount() != 0 {
		t.Errorf("status changes = %d, want 0", f.history.ChangeCount())
	}
	if strings.Contains(logged.String(), "[NOTIFICATION]") {
		t.Error("notification sent for an event that changed nothing")
	}
}

func TestWebhookFailureRecordsReason(t *testing.T) {
	f := newPaymentFixture()
	seedPendingPayment(f, domain.PaymentStatusProcessing)

	event := &processor.Event{
		Type:           processor.EventIntentPaymentFailed,
		IntentID:       "pi_1",
		FailureMessage: "insufficient funds",
	}
	if err := f.svc.HandleWebhookEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleWebhookEvent failed: %v", err)
	}

	payment := f.payments.GetPayment("pay1")
	if payment.Status != domain.PaymentStatusFailed {
		t.Errorf("payment status = %s, want failed", payment.Status)
	}
	if payment.FailureReason != "insufficient funds" {
		t.Errorf("failure reason = %q, want the event's message", payment.FailureReason)
	}
}

func TestWebhookUnknownIntentDroppedSilently(t *testing.T) {
	f := newPaymentFixture()

	event := &processor.Event{Type: processor.EventIntentSucceeded, IntentID: "pi_unknown"}
	if err := f.svc.HandleWebhookEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleWebhookEvent returned %v, want nil for unknown intent", err)
	}
}

func TestConfirmTerminalPaymentIsNoop(t *testing.T) {
	f := newPaymentFixture()
	seedPendingPayment(f, domain.PaymentStatusSucceeded)

	payment, err := f.svc.ConfirmPaymentAttempt(context.Background(), "u1", "pi_1")
	if err != nil {
		t.Fatalf("ConfirmPaymentAttempt failed: %v", err)
	}
	if payment.Status != domain.PaymentStatusSucceeded {
		t.Errorf("payment status = %s, want succeeded", payment.Status)
	}
	if got := atomic.LoadInt32(&f.proc.ConfirmCallCount); got != 0 {
		t.Errorf("processor confirms = %d, want 0 for terminal payment", got)
	}
}

func TestPollStatusSettlesPayment(t *testing.T) {
	f := newPaymentFixture()
	seedPendingPayment(f, domain.PaymentStatusProcessing)
	f.proc.GetStatus = processor.IntentStatusSucceeded

	payment, err := f.svc.PollStatus(context.Background(), "u1", "pi_1")
	if err != nil {
		t.Fatalf("PollStatus failed: %v", err)
	}

	if payment.Status != domain.PaymentStatusSucceeded {
		t.Errorf("payment status = %s, want succeeded", payment.Status)
	}
	if got := f.invoices.GetInvoice("inv1").Status; got != domain.InvoiceStatusPaid {
		t.Errorf("invoice status = %s, want paid", got)
	}
	if got := f.shipments.GetShipment("s1").Status; got != domain.ShipmentStatusInProgress {
		t.Errorf("shipment status = %s, want inprogress", got)
	}
}

func TestPollStatusUnknownIntent(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.PollStatus(context.Background(), "u1", "pi_missing")
	if !errors.Is(err, service.ErrPaymentNotFound) {
		t.Fatalf("error = %v, want ErrPaymentNotFound", err)
	}
}
