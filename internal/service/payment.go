package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shiporbit/internal/domain"
	"shiporbit/internal/processor"
	"shiporbit/internal/repository"
	"shiporbit/internal/repository/postgres"
)

const paymentCurrency = "usd"

// PaymentService reconciles invoice payments against the external payment
// processor. Every entry point (create, confirm, webhook, poll) funnels the
// processor's reported intent status through the same transition logic, so
// replays and out-of-order deliveries converge on the same stored state.
type PaymentService struct {
	// db scopes the success transition to a transaction. When nil (as in
	// tests with mock repositories) the transition runs against the injected
	// repositories directly; the guarded writes keep it idempotent either way.
	db *sql.DB

	shipmentRepo  repository.ShipmentRepository
	invoiceRepo   repository.InvoiceRepository
	paymentRepo   repository.PaymentRepository
	userRepo      repository.UserRepository
	historyRepo   repository.StatusHistoryRepository
	processor     processor.Client
	notifications *NotificationService
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	db *sql.DB,
	shipmentRepo repository.ShipmentRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	historyRepo repository.StatusHistoryRepository,
	processorClient processor.Client,
	notifications *NotificationService,
) *PaymentService {
	return &PaymentService{
		db:            db,
		shipmentRepo:  shipmentRepo,
		invoiceRepo:   invoiceRepo,
		paymentRepo:   paymentRepo,
		userRepo:      userRepo,
		historyRepo:   historyRepo,
		processor:     processorClient,
		notifications: notifications,
	}
}

// mapProcessorStatus translates a processor intent status into the payment
// status stored locally. Unrecognized statuses map to pending so a newer
// processor API version cannot push a payment into a terminal state we do
// not understand.
func mapProcessorStatus(status string) domain.PaymentStatus {
	switch status {
	case processor.IntentStatusRequiresPaymentMethod:
		return domain.PaymentStatusFailed
	case processor.IntentStatusRequiresConfirmation:
		return domain.PaymentStatusPending
	case processor.IntentStatusRequiresAction:
		return domain.PaymentStatusRequiresAction
	case processor.IntentStatusProcessing:
		return domain.PaymentStatusProcessing
	case processor.IntentStatusSucceeded:
		return domain.PaymentStatusSucceeded
	case processor.IntentStatusCanceled:
		return domain.PaymentStatusCancelled
	default:
		return domain.PaymentStatusPending
	}
}

// CreatePaymentAttemptRequest contains the parameters for starting a payment.
type CreatePaymentAttemptRequest struct {
	UserID          string
	ShipmentID      string
	PaymentMethodID string
	ReturnURL       string
}

// CreatePaymentAttempt charges the invoice for an upcoming shipment,
// creating the invoice lazily on the first attempt. If the processor call
// fails, an invoice created within this attempt is rolled back; a
// pre-existing invoice is left untouched.
func (s *PaymentService) CreatePaymentAttempt(ctx context.Context, req CreatePaymentAttemptRequest) (*domain.Payment, error) {
	if req.ShipmentID == "" || req.PaymentMethodID == "" {
		return nil, fmt.Errorf("%w: shipment id and payment method are required", ErrValidation)
	}

	shipment, err := s.shipmentRepo.GetByIDForUser(ctx, req.ShipmentID, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, fmt.Errorf("failed to load shipment: %w", err)
	}

	if shipment.Status != domain.ShipmentStatusUpcoming {
		return nil, fmt.Errorf("%w: status is %s", ErrShipmentNotPayable, shipment.Status)
	}

	invoice, invoiceCreated, err := s.ensureInvoice(ctx, shipment)
	if err != nil {
		return nil, err
	}

	if invoice.Status != domain.InvoiceStatusPending {
		return nil, fmt.Errorf("%w: status is %s", ErrInvoiceNotPending, invoice.Status)
	}

	customerID, err := s.ensureProcessorCustomer(ctx, req.UserID)
	if err != nil {
		s.rollbackInvoice(ctx, invoice, invoiceCreated)
		return nil, err
	}

	intent, err := s.processor.CreateIntent(ctx, processor.CreateIntentParams{
		AmountCents:     invoice.TotalAmount.Shift(2).IntPart(),
		Currency:        paymentCurrency,
		CustomerID:      customerID,
		PaymentMethodID: req.PaymentMethodID,
		Confirm:         true,
		ReturnURL:       req.ReturnURL,
		Metadata: map[string]string{
			"invoice_id":  invoice.ID,
			"shipment_id": shipment.ID,
		},
	})
	if err != nil {
		s.rollbackInvoice(ctx, invoice, invoiceCreated)
		return nil, err
	}

	payment := &domain.Payment{
		ID:                uuid.New().String(),
		InvoiceID:         invoice.ID,
		ProcessorIntentID: intent.ID,
		ProcessorMethodID: req.PaymentMethodID,
		Amount:            invoice.TotalAmount,
		Status:            mapProcessorStatus(intent.Status),
		FailureReason:     intent.FailureMessage,
		ClientSecret:      intent.ClientSecret,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	return s.settle(ctx, payment, shipment.UserID)
}

// ConfirmPaymentAttempt re-confirms a payment that required further action
// (3D Secure). Payments already in a terminal state are returned unchanged
// without contacting the processor.
func (s *PaymentService) ConfirmPaymentAttempt(ctx context.Context, userID, intentID string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByIntentIDForUser(ctx, intentID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}

	if payment.Status.Terminal() {
		return payment, nil
	}

	intent, err := s.processor.ConfirmIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}

	return s.applyIntent(ctx, payment, intent)
}

// PollStatus refreshes a non-terminal payment from the processor. Used by
// clients while an asynchronous payment settles.
func (s *PaymentService) PollStatus(ctx context.Context, userID, intentID string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByIntentIDForUser(ctx, intentID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}

	if payment.Status.Terminal() {
		return payment, nil
	}

	intent, err := s.processor.GetIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}

	return s.applyIntent(ctx, payment, intent)
}

// HandleWebhookEvent reconciles a verified processor event against the
// stored payment. Events for intents this service never created are dropped
// silently so the processor does not retry them forever.
func (s *PaymentService) HandleWebhookEvent(ctx context.Context, event *processor.Event) error {
	payment, err := s.paymentRepo.GetByIntentID(ctx, event.IntentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("[WEBHOOK] ignoring event %s for unknown intent %s", event.Type, event.IntentID)
			return nil
		}
		return fmt.Errorf("failed to load payment: %w", err)
	}

	switch event.Type {
	case processor.EventIntentSucceeded:
		changed, err := s.markSucceeded(ctx, payment)
		if err != nil {
			return err
		}
		if changed {
			s.notifyOutcome(ctx, payment)
		}
	case processor.EventIntentPaymentFailed:
		if payment.Status.Terminal() {
			return nil
		}
		if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, domain.PaymentStatusFailed, event.FailureMessage); err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		payment.Status = domain.PaymentStatusFailed
		payment.FailureReason = event.FailureMessage
		s.notifyOutcome(ctx, payment)
	case processor.EventIntentRequiresAction:
		if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, domain.PaymentStatusRequiresAction, ""); err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
	default:
		log.Printf("[WEBHOOK] ignoring unhandled event type %s", event.Type)
	}

	return nil
}

// ListPayments returns the user's payment attempts, newest first.
func (s *PaymentService) ListPayments(ctx context.Context, userID string) ([]*domain.Payment, error) {
	return s.paymentRepo.ListByUser(ctx, userID)
}

// applyIntent folds a fresh processor intent into the stored payment.
func (s *PaymentService) applyIntent(ctx context.Context, payment *domain.Payment, intent *processor.Intent) (*domain.Payment, error) {
	payment.Status = mapProcessorStatus(intent.Status)
	payment.FailureReason = intent.FailureMessage

	return s.settle(ctx, payment, "")
}

// settle persists the payment's current status and, when it succeeded, runs
// the success transition. userID is only used for notifications and may be
// empty. A success transition that changed nothing (the stored payment had
// already failed or was cancelled) does not notify.
func (s *PaymentService) settle(ctx context.Context, payment *domain.Payment, userID string) (*domain.Payment, error) {
	if payment.Status == domain.PaymentStatusSucceeded {
		changed, err := s.markSucceeded(ctx, payment)
		if err != nil {
			return nil, err
		}
		if changed {
			s.notifyOutcomeTo(ctx, payment, userID)
		}
		return payment, nil
	}

	if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, payment.Status, payment.FailureReason); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	if payment.Status.Terminal() {
		s.notifyOutcomeTo(ctx, payment, userID)
	}

	return payment, nil
}

// markSucceeded runs the success transition: payment succeeded, invoice paid
// with paid_at stamped once, shipment moved to inprogress. Inside a
// transaction when a database handle is available; the individual writes are
// guarded so replaying the transition is a no-op. Returns whether the
// payment actually transitioned.
func (s *PaymentService) markSucceeded(ctx context.Context, payment *domain.Payment) (bool, error) {
	now := time.Now()

	if s.db == nil {
		return applySuccessTransition(ctx, s.paymentRepo, s.invoiceRepo, s.shipmentRepo, s.historyRepo, payment, now)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	changed, err := applySuccessTransition(
		ctx,
		postgres.NewPaymentRepositoryWithTx(tx),
		postgres.NewInvoiceRepositoryWithTx(tx),
		postgres.NewShipmentRepositoryWithTx(tx),
		postgres.NewStatusHistoryRepositoryWithTx(tx),
		payment,
		now,
	)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return changed, nil
}

// applySuccessTransition applies the three guarded writes of a successful
// payment and records the shipment's status flip in the history. It never
// downgrades: a payment that already failed or was cancelled keeps its
// stored outcome and the invoice and shipment are left alone.
func applySuccessTransition(
	ctx context.Context,
	payments repository.PaymentRepository,
	invoices repository.InvoiceRepository,
	shipments repository.ShipmentRepository,
	history repository.StatusHistoryRepository,
	payment *domain.Payment,
	now time.Time,
) (bool, error) {
	changed, err := payments.MarkSucceeded(ctx, payment.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update payment: %w", err)
	}
	if !changed {
		return false, nil
	}
	payment.Status = domain.PaymentStatusSucceeded

	invoice, err := invoices.GetByID(ctx, payment.InvoiceID)
	if err != nil {
		return false, fmt.Errorf("failed to load invoice: %w", err)
	}

	if err := invoices.MarkPaid(ctx, invoice.ID, now); err != nil {
		return false, fmt.Errorf("failed to update invoice: %w", err)
	}

	shipment, err := shipments.GetByID(ctx, invoice.ShipmentID)
	if err != nil {
		return false, fmt.Errorf("failed to load shipment: %w", err)
	}

	flipped, err := shipments.MarkInProgress(ctx, invoice.ShipmentID)
	if err != nil {
		return false, fmt.Errorf("failed to update shipment: %w", err)
	}
	if flipped {
		change := &domain.StatusChange{
			ShipmentID: invoice.ShipmentID,
			OldStatus:  shipment.Status,
			NewStatus:  domain.ShipmentStatusInProgress,
			ChangedBy:  "system",
			Reason:     "payment succeeded",
		}
		if err := history.Create(ctx, change); err != nil {
			return false, fmt.Errorf("failed to record status change: %w", err)
		}
	}

	return true, nil
}

// ensureInvoice returns the shipment's invoice, creating it on the first
// payment attempt. The second return value reports whether this call created
// it, which scopes the rollback on processor failure.
func (s *PaymentService) ensureInvoice(ctx context.Context, shipment *domain.Shipment) (*domain.Invoice, bool, error) {
	invoice, err := s.invoiceRepo.GetByShipmentID(ctx, shipment.ID)
	if err == nil {
		return invoice, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to load invoice: %w", err)
	}

	fee := decimal.Zero
	if shipment.DriverAssist {
		fee = shipment.DriverAssistFee
	}

	invoice = &domain.Invoice{
		ID:              uuid.New().String(),
		ShipmentID:      shipment.ID,
		InvoiceNumber:   newInvoiceNumber(),
		Status:          domain.InvoiceStatusPending,
		Amount:          shipment.BasePrice,
		DriverAssistFee: fee,
	}

	err = s.invoiceRepo.Create(ctx, invoice)
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost a race with a concurrent attempt; use the winner's invoice.
		existing, err := s.invoiceRepo.GetByShipmentID(ctx, shipment.ID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load invoice: %w", err)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to save invoice: %w", err)
	}

	return invoice, true, nil
}

// ensureProcessorCustomer returns the user's processor customer id, creating
// the customer lazily on the first payment and caching the id on the user.
func (s *PaymentService) ensureProcessorCustomer(ctx context.Context, userID string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	if user.ProcessorCustomerID != "" {
		return user.ProcessorCustomerID, nil
	}

	customerID, err := s.processor.CreateCustomer(ctx, processor.CustomerParams{
		Email: user.Email,
		Name:  user.FullName(),
	})
	if err != nil {
		return "", err
	}

	if err := s.userRepo.UpdateProcessorCustomerID(ctx, userID, customerID); err != nil {
		return "", fmt.Errorf("failed to save customer id: %w", err)
	}

	return customerID, nil
}

// rollbackInvoice deletes an invoice created within a failed payment
// attempt. Pre-existing invoices survive the failure.
func (s *PaymentService) rollbackInvoice(ctx context.Context, invoice *domain.Invoice, created bool) {
	if !created {
		return
	}
	if err := s.invoiceRepo.Delete(ctx, invoice.ID); err != nil {
		log.Printf("[PAYMENT] failed to roll back invoice %s: %v", invoice.ID, err)
	}
}

func (s *PaymentService) notifyOutcome(ctx context.Context, payment *domain.Payment) {
	s.notifyOutcomeTo(ctx, payment, "")
}

// notifyOutcomeTo sends the payment outcome notification. When userID is
// empty it is resolved through the invoice's shipment.
func (s *PaymentService) notifyOutcomeTo(ctx context.Context, payment *domain.Payment, userID string) {
	if s.notifications == nil {
		return
	}

	if userID == "" {
		invoice, err := s.invoiceRepo.GetByID(ctx, payment.InvoiceID)
		if err != nil {
			return
		}
		shipment, err := s.shipmentRepo.GetByID(ctx, invoice.ShipmentID)
		if err != nil {
			return
		}
		userID = shipment.UserID
	}

	switch payment.Status {
	case domain.PaymentStatusSucceeded:
		_ = s.notifications.NotifyPaymentSucceeded(ctx, payment, userID)
	case domain.PaymentStatusFailed:
		_ = s.notifications.NotifyPaymentFailed(ctx, payment, userID)
	}
}

// newInvoiceNumber generates a short human-readable invoice number.
func newInvoiceNumber() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "INV-" + strings.ToUpper(hex[:8])
}
