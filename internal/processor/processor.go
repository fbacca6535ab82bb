// Package processor abstracts the external payment processor. Services
// depend on the Client interface and the processor-agnostic types here;
// the Stripe implementation lives alongside and is the only place the
// vendor SDK appears.
package processor

import "context"

// Processor intent statuses as reported by the payment processor.
const (
	IntentStatusRequiresPaymentMethod = "requires_payment_method"
	IntentStatusRequiresConfirmation  = "requires_confirmation"
	IntentStatusRequiresAction        = "requires_action"
	IntentStatusProcessing            = "processing"
	IntentStatusSucceeded             = "succeeded"
	IntentStatusCanceled              = "canceled"
)

// Webhook event types this service reconciles on.
const (
	EventIntentSucceeded      = "payment_intent.succeeded"
	EventIntentPaymentFailed  = "payment_intent.payment_failed"
	EventIntentRequiresAction = "payment_intent.requires_action"
)

// Intent is the processor's view of a payment attempt.
type Intent struct {
	ID             string
	ClientSecret   string
	Status         string
	FailureMessage string
	RequiresAction bool
}

// CreateIntentParams contains the parameters for creating a payment intent.
type CreateIntentParams struct {
	AmountCents     int64
	Currency        string
	CustomerID      string
	PaymentMethodID string
	Confirm         bool
	ReturnURL       string
	Metadata        map[string]string
}

// CustomerParams contains the parameters for creating a processor customer.
type CustomerParams struct {
	Email string
	Name  string
}

// Event is a verified webhook notification from the processor.
type Event struct {
	Type           string
	IntentID       string
	FailureMessage string
}

// Client is the interface to the payment processor.
type Client interface {
	// CreateCustomer creates a customer record and returns its id.
	CreateCustomer(ctx context.Context, params CustomerParams) (string, error)

	// CreateIntent creates a payment intent, optionally confirming it
	// immediately.
	CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error)

	// ConfirmIntent re-confirms an intent that required further action.
	ConfirmIntent(ctx context.Context, intentID string) (*Intent, error)

	// GetIntent retrieves the current state of an intent.
	GetIntent(ctx context.Context, intentID string) (*Intent, error)

	// VerifyWebhook checks the event signature and returns the decoded
	// event. Events this service does not reconcile on still verify
	// successfully; callers filter by Type.
	VerifyWebhook(payload []byte, signature string) (*Event, error)
}

// Error is a processor-reported failure. It carries the processor's
// message so callers can surface it; any invoice created within the
// failing attempt is rolled back by the service layer.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return "payment processor: " + e.Message
	}
	return "payment processor: " + e.Code + ": " + e.Message
}
