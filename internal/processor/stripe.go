package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeClient implements Client against the Stripe API.
type StripeClient struct {
	api           *client.API
	webhookSecret string
}

// Ensure the interface is satisfied.
var _ Client = (*StripeClient)(nil)

// NewStripeClient creates a Stripe-backed processor client. The secret key
// and webhook secret come from configuration; no package-global API state
// is used.
func NewStripeClient(secretKey, webhookSecret string) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &StripeClient{
		api:           api,
		webhookSecret: webhookSecret,
	}
}

// CreateCustomer creates a Stripe customer record and returns its id.
func (c *StripeClient) CreateCustomer(ctx context.Context, params CustomerParams) (string, error) {
	customerParams := &stripe.CustomerParams{
		Email: stripe.String(params.Email),
		Name:  stripe.String(params.Name),
	}
	customerParams.Context = ctx

	customer, err := c.api.Customers.New(customerParams)
	if err != nil {
		return "", mapStripeError(err)
	}

	return customer.ID, nil
}

// CreateIntent creates a payment intent, optionally confirming it
// immediately with manual confirmation so follow-up actions (3D Secure)
// surface as requires_action rather than failing outright.
func (c *StripeClient) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	intentParams := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(params.AmountCents),
		Currency:      stripe.String(params.Currency),
		Customer:      stripe.String(params.CustomerID),
		PaymentMethod: stripe.String(params.PaymentMethodID),
	}
	intentParams.Context = ctx

	if params.Confirm {
		intentParams.ConfirmationMethod = stripe.String(string(stripe.PaymentIntentConfirmationMethodManual))
		intentParams.Confirm = stripe.Bool(true)
		intentParams.ReturnURL = stripe.String(params.ReturnURL)
	}

	if len(params.Metadata) > 0 {
		intentParams.Metadata = make(map[string]string, len(params.Metadata))
		for k, v := range params.Metadata {
			intentParams.Metadata[k] = v
		}
	}

	pi, err := c.api.PaymentIntents.New(intentParams)
	if err != nil {
		return nil, mapStripeError(err)
	}

	return intentFromStripe(pi), nil
}

// ConfirmIntent re-confirms an intent that required further action.
func (c *StripeClient) ConfirmIntent(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.Confirm(intentID, params)
	if err != nil {
		return nil, mapStripeError(err)
	}

	return intentFromStripe(pi), nil
}

// GetIntent retrieves the current state of an intent.
func (c *StripeClient) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, mapStripeError(err)
	}

	return intentFromStripe(pi), nil
}

// VerifyWebhook checks the Stripe signature header and decodes the event's
// payment intent payload.
func (c *StripeClient) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, signature, c.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook verification: %w", err)
	}

	event := &Event{Type: string(stripeEvent.Type)}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(stripeEvent.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("webhook payload: %w", err)
	}

	event.IntentID = pi.ID
	if pi.LastPaymentError != nil {
		event.FailureMessage = pi.LastPaymentError.Msg
	}

	return event, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	intent := &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}

	if pi.Status == stripe.PaymentIntentStatusRequiresAction {
		intent.RequiresAction = true
	}
	if pi.LastPaymentError != nil {
		intent.FailureMessage = pi.LastPaymentError.Msg
	}

	return intent
}

// mapStripeError converts Stripe SDK errors into the processor-agnostic
// Error type so the vendor SDK does not leak into the service layer.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &Error{
			Code:    string(stripeErr.Code),
			Message: stripeErr.Msg,
		}
	}
	return &Error{Message: err.Error()}
}
