package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shiporbit/internal/domain"
	"shiporbit/internal/processor"
	"shiporbit/internal/service"
)

// PaymentHandler handles HTTP requests for payments, including the
// processor webhook.
type PaymentHandler struct {
	paymentService  *service.PaymentService
	processorClient processor.Client
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService, processorClient processor.Client) *PaymentHandler {
	return &PaymentHandler{
		paymentService:  paymentService,
		processorClient: processorClient,
	}
}

// CreatePaymentRequest is the HTTP request body for starting a payment.
type CreatePaymentRequest struct {
	ShipmentID      string `json:"shipment_id"`
	PaymentMethodID string `json:"payment_method_id"`
	ReturnURL       string `json:"return_url"`
}

// PaymentResponse is the HTTP response for payment operations.
type PaymentResponse struct {
	ID             string `json:"id"`
	InvoiceID      string `json:"invoice_id"`
	IntentID       string `json:"intent_id"`
	Amount         string `json:"amount"`
	Status         string `json:"status"`
	FailureReason  string `json:"failure_reason,omitempty"`
	ClientSecret   string `json:"client_secret,omitempty"`
	RequiresAction bool   `json:"requires_action"`
	CreatedAt      string `json:"created_at,omitempty"`
}

func paymentResponse(p *domain.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:             p.ID,
		InvoiceID:      p.InvoiceID,
		IntentID:       p.ProcessorIntentID,
		Amount:         p.Amount.StringFixed(2),
		Status:         string(p.Status),
		FailureReason:  p.FailureReason,
		ClientSecret:   p.ClientSecret,
		RequiresAction: p.Status == domain.PaymentStatusRequiresAction,
	}
	if !p.CreatedAt.IsZero() {
		resp.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

// CreatePayment handles POST /v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.ShipmentID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "shipment_id is required"})
		return
	}
	if req.PaymentMethodID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "payment_method_id is required"})
		return
	}

	payment, err := h.paymentService.CreatePaymentAttempt(c.Request.Context(), service.CreatePaymentAttemptRequest{
		UserID:          uid,
		ShipmentID:      req.ShipmentID,
		PaymentMethodID: req.PaymentMethodID,
		ReturnURL:       req.ReturnURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, paymentResponse(payment))
}

// ConfirmPayment handles POST /v1/payments/:intent_id/confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.ConfirmPaymentAttempt(c.Request.Context(), uid, c.Param("intent_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, paymentResponse(payment))
}

// GetPayment handles GET /v1/payments/:intent_id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.PollStatus(c.Request.Context(), uid, c.Param("intent_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, paymentResponse(payment))
}

// ListPayments handles GET /v1/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, paymentResponse(p))
	}

	respondJSON(c, http.StatusOK, resp)
}

// Webhook handles POST /v1/webhooks/stripe
//
// The processor retries on non-2xx, so the handler only errors on requests
// it genuinely cannot process: bad signatures and transient reconciliation
// failures. Events for unknown intents are acknowledged and dropped.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable payload"})
		return
	}

	event, err := h.processorClient.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid signature"})
		return
	}

	if err := h.paymentService.HandleWebhookEvent(c.Request.Context(), event); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "reconciliation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
