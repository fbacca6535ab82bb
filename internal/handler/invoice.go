package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shiporbit/internal/domain"
	"shiporbit/internal/service"
)

// InvoiceHandler handles HTTP requests for invoices.
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// InvoiceResponse is the HTTP response for invoice operations.
type InvoiceResponse struct {
	ID              string `json:"id"`
	ShipmentID      string `json:"shipment_id"`
	InvoiceNumber   string `json:"invoice_number"`
	Status          string `json:"status"`
	Amount          string `json:"amount"`
	DriverAssistFee string `json:"driver_assist_fee"`
	TotalAmount     string `json:"total_amount"`
	CreatedAt       string `json:"created_at"`
	PaidAt          string `json:"paid_at,omitempty"`
}

func invoiceResponse(inv *domain.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:              inv.ID,
		ShipmentID:      inv.ShipmentID,
		InvoiceNumber:   inv.InvoiceNumber,
		Status:          string(inv.Status),
		Amount:          inv.Amount.StringFixed(2),
		DriverAssistFee: inv.DriverAssistFee.StringFixed(2),
		TotalAmount:     inv.TotalAmount.StringFixed(2),
		CreatedAt:       inv.CreatedAt.Format(time.RFC3339),
	}
	if !inv.PaidAt.IsZero() {
		resp.PaidAt = inv.PaidAt.Format(time.RFC3339)
	}
	return resp
}

// CreateInvoiceRequest is the HTTP request body for creating an invoice.
type CreateInvoiceRequest struct {
	ShipmentID string `json:"shipment_id"`
}

// CreateInvoice handles POST /v1/invoices
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.ShipmentID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "shipment_id is required"})
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), service.CreateInvoiceRequest{
		UserID:     uid,
		ShipmentID: req.ShipmentID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, invoiceResponse(invoice))
}

// GetInvoice handles GET /v1/invoices/:id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, invoiceResponse(invoice))
}

// ListInvoices handles GET /v1/invoices
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	invoices, err := h.invoiceService.ListInvoices(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		resp = append(resp, invoiceResponse(inv))
	}

	respondJSON(c, http.StatusOK, resp)
}
