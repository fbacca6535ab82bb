package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shiporbit/internal/processor"
	"shiporbit/internal/repository"
	"shiporbit/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// userID returns the authenticated user id from the request, or aborts with
// 401. Authentication itself happens upstream at the API gateway; this
// service trusts the forwarded identity header.
func userID(c *gin.Context) (string, bool) {
	id := c.GetHeader("X-User-ID")
	if id == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing user identity"})
		return "", false
	}
	return id, true
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	// Processor declines carry the processor's message and map to 402.
	var procErr *processor.Error
	if errors.As(err, &procErr) {
		return http.StatusPaymentRequired
	}

	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrCityNotFound),
		errors.Is(err, service.ErrShipmentNotFound),
		errors.Is(err, service.ErrInvoiceNotFound),
		errors.Is(err, service.ErrPaymentNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidEquipment),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrQuoteNotFound),
		errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrShipmentNotPayable),
		errors.Is(err, service.ErrInvoiceNotPending),
		errors.Is(err, service.ErrInvoiceExists):
		return http.StatusConflict

	// Unprocessable quote requests (missing coordinates, etc.)
	case errors.Is(err, service.ErrQuoteComputation):
		return http.StatusUnprocessableEntity

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
