package service

import "errors"

// Service-level errors
var (
	// ErrInvalidEquipment is returned when an equipment type is not recognized.
	ErrInvalidEquipment = errors.New("invalid equipment type")

	// ErrQuoteComputation is returned when a quote cannot be computed, for
	// example when a city has no coordinates on record.
	ErrQuoteComputation = errors.New("quote computation failed")

	// ErrCityNotFound is returned when a referenced city does not exist.
	ErrCityNotFound = errors.New("city not found")

	// ErrQuoteNotFound is returned when no cached quote exists for a route.
	ErrQuoteNotFound = errors.New("no quote found for route")

	// ErrShipmentNotFound is returned when a shipment does not exist or does
	// not belong to the requesting user.
	ErrShipmentNotFound = errors.New("shipment not found")

	// ErrShipmentNotPayable is returned when payment is attempted against a
	// shipment that is not in the upcoming state.
	ErrShipmentNotPayable = errors.New("shipment is not payable")

	// ErrInvoiceNotFound is returned when an invoice does not exist.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrInvoiceNotPending is returned when payment is attempted against an
	// invoice that is not pending.
	ErrInvoiceNotPending = errors.New("invoice is not pending")

	// ErrInvoiceExists is returned when an invoice already exists for a
	// shipment.
	ErrInvoiceExists = errors.New("invoice already exists for shipment")

	// ErrPaymentNotFound is returned when a payment attempt does not exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidStatus is returned when a status value or transition is not
	// recognized.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrValidation is returned when request input fails validation.
	ErrValidation = errors.New("validation failed")
)
