package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"shiporbit/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationBookingFinalized NotificationType = "BOOKING_FINALIZED"
	NotificationPaymentSucceeded NotificationType = "PAYMENT_SUCCEEDED"
	NotificationPaymentFailed    NotificationType = "PAYMENT_FAILED"
	NotificationShipmentStatus   NotificationType = "SHIPMENT_STATUS"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService handles notification delivery.
type NotificationService struct {
	// In a real system, this would have:
	// - Email client (SendGrid)
	// - SMS client (Twilio)
	// - Push notification client for the shipper mobile app
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyBookingFinalized notifies the shipper that their booking is confirmed.
func (s *NotificationService) NotifyBookingFinalized(ctx context.Context, shipment *domain.Shipment) error {
	notification := Notification{
		Type:        NotificationBookingFinalized,
		RecipientID: shipment.UserID,
		Title:       "Booking Confirmed",
		Message:     fmt.Sprintf("Your shipment %s is booked for pickup on %s", shipment.ID, shipment.PickupDate.Format("2006-01-02")),
		Data: map[string]interface{}{
			"shipment_id": shipment.ID,
			"pickup_date": shipment.PickupDate,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyPaymentSucceeded notifies the shipper of a successful payment.
func (s *NotificationService) NotifyPaymentSucceeded(ctx context.Context, payment *domain.Payment, userID string) error {
	notification := Notification{
		Type:        NotificationPaymentSucceeded,
		RecipientID: userID,
		Title:       "Payment Successful",
		Message:     fmt.Sprintf("Payment of $%s was successful", payment.Amount.StringFixed(2)),
		Data: map[string]interface{}{
			"payment_id": payment.ID,
			"invoice_id": payment.InvoiceID,
			"amount":     payment.Amount.StringFixed(2),
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyPaymentFailed notifies the shipper of a failed payment.
func (s *NotificationService) NotifyPaymentFailed(ctx context.Context, payment *domain.Payment, userID string) error {
	notification := Notification{
		Type:        NotificationPaymentFailed,
		RecipientID: userID,
		Title:       "Payment Failed",
		Message:     fmt.Sprintf("Payment of $%s failed. Please try again.", payment.Amount.StringFixed(2)),
		Data: map[string]interface{}{
			"payment_id": payment.ID,
			"invoice_id": payment.InvoiceID,
			"reason":     payment.FailureReason,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyShipmentStatus notifies the shipper about a status transition.
func (s *NotificationService) NotifyShipmentStatus(ctx context.Context, shipment *domain.Shipment, oldStatus domain.ShipmentStatus) error {
	notification := Notification{
		Type:        NotificationShipmentStatus,
		RecipientID: shipment.UserID,
		Title:       "Shipment Update",
		Message:     fmt.Sprintf("Shipment %s moved from %s to %s", shipment.ID, oldStatus, shipment.Status),
		Data: map[string]interface{}{
			"shipment_id": shipment.ID,
			"old_status":  oldStatus,
			"new_status":  shipment.Status,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// send delivers a notification (mock implementation).
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	// In a real implementation, this would:
	// 1. Store the notification in the database
	// 2. Send email/SMS through the configured providers
	// 3. Push to the shipper mobile app

	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)

	return nil
}
