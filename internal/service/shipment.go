package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"shiporbit/internal/domain"
	"shiporbit/internal/pricing"
	"shiporbit/internal/repository"
)

// ShipmentService drives the three-step booking wizard and the shipment
// lifecycle after booking. Step one prices the shipment from the route
// quote cache; a route that was never quoted cannot be booked.
type ShipmentService struct {
	shipmentRepo  repository.ShipmentRepository
	locationRepo  repository.LocationRepository
	quoteRepo     repository.RouteQuoteRepository
	historyRepo   repository.StatusHistoryRepository
	notifications *NotificationService
}

// NewShipmentService creates a new ShipmentService.
func NewShipmentService(
	shipmentRepo repository.ShipmentRepository,
	locationRepo repository.LocationRepository,
	quoteRepo repository.RouteQuoteRepository,
	historyRepo repository.StatusHistoryRepository,
	notifications *NotificationService,
) *ShipmentService {
	return &ShipmentService{
		shipmentRepo:  shipmentRepo,
		locationRepo:  locationRepo,
		quoteRepo:     quoteRepo,
		historyRepo:   historyRepo,
		notifications: notifications,
	}
}

// CreateShipmentRequest contains the parameters for wizard step one.
type CreateShipmentRequest struct {
	UserID        string
	PickupCityID  int64
	DropoffCityID int64
	Equipment     domain.Equipment
	PickupDate    time.Time
	DropoffDate   time.Time
}

// CreateShipment starts a booking (wizard step one). Pricing is copied
// from the cached quote for the route; requesting an unquoted route is a
// validation error, not a trigger for recomputation.
func (s *ShipmentService) CreateShipment(ctx context.Context, req CreateShipmentRequest) (*domain.Shipment, error) {
	if !req.Equipment.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEquipment, req.Equipment)
	}
	if req.PickupDate.IsZero() {
		return nil, fmt.Errorf("%w: pickup date is required", ErrValidation)
	}

	quote, err := s.quoteRepo.GetByRoute(ctx, req.PickupCityID, req.DropoffCityID, req.Equipment)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: request a quote for the route first", ErrQuoteNotFound)
		}
		return nil, fmt.Errorf("failed to look up quote: %w", err)
	}

	shipment := &domain.Shipment{
		ID:              uuid.New().String(),
		UserID:          req.UserID,
		Status:          domain.ShipmentStatusUnfinished,
		Equipment:       req.Equipment,
		PickupDate:      req.PickupDate,
		DropoffDate:     req.DropoffDate,
		BasePrice:       quote.BasePrice,
		Miles:           quote.Miles,
		MinTransitTime:  quote.MinTransitTime,
		DriverAssistFee: pricing.DriverAssistFee,
	}

	if err := s.shipmentRepo.Create(ctx, shipment); err != nil {
		return nil, fmt.Errorf("failed to save shipment: %w", err)
	}

	stops := []*domain.Location{
		{
			ShipmentID:   shipment.ID,
			LocationType: domain.LocationTypePickup,
			CityID:       req.PickupCityID,
			Date:         req.PickupDate,
		},
		{
			ShipmentID:   shipment.ID,
			LocationType: domain.LocationTypeDropoff,
			CityID:       req.DropoffCityID,
			Date:         req.DropoffDate,
		},
	}
	for _, stop := range stops {
		if err := s.locationRepo.Create(ctx, stop); err != nil {
			return nil, fmt.Errorf("failed to save location: %w", err)
		}
	}

	return shipment, nil
}

// StopDetails carries the appointment details for one stop.
type StopDetails struct {
	FacilityName    string
	FacilityAddress string
	ZipCode         string

	ContactName string
	PhoneNumber string
	Email       string

	SchedulingPreference domain.SchedulingPreference

	LocationNumber  string
	AdditionalNotes string
}

// UpdateAppointmentRequest contains the parameters for wizard step two.
type UpdateAppointmentRequest struct {
	UserID     string
	ShipmentID string

	DriverAssist bool

	Pickup  StopDetails
	Dropoff StopDetails
}

// UpdateAppointment fills in facility and contact details for both stops
// (wizard step two) and records whether driver assistance is requested.
func (s *ShipmentService) UpdateAppointment(ctx context.Context, req UpdateAppointmentRequest) (*domain.Shipment, error) {
	shipment, err := s.getOwned(ctx, req.ShipmentID, req.UserID)
	if err != nil {
		return nil, err
	}

	shipment.DriverAssist = req.DriverAssist
	if err := s.shipmentRepo.Update(ctx, shipment); err != nil {
		return nil, fmt.Errorf("failed to save shipment: %w", err)
	}

	for locationType, details := range map[domain.LocationType]StopDetails{
		domain.LocationTypePickup:  req.Pickup,
		domain.LocationTypeDropoff: req.Dropoff,
	} {
		location := &domain.Location{
			ShipmentID:           shipment.ID,
			LocationType:         locationType,
			FacilityName:         details.FacilityName,
			FacilityAddress:      details.FacilityAddress,
			ZipCode:              details.ZipCode,
			ContactName:          details.ContactName,
			PhoneNumber:          details.PhoneNumber,
			Email:                details.Email,
			SchedulingPreference: details.SchedulingPreference,
			LocationNumber:       details.LocationNumber,
			AdditionalNotes:      details.AdditionalNotes,
		}
		if err := s.locationRepo.Update(ctx, location); err != nil {
			return nil, fmt.Errorf("failed to save location: %w", err)
		}
	}

	return shipment, nil
}

// FinalizeShipmentRequest contains the parameters for wizard step three.
type FinalizeShipmentRequest struct {
	UserID     string
	ShipmentID string

	ReferenceNumber string
	Weight          int
	Commodity       string
	Packaging       int
	PackagingType   string
}

// FinalizeShipment records the cargo details (wizard step three). Once all
// details are present the shipment leaves the unfinished state and becomes
// upcoming, which is what makes it payable.
func (s *ShipmentService) FinalizeShipment(ctx context.Context, req FinalizeShipmentRequest) (*domain.Shipment, error) {
	shipment, err := s.getOwned(ctx, req.ShipmentID, req.UserID)
	if err != nil {
		return nil, err
	}

	shipment.ReferenceNumber = req.ReferenceNumber
	shipment.Weight = req.Weight
	shipment.Commodity = req.Commodity
	shipment.Packaging = req.Packaging
	shipment.PackagingType = req.PackagingType

	oldStatus := shipment.Status
	if shipment.Status == domain.ShipmentStatusUnfinished && shipment.Finalized() {
		shipment.Status = domain.ShipmentStatusUpcoming
	}

	if err := s.shipmentRepo.Update(ctx, shipment); err != nil {
		return nil, fmt.Errorf("failed to save shipment: %w", err)
	}

	if shipment.Status != oldStatus {
		s.recordTransition(ctx, shipment, oldStatus, req.UserID, "booking finalized")
		if s.notifications != nil {
			_ = s.notifications.NotifyBookingFinalized(ctx, shipment)
		}
	}

	return shipment, nil
}

// UpdateStatusRequest contains the parameters for an explicit status change.
type UpdateStatusRequest struct {
	UserID     string
	ShipmentID string
	NewStatus  domain.ShipmentStatus
	Reason     string
}

// UpdateStatus moves a shipment to a new status and records the transition.
func (s *ShipmentService) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*domain.Shipment, error) {
	if !domain.ValidShipmentStatus(req.NewStatus) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, req.NewStatus)
	}

	shipment, err := s.getOwned(ctx, req.ShipmentID, req.UserID)
	if err != nil {
		return nil, err
	}

	if shipment.Status == req.NewStatus {
		return shipment, nil
	}

	oldStatus := shipment.Status
	shipment.Status = req.NewStatus
	if err := s.shipmentRepo.Update(ctx, shipment); err != nil {
		return nil, fmt.Errorf("failed to save shipment: %w", err)
	}

	s.recordTransition(ctx, shipment, oldStatus, req.UserID, req.Reason)
	if s.notifications != nil {
		_ = s.notifications.NotifyShipmentStatus(ctx, shipment, oldStatus)
	}

	return shipment, nil
}

// GetShipment retrieves a shipment owned by the user.
func (s *ShipmentService) GetShipment(ctx context.Context, userID, shipmentID string) (*domain.Shipment, error) {
	return s.getOwned(ctx, shipmentID, userID)
}

// GetLocations returns both stops for one of the user's shipments.
func (s *ShipmentService) GetLocations(ctx context.Context, userID, shipmentID string) ([]*domain.Location, error) {
	if _, err := s.getOwned(ctx, shipmentID, userID); err != nil {
		return nil, err
	}
	return s.locationRepo.GetByShipment(ctx, shipmentID)
}

// ListShipments returns the user's shipments, optionally filtered by status.
func (s *ShipmentService) ListShipments(ctx context.Context, userID string, status domain.ShipmentStatus) ([]*domain.Shipment, error) {
	if status != "" && !domain.ValidShipmentStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	return s.shipmentRepo.ListByUser(ctx, userID, status)
}

// DeleteShipment removes a shipment along with its locations, invoice, and
// status history.
func (s *ShipmentService) DeleteShipment(ctx context.Context, userID, shipmentID string) error {
	if _, err := s.getOwned(ctx, shipmentID, userID); err != nil {
		return err
	}
	return s.shipmentRepo.Delete(ctx, shipmentID)
}

// GetHistory returns a shipment's status transitions, newest first.
func (s *ShipmentService) GetHistory(ctx context.Context, userID, shipmentID string) ([]*domain.StatusChange, error) {
	if _, err := s.getOwned(ctx, shipmentID, userID); err != nil {
		return nil, err
	}
	return s.historyRepo.ListByShipment(ctx, shipmentID)
}

// Dashboard returns the user's shipment counts per status.
func (s *ShipmentService) Dashboard(ctx context.Context, userID string) (map[domain.ShipmentStatus]int, error) {
	return s.shipmentRepo.CountByStatus(ctx, userID)
}

func (s *ShipmentService) getOwned(ctx context.Context, shipmentID, userID string) (*domain.Shipment, error) {
	shipment, err := s.shipmentRepo.GetByIDForUser(ctx, shipmentID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, fmt.Errorf("failed to load shipment: %w", err)
	}
	return shipment, nil
}

// recordTransition appends to the status history. History is best effort;
// a failed write is logged but does not fail the transition itself.
func (s *ShipmentService) recordTransition(ctx context.Context, shipment *domain.Shipment, oldStatus domain.ShipmentStatus, changedBy, reason string) {
	err := s.historyRepo.Create(ctx, &domain.StatusChange{
		ShipmentID: shipment.ID,
		OldStatus:  oldStatus,
		NewStatus:  shipment.Status,
		ChangedBy:  changedBy,
		Reason:     reason,
	})
	if err != nil {
		log.Printf("[SHIPMENT] failed to record status change for %s: %v", shipment.ID, err)
	}
}
