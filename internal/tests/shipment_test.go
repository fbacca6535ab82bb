package tests

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"shiporbit/internal/domain"
	"shiporbit/internal/service"
)

type shipmentFixture struct {
	svc       *service.ShipmentService
	shipments *MockShipmentRepository
	locations *MockLocationRepository
	quotes    *MockRouteQuoteRepository
	history   *MockStatusHistoryRepository
}

func newShipmentFixture() *shipmentFixture {
	shipments := NewMockShipmentRepository()
	locations := NewMockLocationRepository()
	quotes := NewMockRouteQuoteRepository()
	history := NewMockStatusHistoryRepository()

	quotes.AddQuote(&domain.RouteQuote{
		ID:             1,
		PickupCityID:   1,
		DropoffCityID:  2,
		Equipment:      domain.EquipmentDryVan,
		Miles:          1000,
		BasePrice:      decimal.NewFromFloat(3000.00),
		MinTransitTime: 2,
		CreatedAt:      time.Now(),
	})

	svc := service.NewShipmentService(shipments, locations, quotes, history, service.NewNotificationService())
	return &shipmentFixture{
		svc:       svc,
		shipments: shipments,
		locations: locations,
		quotes:    quotes,
		history:   history,
	}
}

func (f *shipmentFixture) createShipment(t *testing.T) *domain.Shipment {
	t.Helper()
	shipment, err := f.svc.CreateShipment(context.Background(), service.CreateShipmentRequest{
		UserID:        "u1",
		PickupCityID:  1,
		DropoffCityID: 2,
		Equipment:     domain.EquipmentDryVan,
		PickupDate:    time.Now().Add(72 * time.Hour),
		DropoffDate:   time.Now().Add(120 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateShipment failed: %v", err)
	}
	return shipment
}

func TestBookingWizard(t *testing.T) {
	f := newShipmentFixture()
	ctx := context.Background()

	// Step one: price comes from the cached quote.
	shipment := f.createShipment(t)

	if shipment.Status != domain.ShipmentStatusUnfinished {
		t.Errorf("status = %s, want unfinished", shipment.Status)
	}
	if shipment.BasePrice.StringFixed(2) != "3000.00" {
		t.Errorf("base price = %s, want 3000.00 from the quote cache", shipment.BasePrice)
	}
	if shipment.Miles != 1000 || shipment.MinTransitTime != 2 {
		t.Errorf("miles/transit = %d/%d, want 1000/2", shipment.Miles, shipment.MinTransitTime)
	}
	if shipment.DriverAssistFee.StringFixed(2) != "150.00" {
		t.Errorf("driver assist fee = %s, want 150.00", shipment.DriverAssistFee)
	}

	pickup := f.locations.GetLocation(shipment.ID, domain.LocationTypePickup)
	dropoff := f.locations.GetLocation(shipment.ID, domain.LocationTypeDropoff)
	if pickup == nil || dropoff == nil {
		t.Fatal("stops were not created")
	}
	if pickup.CityID != 1 || dropoff.CityID != 2 {
		t.Errorf("stop cities = %d/%d, want 1/2", pickup.CityID, dropoff.CityID)
	}

	// Step two: appointment details and driver assist.
	shipment, err := f.svc.UpdateAppointment(ctx, service.UpdateAppointmentRequest{
		UserID:       "u1",
		ShipmentID:   shipment.ID,
		DriverAssist: true,
		Pickup: service.StopDetails{
			FacilityName:         "Hudson Yards Dock 4",
			ContactName:          "Sam",
			PhoneNumber:          "555-0100",
			SchedulingPreference: domain.SchedulingFirstCome,
		},
		Dropoff: service.StopDetails{
			FacilityName:         "Long Beach Warehouse",
			ContactName:          "Alex",
			SchedulingPreference: domain.SchedulingToBeScheduled,
		},
	})
	if err != nil {
		t.Fatalf("UpdateAppointment failed: %v", err)
	}

	if !shipment.DriverAssist {
		t.Error("driver assist was not recorded")
	}
	if shipment.TotalPrice().StringFixed(2) != "3150.00" {
		t.Errorf("total = %s, want 3150.00 with driver assist", shipment.TotalPrice())
	}
	pickup = f.locations.GetLocation(shipment.ID, domain.LocationTypePickup)
	if pickup.FacilityName != "Hudson Yards Dock 4" {
		t.Errorf("pickup facility = %q, want the appointment details", pickup.FacilityName)
	}
	if pickup.CityID != 1 {
		t.Errorf("pickup city = %d, want preserved from step one", pickup.CityID)
	}
	if shipment.Status != domain.ShipmentStatusUnfinished {
		t.Errorf("status = %s, want still unfinished after step two", shipment.Status)
	}

	// Step three: cargo details promote the shipment to upcoming.
	shipment, err = f.svc.FinalizeShipment(ctx, service.FinalizeShipmentRequest{
		UserID:          "u1",
		ShipmentID:      shipment.ID,
		ReferenceNumber: "REF-1001",
		Weight:          18000,
		Commodity:       "electronics",
		Packaging:       12,
		PackagingType:   "pallets",
	})
	if err != nil {
		t.Fatalf("FinalizeShipment failed: %v", err)
	}

	if shipment.Status != domain.ShipmentStatusUpcoming {
		t.Errorf("status = %s, want upcoming", shipment.Status)
	}

	changes, err := f.svc.GetHistory(ctx, "u1", shipment.ID)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("history entries = %d, want 1", len(changes))
	}
	if changes[0].OldStatus != domain.ShipmentStatusUnfinished || changes[0].NewStatus != domain.ShipmentStatusUpcoming {
		t.Errorf("transition = %s -> %s, want unfinished -> upcoming", changes[0].OldStatus, changes[0].NewStatus)
	}
}

func TestCreateShipmentUnquotedRoute(t *testing.T) {
	f := newShipmentFixture()

	_, err := f.svc.CreateShipment(context.Background(), service.CreateShipmentRequest{
		UserID:        "u1",
		PickupCityID:  1,
		DropoffCityID: 9, // never quoted
		Equipment:     domain.EquipmentDryVan,
		PickupDate:    time.Now().Add(72 * time.Hour),
	})
	if !errors.Is(err, service.ErrQuoteNotFound) {
		t.Fatalf("error = %v, want ErrQuoteNotFound", err)
	}
}

func TestCreateShipmentEquipmentMustMatchQuote(t *testing.T) {
	f := newShipmentFixture()

	// Only the dry van quote is cached for the route.
	_, err := f.svc.CreateShipment(context.Background(), service.CreateShipmentRequest{
		UserID:        "u1",
		PickupCityID:  1,
		DropoffCityID: 2,
		Equipment:     domain.EquipmentReefer,
		PickupDate:    time.Now().Add(72 * time.Hour),
	})
	if !errors.Is(err, service.ErrQuoteNotFound) {
		t.Fatalf("error = %v, want ErrQuoteNotFound for an unquoted equipment type", err)
	}
}

func TestFinalizeIncompleteStaysUnfinished(t *testing.T) {
	f := newShipmentFixture()
	shipment := f.createShipment(t)

	updated, err := f.svc.FinalizeShipment(context.Background(), service.FinalizeShipmentRequest{
		UserID:          "u1",
		ShipmentID:      shipment.ID,
		ReferenceNumber: "REF-1001",
		Weight:          18000,
		// commodity, packaging missing
	})
	if err != nil {
		t.Fatalf("FinalizeShipment failed: %v", err)
	}

	if updated.Status != domain.ShipmentStatusUnfinished {
		t.Errorf("status = %s, want unfinished with incomplete details", updated.Status)
	}
	if f.history.ChangeCount() != 0 {
		t.Errorf("history entries = %d, want 0", f.history.ChangeCount())
	}
}

func TestUpdateStatusRecordsHistory(t *testing.T) {
	f := newShipmentFixture()
	shipment := f.createShipment(t)
	ctx := context.Background()

	updated, err := f.svc.UpdateStatus(ctx, service.UpdateStatusRequest{
		UserID:     "u1",
		ShipmentID: shipment.ID,
		NewStatus:  domain.ShipmentStatusPast,
		Reason:     "delivered",
	})
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != domain.ShipmentStatusPast {
		t.Errorf("status = %s, want past", updated.Status)
	}
	if f.history.ChangeCount() != 1 {
		t.Fatalf("history entries = %d, want 1", f.history.ChangeCount())
	}

	// Repeating the same status is a no-op.
	if _, err := f.svc.UpdateStatus(ctx, service.UpdateStatusRequest{
		UserID:     "u1",
		ShipmentID: shipment.ID,
		NewStatus:  domain.ShipmentStatusPast,
	}); err != nil {
		t.Fatalf("repeated UpdateStatus failed: %v", err)
	}
	if f.history.ChangeCount() != 1 {
		t.Errorf("history entries after no-op = %d, want 1", f.history.ChangeCount())
	}

	_, err = f.svc.UpdateStatus(ctx, service.UpdateStatusRequest{
		UserID:     "u1",
		ShipmentID: shipment.ID,
		NewStatus:  "lost",
	})
	if !errors.Is(err, service.ErrInvalidStatus) {
		t.Fatalf("error = %v, want ErrInvalidStatus", err)
	}
}

func TestUpdateStatusSurvivesHistoryWriteFailure(t *testing.T) {
	f := newShipmentFixture()
	shipment := f.createShipment(t)
	f.history.CreateError = errors.New("history table unavailable")

	var logged bytes.Buffer
	log.SetOutput(&logged)
	defer log.SetOutput(os.Stderr)

	updated, err := f.svc.UpdateStatus(context.Background(), service.UpdateStatusRequest{
		UserID:     "u1",
		ShipmentID: shipment.ID,
		NewStatus:  domain.ShipmentStatusPast,
		Reason:     "delivered",
	})
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != domain.ShipmentStatusPast {
		t.Errorf("status = %s, want past despite the history failure", updated.Status)
	}
	if !strings.Contains(logged.String(), "failed to record status change") {
		t.Error("history write failure was not logged")
	}
}

func TestListShipmentsByStatus(t *testing.T) {
	f := newShipmentFixture()
	f.createShipment(t)
	f.shipments.AddShipment(&domain.Shipment{ID: "s-up", UserID: "u1", Status: domain.ShipmentStatusUpcoming})
	f.shipments.AddShipment(&domain.Shipment{ID: "s-other", UserID: "u2", Status: domain.ShipmentStatusUpcoming})
	ctx := context.Background()

	upcoming, err := f.svc.ListShipments(ctx, "u1", domain.ShipmentStatusUpcoming)
	if err != nil {
		t.Fatalf("ListShipments failed: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].ID != "s-up" {
		t.Errorf("upcoming = %v, want only s-up", upcoming)
	}

	all, err := f.svc.ListShipments(ctx, "u1", "")
	if err != nil {
		t.Fatalf("ListShipments failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all shipments = %d, want 2", len(all))
	}

	if _, err := f.svc.ListShipments(ctx, "u1", "bogus"); !errors.Is(err, service.ErrInvalidStatus) {
		t.Fatalf("error = %v, want ErrInvalidStatus", err)
	}
}

func TestDashboardCounts(t *testing.T) {
	f := newShipmentFixture()
	f.shipments.AddShipment(&domain.Shipment{ID: "a", UserID: "u1", Status: domain.ShipmentStatusUpcoming})
	f.shipments.AddShipment(&domain.Shipment{ID: "b", UserID: "u1", Status: domain.ShipmentStatusUpcoming})
	f.shipments.AddShipment(&domain.Shipment{ID: "c", UserID: "u1", Status: domain.ShipmentStatusPast})
	f.shipments.AddShipment(&domain.Shipment{ID: "d", UserID: "u2", Status: domain.ShipmentStatusPast})

	counts, err := f.svc.Dashboard(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}

	if counts[domain.ShipmentStatusUpcoming] != 2 || counts[domain.ShipmentStatusPast] != 1 {
		t.Errorf("counts = %v, want 2 upcoming and 1 past", counts)
	}
}

func TestDeleteShipmentScopedToOwner(t *testing.T) {
	f := newShipmentFixture()
	shipment := f.createShipment(t)
	ctx := context.Background()

	if err := f.svc.DeleteShipment(ctx, "u2", shipment.ID); !errors.Is(err, service.ErrShipmentNotFound) {
		t.Fatalf("error = %v, want ErrShipmentNotFound for another user", err)
	}

	if err := f.svc.DeleteShipment(ctx, "u1", shipment.ID); err != nil {
		t.Fatalf("DeleteShipment failed: %v", err)
	}
	if f.shipments.GetShipment(shipment.ID) != nil {
		t.Error("shipment still present after delete")
	}
}
