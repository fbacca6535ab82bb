package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShipmentStatus represents the current status of a shipment.
type ShipmentStatus string

const (
	ShipmentStatusUnfinished ShipmentStatus = "unfinished"
	ShipmentStatusUpcoming   ShipmentStatus = "upcoming"
	ShipmentStatusInProgress ShipmentStatus = "inprogress"
	ShipmentStatusPast       ShipmentStatus = "past"
)

// ValidShipmentStatus reports whether s is a known shipment status.
func ValidShipmentStatus(s ShipmentStatus) bool {
	switch s {
	case ShipmentStatusUnfinished, ShipmentStatusUpcoming, ShipmentStatusInProgress, ShipmentStatusPast:
		return true
	}
	return false
}

// Shipment is a freight booking owned by a user. It is created in the
// unfinished state by the booking wizard and moves to upcoming once
// finalized, then to inprogress when its invoice is paid.
type Shipment struct {
	ID        string
	UserID    string
	Status    ShipmentStatus
	Equipment Equipment

	PickupDate  time.Time
	DropoffDate time.Time

	// Pricing, copied from the RouteQuote cache at creation.
	BasePrice       decimal.Decimal
	Miles           int
	MinTransitTime  int // days
	DriverAssist    bool
	DriverAssistFee decimal.Decimal

	// Finalization details (wizard step 3).
	ReferenceNumber string
	Weight          int
	Commodity       string
	Packaging       int
	PackagingType   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalPrice is the base price plus the driver-assist fee when requested.
func (s *Shipment) TotalPrice() decimal.Decimal {
	if s.DriverAssist {
		return s.BasePrice.Add(s.DriverAssistFee)
	}
	return s.BasePrice
}

// Finalized reports whether all step-3 details are filled in; a finalized
// shipment is eligible for the upcoming status.
func (s *Shipment) Finalized() bool {
	return s.ReferenceNumber != "" && s.Weight > 0 && s.Commodity != "" &&
		s.Packaging > 0 && s.PackagingType != ""
}

// LocationType distinguishes a shipment's pickup stop from its dropoff stop.
type LocationType string

const (
	LocationTypePickup  LocationType = "pickup"
	LocationTypeDropoff LocationType = "dropoff"
)

// SchedulingPreference represents how a facility appointment is arranged.
type SchedulingPreference string

const (
	SchedulingFirstCome        SchedulingPreference = "first_come"
	SchedulingAlreadyScheduled SchedulingPreference = "already_scheduled"
	SchedulingToBeScheduled    SchedulingPreference = "to_be_scheduled"
)

// Location is a pickup or dropoff stop for a shipment. Each shipment has
// exactly one location per type.
type Location struct {
	ID           int64
	ShipmentID   string
	LocationType LocationType
	CityID       int64
	Date         time.Time

	FacilityName    string
	FacilityAddress string
	ZipCode         string

	ContactName string
	PhoneNumber string
	Email       string

	SchedulingPreference SchedulingPreference

	LocationNumber  string
	AdditionalNotes string

	CreatedAt time.Time
}

// StatusChange records a shipment status transition for auditing.
type StatusChange struct {
	ID         int64
	ShipmentID string
	OldStatus  ShipmentStatus
	NewStatus  ShipmentStatus
	ChangedBy  string
	Reason     string
	CreatedAt  time.Time
}
