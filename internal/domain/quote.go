package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Equipment represents the trailer type for a shipment.
type Equipment string

const (
	EquipmentDryVan Equipment = "dryVan"
	EquipmentReefer Equipment = "reefer"
)

// Valid reports whether the equipment type is one we can price.
func (e Equipment) Valid() bool {
	return e == EquipmentDryVan || e == EquipmentReefer
}

// RouteQuote is a cached price calculation for a route and equipment type.
// The (pickup, dropoff, equipment) key is directional and unique; rows are
// written once on first computation and never updated or evicted.
type RouteQuote struct {
	ID             int64
	PickupCityID   int64
	DropoffCityID  int64
	Equipment      Equipment
	Miles          int
	BasePrice      decimal.Decimal
	MinTransitTime int // days
	CreatedAt      time.Time
}
