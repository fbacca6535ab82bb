// Package pricing holds the pure rate math behind route quotes: great-circle
// distance, base price, and minimum transit time. All functions are
// deterministic; the rate constants are fixed in code, so cached results
// derived from them stay valid until the constants themselves change.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"shiporbit/internal/domain"
)

const (
	// earthRadiusMiles is the Earth radius used by the Haversine formula.
	earthRadiusMiles = 3958.8

	// milesPerDay is the assumed average daily progress including stops.
	milesPerDay = 500
)

var (
	ratePerMile = decimal.NewFromFloat(2.50)
	baseFee     = decimal.NewFromFloat(500.00)

	// DriverAssistFee is the flat fee for driver-assisted loading.
	DriverAssistFee = decimal.NewFromFloat(150.00)

	equipmentMultipliers = map[domain.Equipment]decimal.Decimal{
		domain.EquipmentDryVan: decimal.NewFromFloat(1.0),
		domain.EquipmentReefer: decimal.NewFromFloat(1.3),
	}
)

// Distance returns the great-circle distance in miles between two
// coordinates, rounded to two decimals.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := radians(lat1)
	rlon1 := radians(lon1)
	rlat2 := radians(lat2)
	rlon2 := radians(lon2)

	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1

	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(rlat1)*math.Cos(rlat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return round2(earthRadiusMiles * c)
}

// BasePrice returns miles x 2.50 x equipment multiplier plus the 500.00 base
// fee, rounded to two decimals. Unknown equipment prices as dryVan.
func BasePrice(miles float64, equipment domain.Equipment) decimal.Decimal {
	multiplier, ok := equipmentMultipliers[equipment]
	if !ok {
		multiplier = equipmentMultipliers[domain.EquipmentDryVan]
	}

	return decimal.NewFromFloat(miles).Mul(ratePerMile).Mul(multiplier).Add(baseFee).Round(2)
}

// TransitTime returns the minimum transit time in days for a distance,
// never less than one day.
func TransitTime(miles float64) int {
	days := int(math.Ceil(miles / milesPerDay))
	if days < 1 {
		return 1
	}
	return days
}

// RoundMiles converts a fractional distance to the whole-mile figure
// shown on quotes.
func RoundMiles(miles float64) int {
	return int(math.Round(miles))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
