package pricing

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"shiporbit/internal/domain"
)

const (
	nycLat = 40.7128
	nycLon = -74.0060
	laLat  = 34.0522
	laLon  = -118.2437
)

func TestDistance_NYCToLA(t *testing.T) {
	miles := Distance(nycLat, nycLon, laLat, laLon)

	if math.Abs(miles-2445) > 5 {
		t.Errorf("expected NYC-LA distance within 2445±5 miles, got %.2f", miles)
	}
}

func TestDistance_SamePoint(t *testing.T) {
	if miles := Distance(nycLat, nycLon, nycLat, nycLon); miles != 0 {
		t.Errorf("expected 0 miles for identical coordinates, got %.2f", miles)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	there := Distance(nycLat, nycLon, laLat, laLon)
	back := Distance(laLat, laLon, nycLat, nycLon)

	if there != back {
		t.Errorf("expected symmetric distance, got %.2f and %.2f", there, back)
	}
}

func TestBasePrice_ByEquipment(t *testing.T) {
	testCases := []struct {
		name      string
		miles     float64
		equipment domain.Equipment
		expected  string
	}{
		{"dry van", 1000, domain.EquipmentDryVan, "3000.00"},
		{"reefer", 1000, domain.EquipmentReefer, "3750.00"},
		{"zero distance dry van", 0, domain.EquipmentDryVan, "500.00"},
		{"zero distance reefer", 0, domain.EquipmentReefer, "500.00"},
		{"fractional miles", 2445.57, domain.EquipmentDryVan, "6613.93"},
		{"unknown equipment priced as dry van", 1000, domain.Equipment("flatbed"), "3000.00"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := BasePrice(tc.miles, tc.equipment)
			expected, err := decimal.NewFromString(tc.expected)
			if err != nil {
				t.Fatalf("bad expectation %q: %v", tc.expected, err)
			}

			if !got.Equal(expected) {
				t.Errorf("expected %s, got %s", expected, got)
			}
		})
	}
}

func TestBasePrice_ReeferCostsMore(t *testing.T) {
	dryVan := BasePrice(2445.57, domain.EquipmentDryVan)
	reefer := BasePrice(2445.57, domain.EquipmentReefer)

	if !reefer.GreaterThan(dryVan) {
		t.Errorf("expected reefer price %s to exceed dry van price %s", reefer, dryVan)
	}
}

func TestTransitTime(t *testing.T) {
	testCases := []struct {
		name     string
		miles    float64
		expected int
	}{
		{"zero miles floors at one day", 0, 1},
		{"short hop", 120, 1},
		{"exact boundary", 500, 1},
		{"just over boundary", 500.01, 2},
		{"cross country", 2445, 5},
		{"long haul", 2501, 6},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TransitTime(tc.miles); got != tc.expected {
				t.Errorf("TransitTime(%.2f): expected %d days, got %d", tc.miles, tc.expected, got)
			}
		})
	}
}
