package tests

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"shiporbit/internal/domain"
	"shiporbit/internal/pricing"
	"shiporbit/internal/repository"
	"shiporbit/internal/service"
)

func floatPtr(v float64) *float64 { return &v }

func newYork() domain.City {
	return domain.City{
		ID:          1,
		Name:        "New York",
		CountryCode: "US",
		RegionCode:  "NY",
		Latitude:    floatPtr(40.7128),
		Longitude:   floatPtr(-74.0060),
	}
}

func losAngeles() domain.City {
	return domain.City{
		ID:          2,
		Name:        "Los Angeles",
		CountryCode: "US",
		RegionCode:  "CA",
		Latitude:    floatPtr(34.0522),
		Longitude:   floatPtr(-118.2437),
	}
}

func newQuoteFixture() (*service.QuoteService, *MockCityRepository, *MockRouteQuoteRepository) {
	cities := NewMockCityRepository()
	quotes := NewMockRouteQuoteRepository()
	return service.NewQuoteService(cities, quotes), cities, quotes
}

func TestGetQuoteComputesAndCaches(t *testing.T) {
	svc, _, quotes := newQuoteFixture()
	ctx := context.Background()

	nyc, la := newYork(), losAngeles()

	first, err := svc.GetQuote(ctx, service.GetQuoteRequest{
		PickupCity:  nyc,
		DropoffCity: la,
		Equipment:   domain.EquipmentDryVan,
	})
	if err != nil {
		t.Fatalf("GetQuote failed: %v", err)
	}

	distance := pricing.Distance(*nyc.Latitude, *nyc.Longitude, *la.Latitude, *la.Longitude)
	wantMiles := pricing.RoundMiles(distance)
	wantPrice := pricing.BasePrice(distance, domain.EquipmentDryVan)
	wantTransit := pricing.TransitTime(distance)

	if first.Miles != wantMiles {
		t.Errorf("miles = %d, want %d", first.Miles, wantMiles)
	}
	if !first.BasePrice.Equal(wantPrice) {
		t.Errorf("base price = %s, want %s", first.BasePrice, wantPrice)
	}
	if first.MinTransitTime != wantTransit {
		t.Errorf("transit time = %d, want %d", first.MinTransitTime, wantTransit)
	}
	if first.DriverAssistFee.StringFixed(2) != "150.00" {
		t.Errorf("driver assist fee = %s, want 150.00", first.DriverAssistFee)
	}
	if !first.TotalPriceWithAssist.Equal(first.BasePrice.Add(first.DriverAssistFee)) {
		t.Errorf("total with assist = %s, want base + fee", first.TotalPriceWithAssist)
	}

	if quotes.QuoteCount() != 1 {
		t.Fatalf("cached quotes = %d, want 1", quotes.QuoteCount())
	}

	second, err := svc.GetQuote(ctx, service.GetQuoteRequest{
		PickupCity:  nyc,
		DropoffCity: la,
		Equipment:   domain.EquipmentDryVan,
	})
	if err != nil {
		t.Fatalf("second GetQuote failed: %v", err)
	}

	if !second.BasePrice.Equal(first.BasePrice) || second.Miles != first.Miles || second.MinTransitTime != first.MinTransitTime {
		t.Errorf("second quote differs from first: %+v vs %+v", second, first)
	}
	if quotes.QuoteCount() != 1 {
		t.Errorf("cached quotes after repeat = %d, want 1", quotes.QuoteCount())
	}
	if got := atomic.LoadInt32(&quotes.CreateCallCount); got != 1 {
		t.Errorf("quote inserts = %d, want 1", got)
	}
}

func TestGetQuoteReeferCostsMore(t *testing.T) {
	svc, _, _ := newQuoteFixture()
	ctx := context.Background()

	dryVan, err := svc.GetQuote(ctx, service.GetQuoteRequest{
		PickupCity:  newYork(),
		DropoffCity: losAngeles(),
		Equipment:   domain.EquipmentDryVan,
	})
	if err != nil {
		t.Fatalf("dry van quote failed: %v", err)
	}

	reefer, err := svc.GetQuote(ctx, service.GetQuoteRequest{
		PickupCity:  newYork(),
		DropoffCity: losAngeles(),
		Equipment:   domain.EquipmentReefer,
	})
	if err != nil {
		t.Fatalf("reefer quote failed: %v", err)
	}

	if !reefer.BasePrice.GreaterThan(dryVan.BasePrice) {
		t.Errorf("reefer price %s not greater than dry van price %s", reefer.BasePrice, dryVan.BasePrice)
	}
}

func TestGetQuoteSameCity(t *testing.T) {
	svc, _, _ := newQuoteFixture()

	quote, err := svc.GetQuote(context.Background(), service.GetQuoteRequest{
		PickupCity:  newYork(),
		DropoffCity: newYork(),
		Equipment:   domain.EquipmentDryVan,
	})
	if err != nil {
		t.Fatalf("GetQuote failed: %v", err)
	}

	if quote.Miles != 0 {
		t.Errorf("miles = %d, want 0", quote.Miles)
	}
	if quote.BasePrice.StringFixed(2) != "500.00" {
		t.Errorf("base price = %s, want 500.00", quote.BasePrice)
	}
	if quote.MinTransitTime != 1 {
		t.Errorf("transit time = %d, want 1", quote.MinTransitTime)
	}
}

func TestGetQuoteDirectionsCachedSeparately(t *testing.T) {
	svc, _, quotes := newQuoteFixture()
	ctx := context.Background()

	if _, err := svc.GetQuote(ctx, service.GetQuoteRequest{
		PickupCity:  newYork(),
		DropoffCity: losAngeles(),
		Equipment:   domain.EquipmentDryVan,
	}); err != nil {
		t.Fatalf("outbound quote failed: %v", err)
	}

	if _, err := svc.GetQuote(ctx, service.GetQuoteRequest{
		PickupCity:  losAngeles(),
		DropoffCity: newYork(),
		Equipment:   domain.EquipmentDryVan,
	}); err != nil {
		t.Fatalf("return quote failed: %v", err)
	}

	if quotes.QuoteCount() != 2 {
		t.Errorf("cached quotes = %d, want 2 (one per direction)", quotes.QuoteCount())
	}
}

func TestGetQuoteMissingCoordinates(t *testing.T) {
	svc, _, quotes := newQuoteFixture()

	noCoords := domain.City{ID: 3, Name: "Nowhere", CountryCode: "US"}

	_, err := svc.GetQuote(context.Background(), service.GetQuoteRequest{
		PickupCity:  noCoords,
		DropoffCity: losAngeles(),
		Equipment:   domain.EquipmentDryVan,
	})
	if !errors.Is(err, service.ErrQuoteComputation) {
		t.Fatalf("error = %v, want ErrQuoteComputation", err)
	}

	if quotes.QuoteCount() != 0 {
		t.Errorf("cached quotes = %d, want 0 after failed computation", quotes.QuoteCount())
	}
}

func TestGetQuoteInvalidEquipment(t *testing.T) {
	svc, _, _ := newQuoteFixture()

	_, err := svc.GetQuote(context.Background(), service.GetQuoteRequest{
		PickupCity:  newYork(),
		DropoffCity: losAngeles(),
		Equipment:   "flatbed",
	})
	if !errors.Is(err, service.ErrInvalidEquipment) {
		t.Fatalf("error = %v, want ErrInvalidEquipment", err)
	}
}

func TestGetQuoteExistingCityKeepsStoredCoordinates(t *testing.T) {
	svc, cities, _ := newQuoteFixture()
	ctx := context.Background()

	stored := newYork()
	cities.AddCity(&stored)

	// The request carries drifted coordinates for a city already on record;
	// pricing must use the stored ones so cached quotes stay consistent.
	drifted := newYork()
	drifted.Latitude = floatPtr(41.0)
	drifted.Longitude = floatPtr(-75.0)

	quote, err := svc.GetQuote(ctx, service.GetQuoteRequest{
		PickupCity:  drifted,
		DropoffCity: losAngeles(),
		Equipment:   domain.EquipmentDryVan,
	})
	if err != nil {
		t.Fatalf("GetQuote failed: %v", err)
	}

	la := losAngeles()
	wantDistance := pricing.Distance(40.7128, -74.0060, *la.Latitude, *la.Longitude)
	if quote.Miles != pricing.RoundMiles(wantDistance) {
		t.Errorf("miles = %d, want %d (priced from stored coordinates)", quote.Miles, pricing.RoundMiles(wantDistance))
	}
}

// racingQuoteRepo simulates a concurrent first request: the lookup misses,
// the insert loses, and the winner's row appears for the re-read.
type racingQuoteRepo struct {
	*MockRouteQuoteRepository
	winner *domain.RouteQuote
	missed int32
}

func (r *racingQuoteRepo) GetByRoute(ctx context.Context, pickupCityID, dropoffCityID int64, equipment domain.Equipment) (*domain.RouteQuote, error) {
	if atomic.CompareAndSwapInt32(&r.missed, 0, 1) {
		return nil, repository.ErrNotFound
	}
	copy := *r.winner
	return &copy, nil
}

func (r *racingQuoteRepo) Create(ctx context.Context, quote *domain.RouteQuote) error {
	return repository.ErrDuplicate
}

func TestGetQuoteLostInsertRaceServesWinner(t *testing.T) {
	cities := NewMockCityRepository()

	nyc, la := newYork(), losAngeles()
	winner := &domain.RouteQuote{
		ID:             7,
		PickupCityID:   nyc.ID,
		DropoffCityID:  la.ID,
		Equipment:      domain.EquipmentDryVan,
		Miles:          2446,
		BasePrice:      pricing.BasePrice(2445.57, domain.EquipmentDryVan),
		MinTransitTime: 5,
	}

	repo := &racingQuoteRepo{
		MockRouteQuoteRepository: NewMockRouteQuoteRepository(),
		winner:                   winner,
	}
	svc := service.NewQuoteService(cities, repo)

	quote, err := svc.GetQuote(context.Background(), service.GetQuoteRequest{
		PickupCity:  nyc,
		DropoffCity: la,
		Equipment:   domain.EquipmentDryVan,
	})
	if err != nil {
		t.Fatalf("GetQuote failed: %v", err)
	}

	if quote.Miles != winner.Miles || !quote.BasePrice.Equal(winner.BasePrice) {
		t.Errorf("quote = %+v, want the winning row's values %+v", quote, winner)
	}
}
