package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"shiporbit/internal/domain"
	"shiporbit/internal/pricing"
	"shiporbit/internal/repository"
)

// QuoteService handles route quoting. Quotes are computed once per
// (pickup, dropoff, equipment) route and served from the database cache on
// every subsequent request, so a route's price never drifts between
// lookups.
type QuoteService struct {
	cityRepo  repository.CityRepository
	quoteRepo repository.RouteQuoteRepository
}

// NewQuoteService creates a new quote service.
func NewQuoteService(cityRepo repository.CityRepository, quoteRepo repository.RouteQuoteRepository) *QuoteService {
	return &QuoteService{
		cityRepo:  cityRepo,
		quoteRepo: quoteRepo,
	}
}

// GetQuoteRequest contains the parameters for requesting a quote. City
// records come from the geocoding provider and are persisted on first
// sight.
type GetQuoteRequest struct {
	PickupCity  domain.City
	DropoffCity domain.City
	Equipment   domain.Equipment
}

// Quote is a priced route, including what the total would be with
// driver assistance added at booking time.
type Quote struct {
	PickupCityID         int64
	DropoffCityID        int64
	Equipment            domain.Equipment
	Miles                int
	BasePrice            decimal.Decimal
	MinTransitTime       int
	DriverAssistFee      decimal.Decimal
	TotalPriceWithAssist decimal.Decimal
}

// GetQuote returns the quote for a route, computing and caching it on
// first request. Repeated requests for the same route return the cached
// values unchanged, including under concurrent first requests.
func (s *QuoteService) GetQuote(ctx context.Context, req GetQuoteRequest) (*Quote, error) {
	if !req.Equipment.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEquipment, req.Equipment)
	}

	pickup, err := s.resolveCity(ctx, req.PickupCity)
	if err != nil {
		return nil, err
	}
	dropoff, err := s.resolveCity(ctx, req.DropoffCity)
	if err != nil {
		return nil, err
	}

	cached, err := s.quoteRepo.GetByRoute(ctx, pickup.ID, dropoff.ID, req.Equipment)
	if err == nil {
		return quoteFromRoute(cached), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up quote: %w", err)
	}

	quote, err := s.computeQuote(pickup, dropoff, req.Equipment)
	if err != nil {
		return nil, err
	}

	err = s.quoteRepo.Create(ctx, quote)
	if errors.Is(err, repository.ErrDuplicate) {
		// Another request won the insert; serve its row.
		winner, err := s.quoteRepo.GetByRoute(ctx, pickup.ID, dropoff.ID, req.Equipment)
		if err != nil {
			return nil, fmt.Errorf("failed to look up quote: %w", err)
		}
		return quoteFromRoute(winner), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cache quote: %w", err)
	}

	return quoteFromRoute(quote), nil
}

// ListRecent returns the most recently computed quotes.
func (s *QuoteService) ListRecent(ctx context.Context, limit int) ([]*domain.RouteQuote, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.quoteRepo.ListRecent(ctx, limit)
}

// resolveCity persists a provider city record if it has not been seen
// before. Descriptive fields on an existing record are left untouched so
// cached quotes keep pricing against the coordinates they were computed
// from.
func (s *QuoteService) resolveCity(ctx context.Context, city domain.City) (*domain.City, error) {
	err := s.cityRepo.Create(ctx, &city)
	if err == nil {
		return &city, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, fmt.Errorf("failed to save city: %w", err)
	}

	existing, err := s.cityRepo.GetByID(ctx, city.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load city: %w", err)
	}
	return existing, nil
}

func (s *QuoteService) computeQuote(pickup, dropoff *domain.City, equipment domain.Equipment) (*domain.RouteQuote, error) {
	var miles float64

	if pickup.ID != dropoff.ID {
		if !pickup.HasCoordinates() {
			return nil, fmt.Errorf("%w: city %d has no coordinates", ErrQuoteComputation, pickup.ID)
		}
		if !dropoff.HasCoordinates() {
			return nil, fmt.Errorf("%w: city %d has no coordinates", ErrQuoteComputation, dropoff.ID)
		}
		miles = pricing.Distance(*pickup.Latitude, *pickup.Longitude, *dropoff.Latitude, *dropoff.Longitude)
	}

	return &domain.RouteQuote{
		PickupCityID:   pickup.ID,
		DropoffCityID:  dropoff.ID,
		Equipment:      equipment,
		Miles:          pricing.RoundMiles(miles),
		BasePrice:      pricing.BasePrice(miles, equipment),
		MinTransitTime: pricing.TransitTime(miles),
	}, nil
}

func quoteFromRoute(route *domain.RouteQuote) *Quote {
	return &Quote{
		PickupCityID:         route.PickupCityID,
		DropoffCityID:        route.DropoffCityID,
		Equipment:            route.Equipment,
		Miles:                route.Miles,
		BasePrice:            route.BasePrice,
		MinTransitTime:       route.MinTransitTime,
		DriverAssistFee:      pricing.DriverAssistFee,
		TotalPriceWithAssist: route.BasePrice.Add(pricing.DriverAssistFee),
	}
}
