package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shiporbit/internal/domain"
	"shiporbit/internal/service"
)

// QuoteHandler handles HTTP requests for route quotes.
type QuoteHandler struct {
	quoteService *service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quoteService *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// CityPayload is a city record as returned by the geocoding provider. The
// frontend forwards provider records verbatim, so the field names follow the
// provider's camelCase convention.
type CityPayload struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	CountryCode string   `json:"countryCode"`
	RegionCode  string   `json:"regionCode"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

func (p CityPayload) toDomain() domain.City {
	return domain.City{
		ID:          p.ID,
		Name:        p.Name,
		CountryCode: p.CountryCode,
		RegionCode:  p.RegionCode,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
	}
}

// GetQuoteRequest is the HTTP request body for requesting a quote.
type GetQuoteRequest struct {
	PickupCity  CityPayload `json:"pickup_city"`
	DropoffCity CityPayload `json:"dropoff_city"`
	Equipment   string      `json:"equipment"`
}

// QuoteResponse is the HTTP response for quote operations.
type QuoteResponse struct {
	PickupCityID         int64  `json:"pickup_city_id"`
	DropoffCityID        int64  `json:"dropoff_city_id"`
	Equipment            string `json:"equipment"`
	Miles                int    `json:"miles"`
	BasePrice            string `json:"base_price"`
	MinTransitTime       int    `json:"min_transit_time"`
	DriverAssistFee      string `json:"driver_assist_fee"`
	TotalPriceWithAssist string `json:"total_price_with_assist"`
}

// GetQuote handles POST /v1/quotes
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	var req GetQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.PickupCity.ID == 0 || req.DropoffCity.ID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "pickup_city and dropoff_city are required"})
		return
	}

	quote, err := h.quoteService.GetQuote(c.Request.Context(), service.GetQuoteRequest{
		PickupCity:  req.PickupCity.toDomain(),
		DropoffCity: req.DropoffCity.toDomain(),
		Equipment:   domain.Equipment(req.Equipment),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, QuoteResponse{
		PickupCityID:         quote.PickupCityID,
		DropoffCityID:        quote.DropoffCityID,
		Equipment:            string(quote.Equipment),
		Miles:                quote.Miles,
		BasePrice:            quote.BasePrice.StringFixed(2),
		MinTransitTime:       quote.MinTransitTime,
		DriverAssistFee:      quote.DriverAssistFee.StringFixed(2),
		TotalPriceWithAssist: quote.TotalPriceWithAssist.StringFixed(2),
	})
}

// RecentQuoteResponse is one entry in the recent quotes listing.
type RecentQuoteResponse struct {
	PickupCityID   int64  `json:"pickup_city_id"`
	DropoffCityID  int64  `json:"dropoff_city_id"`
	Equipment      string `json:"equipment"`
	Miles          int    `json:"miles"`
	BasePrice      string `json:"base_price"`
	MinTransitTime int    `json:"min_transit_time"`
	CreatedAt      string `json:"created_at"`
}

// ListRecent handles GET /v1/quotes/recent
func (h *QuoteHandler) ListRecent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	quotes, err := h.quoteService.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]RecentQuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		resp = append(resp, RecentQuoteResponse{
			PickupCityID:   q.PickupCityID,
			DropoffCityID:  q.DropoffCityID,
			Equipment:      string(q.Equipment),
			Miles:          q.Miles,
			BasePrice:      q.BasePrice.StringFixed(2),
			MinTransitTime: q.MinTransitTime,
			CreatedAt:      q.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	respondJSON(c, http.StatusOK, resp)
}
