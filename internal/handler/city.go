package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shiporbit/internal/geo"
)

// CityHandler proxies city and region search to the geocoding provider.
type CityHandler struct {
	geoClient *geo.Client
}

// NewCityHandler creates a new CityHandler.
func NewCityHandler(geoClient *geo.Client) *CityHandler {
	return &CityHandler{geoClient: geoClient}
}

// SearchCities handles GET /v1/cities
func (h *CityHandler) SearchCities(c *gin.Context) {
	namePrefix := c.Query("name_prefix")
	if namePrefix == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name_prefix is required"})
		return
	}

	data, err := h.geoClient.SearchCities(c.Request.Context(), namePrefix)
	if err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "city search unavailable"})
		return
	}

	c.Data(http.StatusOK, "application/json", data)
}

// SearchRegions handles GET /v1/regions
func (h *CityHandler) SearchRegions(c *gin.Context) {
	countryCode := c.DefaultQuery("country_code", "US")
	namePrefix := c.Query("name_prefix")

	data, err := h.geoClient.SearchRegions(c.Request.Context(), countryCode, namePrefix)
	if err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "region search unavailable"})
		return
	}

	c.Data(http.StatusOK, "application/json", data)
}
