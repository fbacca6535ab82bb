package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shiporbit/internal/domain"
	"shiporbit/internal/service"
)

// ShipmentHandler handles HTTP requests for shipment booking and lifecycle.
type ShipmentHandler struct {
	shipmentService *service.ShipmentService
}

// NewShipmentHandler creates a new ShipmentHandler.
func NewShipmentHandler(shipmentService *service.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{shipmentService: shipmentService}
}

// ShipmentResponse is the HTTP response for shipment operations.
type ShipmentResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Equipment string `json:"equipment"`

	PickupDate  string `json:"pickup_date"`
	DropoffDate string `json:"dropoff_date,omitempty"`

	BasePrice       string `json:"base_price"`
	Miles           int    `json:"miles"`
	MinTransitTime  int    `json:"min_transit_time"`
	DriverAssist    bool   `json:"driver_assist"`
	DriverAssistFee string `json:"driver_assist_fee"`
	TotalPrice      string `json:"total_price"`

	ReferenceNumber string `json:"reference_number,omitempty"`
	Weight          int    `json:"weight,omitempty"`
	Commodity       string `json:"commodity,omitempty"`
	Packaging       int    `json:"packaging,omitempty"`
	PackagingType   string `json:"packaging_type,omitempty"`

	CreatedAt string `json:"created_at"`
}

func shipmentResponse(s *domain.Shipment) ShipmentResponse {
	resp := ShipmentResponse{
		ID:              s.ID,
		Status:          string(s.Status),
		Equipment:       string(s.Equipment),
		PickupDate:      s.PickupDate.Format(time.RFC3339),
		BasePrice:       s.BasePrice.StringFixed(2),
		Miles:           s.Miles,
		MinTransitTime:  s.MinTransitTime,
		DriverAssist:    s.DriverAssist,
		DriverAssistFee: s.DriverAssistFee.StringFixed(2),
		TotalPrice:      s.TotalPrice().StringFixed(2),
		ReferenceNumber: s.ReferenceNumber,
		Weight:          s.Weight,
		Commodity:       s.Commodity,
		Packaging:       s.Packaging,
		PackagingType:   s.PackagingType,
		CreatedAt:       s.CreatedAt.Format(time.RFC3339),
	}
	if !s.DropoffDate.IsZero() {
		resp.DropoffDate = s.DropoffDate.Format(time.RFC3339)
	}
	return resp
}

// CreateShipmentRequest is the HTTP request body for wizard step one.
type CreateShipmentRequest struct {
	PickupCityID  int64  `json:"pickup_city_id"`
	DropoffCityID int64  `json:"dropoff_city_id"`
	Equipment     string `json:"equipment"`
	PickupDate    string `json:"pickup_date"`
	DropoffDate   string `json:"dropoff_date"`
}

// CreateShipment handles POST /v1/shipments
func (h *ShipmentHandler) CreateShipment(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.PickupCityID == 0 || req.DropoffCityID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "pickup_city_id and dropoff_city_id are required"})
		return
	}

	pickupDate, err := time.Parse(time.RFC3339, req.PickupDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "pickup_date must be RFC 3339"})
		return
	}

	var dropoffDate time.Time
	if req.DropoffDate != "" {
		dropoffDate, err = time.Parse(time.RFC3339, req.DropoffDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "dropoff_date must be RFC 3339"})
			return
		}
	}

	shipment, err := h.shipmentService.CreateShipment(c.Request.Context(), service.CreateShipmentRequest{
		UserID:        uid,
		PickupCityID:  req.PickupCityID,
		DropoffCityID: req.DropoffCityID,
		Equipment:     domain.Equipment(req.Equipment),
		PickupDate:    pickupDate,
		DropoffDate:   dropoffDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, shipmentResponse(shipment))
}

// StopDetailsRequest carries the appointment details for one stop.
type StopDetailsRequest struct {
	FacilityName    string `json:"facility_name"`
	FacilityAddress string `json:"facility_address"`
	ZipCode         string `json:"zip_code"`

	ContactName string `json:"contact_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`

	SchedulingPreference string `json:"scheduling_preference"`

	LocationNumber  string `json:"location_number"`
	AdditionalNotes string `json:"additional_notes"`
}

func (r StopDetailsRequest) toService() service.StopDetails {
	return service.StopDetails{
		FacilityName:         r.FacilityName,
		FacilityAddress:      r.FacilityAddress,
		ZipCode:              r.ZipCode,
		ContactName:          r.ContactName,
		PhoneNumber:          r.PhoneNumber,
		Email:                r.Email,
		SchedulingPreference: domain.SchedulingPreference(r.SchedulingPreference),
		LocationNumber:       r.LocationNumber,
		AdditionalNotes:      r.AdditionalNotes,
	}
}

// UpdateAppointmentRequest is the HTTP request body for wizard step two.
type UpdateAppointmentRequest struct {
	DriverAssist bool               `json:"driver_assist"`
	Pickup       StopDetailsRequest `json:"pickup"`
	Dropoff      StopDetailsRequest `json:"dropoff"`
}

// UpdateAppointment handles PUT /v1/shipments/:id/appointment
func (h *ShipmentHandler) UpdateAppointment(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	shipment, err := h.shipmentService.UpdateAppointment(c.Request.Context(), service.UpdateAppointmentRequest{
		UserID:       uid,
		ShipmentID:   c.Param("id"),
		DriverAssist: req.DriverAssist,
		Pickup:       req.Pickup.toService(),
		Dropoff:      req.Dropoff.toService(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, shipmentResponse(shipment))
}

// FinalizeShipmentRequest is the HTTP request body for wizard step three.
type FinalizeShipmentRequest struct {
	ReferenceNumber string `json:"reference_number"`
	Weight          int    `json:"weight"`
	Commodity       string `json:"commodity"`
	Packaging       int    `json:"packaging"`
	PackagingType   string `json:"packaging_type"`
}

// FinalizeShipment handles PUT /v1/shipments/:id/finalize
func (h *ShipmentHandler) FinalizeShipment(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req FinalizeShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	shipment, err := h.shipmentService.FinalizeShipment(c.Request.Context(), service.FinalizeShipmentRequest{
		UserID:          uid,
		ShipmentID:      c.Param("id"),
		ReferenceNumber: req.ReferenceNumber,
		Weight:          req.Weight,
		Commodity:       req.Commodity,
		Packaging:       req.Packaging,
		PackagingType:   req.PackagingType,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, shipmentResponse(shipment))
}

// ListShipments handles GET /v1/shipments
func (h *ShipmentHandler) ListShipments(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	status := domain.ShipmentStatus(c.Query("status"))

	shipments, err := h.shipmentService.ListShipments(c.Request.Context(), uid, status)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]ShipmentResponse, 0, len(shipments))
	for _, s := range shipments {
		resp = append(resp, shipmentResponse(s))
	}

	respondJSON(c, http.StatusOK, resp)
}

// LocationResponse is one stop in the shipment detail response.
type LocationResponse struct {
	LocationType string `json:"location_type"`
	CityID       int64  `json:"city_id"`
	Date         string `json:"date,omitempty"`

	FacilityName    string `json:"facility_name,omitempty"`
	FacilityAddress string `json:"facility_address,omitempty"`
	ZipCode         string `json:"zip_code,omitempty"`

	ContactName string `json:"contact_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`

	SchedulingPreference string `json:"scheduling_preference,omitempty"`

	LocationNumber  string `json:"location_number,omitempty"`
	AdditionalNotes string `json:"additional_notes,omitempty"`
}

// ShipmentDetailResponse is a shipment with its stops.
type ShipmentDetailResponse struct {
	ShipmentResponse
	Locations []LocationResponse `json:"locations"`
}

// GetShipment handles GET /v1/shipments/:id
func (h *ShipmentHandler) GetShipment(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	shipmentID := c.Param("id")

	shipment, err := h.shipmentService.GetShipment(c.Request.Context(), uid, shipmentID)
	if err != nil {
		respondError(c, err)
		return
	}

	locations, err := h.shipmentService.GetLocations(c.Request.Context(), uid, shipmentID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := ShipmentDetailResponse{ShipmentResponse: shipmentResponse(shipment)}
	for _, loc := range locations {
		lr := LocationResponse{
			LocationType:         string(loc.LocationType),
			CityID:               loc.CityID,
			FacilityName:         loc.FacilityName,
			FacilityAddress:      loc.FacilityAddress,
			ZipCode:              loc.ZipCode,
			ContactName:          loc.ContactName,
			PhoneNumber:          loc.PhoneNumber,
			Email:                loc.Email,
			SchedulingPreference: string(loc.SchedulingPreference),
			LocationNumber:       loc.LocationNumber,
			AdditionalNotes:      loc.AdditionalNotes,
		}
		if !loc.Date.IsZero() {
			lr.Date = loc.Date.Format(time.RFC3339)
		}
		resp.Locations = append(resp.Locations, lr)
	}

	respondJSON(c, http.StatusOK, resp)
}

// DeleteShipment handles DELETE /v1/shipments/:id
func (h *ShipmentHandler) DeleteShipment(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	if err := h.shipmentService.DeleteShipment(c.Request.Context(), uid, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateStatusRequest is the HTTP request body for a status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// UpdateStatus handles POST /v1/shipments/:id/status
func (h *ShipmentHandler) UpdateStatus(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	shipment, err := h.shipmentService.UpdateStatus(c.Request.Context(), service.UpdateStatusRequest{
		UserID:     uid,
		ShipmentID: c.Param("id"),
		NewStatus:  domain.ShipmentStatus(req.Status),
		Reason:     req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, shipmentResponse(shipment))
}

// StatusChangeResponse is one entry in the status history listing.
type StatusChangeResponse struct {
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	ChangedBy string `json:"changed_by"`
	Reason    string `json:"reason,omitempty"`
	CreatedAt string `json:"created_at"`
}

// GetHistory handles GET /v1/shipments/:id/history
func (h *ShipmentHandler) GetHistory(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	changes, err := h.shipmentService.GetHistory(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]StatusChangeResponse, 0, len(changes))
	for _, change := range changes {
		resp = append(resp, StatusChangeResponse{
			OldStatus: string(change.OldStatus),
			NewStatus: string(change.NewStatus),
			ChangedBy: change.ChangedBy,
			Reason:    change.Reason,
			CreatedAt: change.CreatedAt.Format(time.RFC3339),
		})
	}

	respondJSON(c, http.StatusOK, resp)
}

// Dashboard handles GET /v1/shipments/dashboard
func (h *ShipmentHandler) Dashboard(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	counts, err := h.shipmentService.Dashboard(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"unfinished": counts[domain.ShipmentStatusUnfinished],
		"upcoming":   counts[domain.ShipmentStatusUpcoming],
		"inprogress": counts[domain.ShipmentStatusInProgress],
		"past":       counts[domain.ShipmentStatusPast],
	})
}
