package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"corpcab/internal/domain"
	"corpcab/internal/middleware"
	"corpcab/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	bookingService *service.BookingService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(bookingService *service.BookingService) *RideHandler {
	return &RideHandler{bookingService: bookingService}
}

// CreateRideRequest is the HTTP request body for creating a ride.
type CreateRideRequest struct {
	PickupLocation string `json:"pickup_location"`
	DropLocation   string `json:"drop_location"`
	RideDate       string `json:"ride_date"` // 2006-01-02
	RideTime       string `json:"ride_time"` // 15:04
	VehicleType    string `json:"vehicle_type"`
	Passengers     int    `json:"passengers"`
	PayNow         bool   `json:"pay_now,omitempty"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID              string  `json:"id"`
	PickupLocation  string  `json:"pickup_location"`
	DropLocation    string  `json:"drop_location"`
	RideDate        string  `json:"ride_date"`
	RideTime        string  `json:"ride_time"`
	VehicleType     string  `json:"vehicle_type"`
	Passengers      int     `json:"passengers"`
	Status          string  `json:"status"`
	Amount          float64 `json:"amount,omitempty"`
	Charged         bool    `json:"charged"`
	PaymentDate     string  `json:"payment_date,omitempty"`
	PaymentIntentID string  `json:"payment_intent_id,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// StatsResponse is the HTTP response for GET /v1/rides/stats.
type StatsResponse struct {
	TotalRides     int     `json:"total_rides"`
	Upcoming       int     `json:"upcoming"`
	PendingPayment int     `json:"pending_payment"`
	Completed      int     `json:"completed"`
	Cancelled      int     `json:"cancelled"`
	TotalSpent     float64 `json:"total_spent"`
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rideDate, err := time.Parse("2006-01-02", req.RideDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "ride_date must be YYYY-MM-DD"})
		return
	}

	ride, err := h.bookingService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		UserID:         c.GetString(middleware.ContextUserID),
		PickupLocation: req.PickupLocation,
		DropLocation:   req.DropLocation,
		RideDate:       rideDate,
		RideTime:       req.RideTime,
		VehicleType:    req.VehicleType,
		Passengers:     req.Passengers,
		PayNow:         req.PayNow,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, rideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.bookingService.GetRide(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, rideResponse(ride))
}

// ListRides handles GET /v1/rides
func (h *RideHandler) ListRides(c *gin.Context) {
	rides, err := h.bookingService.ListRides(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, rideResponses(rides))
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	ride, err := h.bookingService.CancelRide(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, rideResponse(ride))
}

// Stats handles GET /v1/rides/stats
func (h *RideHandler) Stats(c *gin.Context) {
	stats, err := h.bookingService.Stats(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, statsResponse(*stats))
}

func statsResponse(stats domain.RideStats) StatsResponse {
	return StatsResponse{
		TotalRides:     stats.TotalRides,
		Upcoming:       stats.Upcoming,
		PendingPayment: stats.PendingPayment,
		Completed:      stats.Completed,
		Cancelled:      stats.Cancelled,
		TotalSpent:     stats.TotalSpent,
	}
}

func rideResponse(ride *domain.Ride) RideResponse {
	resp := RideResponse{
		ID:              ride.ID,
		PickupLocation:  ride.PickupLocation,
		DropLocation:    ride.DropLocation,
		RideDate:        ride.RideDate.Format("2006-01-02"),
		RideTime:        ride.RideTime,
		VehicleType:     string(ride.VehicleType),
		Passengers:      ride.Passengers,
		Status:          string(ride.Status),
		Amount:          ride.Amount,
		Charged:         ride.Charged,
		PaymentIntentID: ride.PaymentIntentID,
		CreatedAt:       ride.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if !ride.PaymentDate.IsZero() {
		resp.PaymentDate = ride.PaymentDate.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

func rideResponses(rides []*domain.Ride) []RideResponse {
	out := make([]RideResponse, 0, len(rides))
	for _, ride := range rides {
		out = append(out, rideResponse(ride))
	}
	return out
}
