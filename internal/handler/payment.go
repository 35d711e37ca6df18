package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"corpcab/internal/middleware"
	"corpcab/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RideDetails carries the trip parameters a payment intent is priced from.
// The field names are part of the client contract.
type RideDetails struct {
	RideID         string `json:"rideId"`
	PickupLocation string `json:"pickupLocation"`
	DropLocation   string `json:"dropLocation"`
	VehicleType    string `json:"vehicleType"`
}

// CreateIntentRequest is the HTTP request body for creating a payment intent.
type CreateIntentRequest struct {
	RideDetails RideDetails `json:"rideDetails"`
}

// CreateIntentResponse is the HTTP response for a created payment intent.
// Amount is in minor currency units.
type CreateIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
}

// ConfirmRequest is the HTTP request body for submitting a charge.
type ConfirmRequest struct {
	RideID          string `json:"ride_id"`
	PaymentMethodID string `json:"payment_method_id"`
}

// ConfirmResponse is the HTTP response for a charge submission.
type ConfirmResponse struct {
	Outcome string  `json:"outcome"`
	Message string  `json:"message"`
	Amount  float64 `json:"amount,omitempty"`
}

// CreateIntent handles POST /v1/payments/intent
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	// The attempt machine retries transient gateway setup failures before the
	// request is answered; validation failures surface immediately.
	attempt := h.paymentService.NewAttempt(c.GetString(middleware.ContextUserID), req.RideDetails.RideID)
	err := attempt.Setup(c.Request.Context(), service.IntentRequest{
		RideID:         req.RideDetails.RideID,
		PickupLocation: req.RideDetails.PickupLocation,
		DropLocation:   req.RideDetails.DropLocation,
		VehicleType:    req.RideDetails.VehicleType,
	})
	if err != nil {
		// Gateway failures are server-side: the client shows a retry prompt,
		// not a validation message.
		if errors.Is(err, service.ErrGatewaySetup) {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, CreateIntentResponse{
		ClientSecret: attempt.ClientSecret(),
		Amount:       attempt.AmountMinor(),
	})
}

// Confirm handles POST /v1/payments/confirm
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.paymentService.Confirm(c.Request.Context(), c.GetString(middleware.ContextUserID), req.RideID, req.PaymentMethodID)
	if err != nil {
		respondError(c, err)
		return
	}

	code := http.StatusOK
	if result.Outcome == service.OutcomeGatewayError {
		code = http.StatusPaymentRequired
	}

	respondJSON(c, code, ConfirmResponse{
		Outcome: string(result.Outcome),
		Message: result.Message,
		Amount:  result.Amount,
	})
}
