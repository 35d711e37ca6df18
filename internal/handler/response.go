package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"corpcab/internal/repository"
	"corpcab/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrMissingPickupLocation),
		errors.Is(err, service.ErrMissingDropLocation),
		errors.Is(err, service.ErrMissingRideSchedule),
		errors.Is(err, service.ErrInvalidVehicleType),
		errors.Is(err, service.ErrInvalidPassengerCount),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrMissingContactFields),
		errors.Is(err, service.ErrMissingAreaName),
		errors.Is(err, service.ErrPaymentNotReady):
		return http.StatusBadRequest

	// Authentication errors
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized

	// Ownership errors
	case errors.Is(err, service.ErrNotRideOwner):
		return http.StatusForbidden

	// Conflict errors
	case errors.Is(err, service.ErrRideAlreadyCancelled),
		errors.Is(err, service.ErrRideCannotBeCancelled),
		errors.Is(err, service.ErrRideNotPendingPayment),
		errors.Is(err, service.ErrInvalidStatusChange),
		errors.Is(err, service.ErrNoPaymentIntent),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrPaymentInProgress):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
