package service

import "errors"

var (
	// ErrUnauthenticated is returned when no valid caller identity is present.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrInvalidUserID is returned when user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrMissingPickupLocation is returned when pickup location is empty.
	ErrMissingPickupLocation = errors.New("pickup location is required")

	// ErrMissingDropLocation is returned when drop location is empty.
	ErrMissingDropLocation = errors.New("drop location is required")

	// ErrMissingRideSchedule is returned when ride date or time is missing.
	ErrMissingRideSchedule = errors.New("ride date and time are required")

	// ErrInvalidVehicleType is returned when the vehicle type is not recognized.
	ErrInvalidVehicleType = errors.New("invalid vehicle type")

	// ErrInvalidPassengerCount is returned when passenger count is out of range.
	ErrInvalidPassengerCount = errors.New("invalid passenger count")

	// ErrNotRideOwner is returned when the caller does not own the ride.
	ErrNotRideOwner = errors.New("ride does not belong to caller")

	// ErrRideAlreadyCancelled is returned when cancelling an already cancelled ride.
	ErrRideAlreadyCancelled = errors.New("ride already cancelled")

	// ErrRideCannotBeCancelled is returned when the ride is in a terminal paid state.
	ErrRideCannotBeCancelled = errors.New("ride cannot be cancelled in current state")

	// ErrRideNotPendingPayment is returned when a pay attempt targets a ride
	// that is not awaiting payment.
	ErrRideNotPendingPayment = errors.New("ride is not awaiting payment")

	// ErrInvalidStatusChange is returned when an admin override would move a
	// ride along a non-permitted edge.
	ErrInvalidStatusChange = errors.New("status change not permitted")

	// ErrNoPaymentIntent is returned when a charge is submitted before a
	// payment intent exists for the ride.
	ErrNoPaymentIntent = errors.New("no payment intent for ride")

	// ErrGatewaySetup is returned when the payment gateway rejected intent
	// creation. Distinct from a charge decline: setup failures are retried.
	ErrGatewaySetup = errors.New("payment setup failed")

	// ErrPaymentNotReady is returned when a charge is submitted while the
	// attempt is not in a submit-ready state.
	ErrPaymentNotReady = errors.New("payment not ready to submit")

	// ErrPaymentInProgress is returned when another charge submission for the
	// same ride is already in flight.
	ErrPaymentInProgress = errors.New("payment already in progress")

	// ErrInvalidCredentials is returned on a failed sign-in.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidEmail is returned when the email fails basic validation.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrWeakPassword is returned when the password is too short.
	ErrWeakPassword = errors.New("password too short")

	// ErrInvalidToken is returned when a session token is malformed, expired
	// or revoked.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrMissingContactFields is returned when a contact message lacks
	// required fields.
	ErrMissingContactFields = errors.New("name, email and message are required")

	// ErrMissingAreaName is returned when a service area has no name.
	ErrMissingAreaName = errors.New("area name is required")
)
