package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"corpcab/internal/domain"
	"corpcab/internal/gateway"
	"corpcab/internal/realtime"
	redisstore "corpcab/internal/redis"
	"corpcab/internal/repository"
)

// paymentLockTTL bounds how long a charge submission can hold the per-ride
// lock before a crashed submission stops blocking retries.
const paymentLockTTL = 30 * time.Second

// PaymentService owns the payment side of the booking lifecycle: intent
// creation with table-driven pricing, charge confirmation and ride-status
// reconciliation.
type PaymentService struct {
	rideRepo      repository.RideRepository
	gateway       gateway.PaymentGateway
	locks         redisstore.LockStoreInterface
	cache         redisstore.CacheStoreInterface
	broker        realtime.Broker
	notifications *NotificationService
	currency      string

	// Injected for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	rideRepo repository.RideRepository,
	gw gateway.PaymentGateway,
	locks redisstore.LockStoreInterface,
	cache redisstore.CacheStoreInterface,
	broker realtime.Broker,
	notifications *NotificationService,
) *PaymentService {
	return &PaymentService{
		rideRepo:      rideRepo,
		gateway:       gw,
		locks:         locks,
		cache:         cache,
		broker:        broker,
		notifications: notifications,
		currency:      "usd",
		now:           time.Now,
		sleep:         sleepCtx,
	}
}

// IntentRequest carries the trip parameters a payment intent is priced from.
type IntentRequest struct {
	RideID         string
	PickupLocation string
	DropLocation   string
	VehicleType    string
}

// IntentResponse is the result of a successful intent creation.
type IntentResponse struct {
	IntentID     string
	ClientSecret string
	AmountMinor  int64
}

// CreateIntent derives the charge amount from the vehicle type, creates a
// gateway intent with the booking's audit metadata and records the linkage on
// the ride row. Only the ride's owner may request an intent. Requesting an
// intent twice for the same ride overwrites the previous linkage; it never
// produces a second ride.
func (s *PaymentService) CreateIntent(ctx context.Context, userID string, req IntentRequest) (*IntentResponse, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if req.PickupLocation == "" {
		return nil, ErrMissingPickupLocation
	}
	if req.DropLocation == "" {
		return nil, ErrMissingDropLocation
	}
	if req.VehicleType == "" {
		return nil, ErrInvalidVehicleType
	}

	// There is no database-side owner guard on the ride row, so ownership is
	// settled here before the gateway is called or anything is written.
	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}
	if ride.UserID != userID {
		return nil, ErrNotRideOwner
	}

	amount := FareMinorUnits(domain.VehicleType(req.VehicleType))

	intent, err := s.gateway.CreateIntent(ctx, gateway.CreateIntentRequest{
		AmountMinor: amount,
		Currency:    s.currency,
		Metadata: map[string]string{
			"user_id":         userID,
			"ride_id":         req.RideID,
			"pickup_location": req.PickupLocation,
			"drop_location":   req.DropLocation,
			"vehicle_type":    req.VehicleType,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewaySetup, err)
	}

	// Non-critical side effect: losing this write must not lose the client
	// secret the gateway already issued, so failures are only logged.
	if err := s.rideRepo.SetPaymentIntent(ctx, req.RideID, intent.ID, float64(amount)/100, s.now()); err != nil {
		log.Printf("payment: failed to record intent %s on ride %s: %v", intent.ID, req.RideID, err)
	} else {
		s.invalidate(ctx, req.RideID)
		if ride, err := s.rideRepo.GetByID(ctx, req.RideID); err == nil {
			s.publish(ctx, realtime.RideEvent(realtime.EventUpdate, ride))
		}
	}

	return &IntentResponse{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		AmountMinor:  amount,
	}, nil
}

// Confirm submits the charge for a ride that is awaiting payment and
// reconciles the ride row on success. A per-ride lock rejects concurrent
// submissions from a second tab.
func (s *PaymentService) Confirm(ctx context.Context, userID, rideID, paymentMethodID string) (*SubmitResult, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	if s.locks != nil {
		acquired, err := s.locks.AcquirePaymentLock(ctx, rideID, paymentLockTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, ErrPaymentInProgress
		}
		defer func() {
			if err := s.locks.ReleasePaymentLock(ctx, rideID); err != nil {
				log.Printf("payment: failed to release lock for ride %s: %v", rideID, err)
			}
		}()
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.UserID != userID {
		return nil, ErrNotRideOwner
	}
	if ride.Status != domain.RideStatusPendingPayment {
		return nil, ErrRideNotPendingPayment
	}
	if ride.PaymentIntentID == "" {
		return nil, ErrNoPaymentIntent
	}

	attempt := s.NewAttempt(userID, rideID)
	attempt.Bind(ride.PaymentIntentID, FareMinorUnits(ride.VehicleType))
	return attempt.Submit(ctx, paymentMethodID)
}

// afterPaid runs the best-effort follow-ups of a reconciled charge: cache
// bust is unnecessary here (the repo is the source of truth), but the change
// event and the rider's notification are.
func (s *PaymentService) afterPaid(ctx context.Context, rideID string) {
	s.invalidate(ctx, rideID)

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		log.Printf("payment: failed to reload paid ride %s: %v", rideID, err)
		return
	}

	s.publish(ctx, realtime.RideEvent(realtime.EventUpdate, ride))

	if s.notifications != nil {
		_ = s.notifications.NotifyPaymentSuccess(ctx, ride)
	}
}

func (s *PaymentService) invalidate(ctx context.Context, rideID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRide(ctx, rideID); err != nil {
		log.Printf("payment: failed to invalidate ride %s: %v", rideID, err)
	}
}

func (s *PaymentService) publish(ctx context.Context, event realtime.Event) {
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, event); err != nil {
		log.Printf("payment: failed to publish %s event for ride %s: %v", event.Type, event.Key, err)
	}
}

// sleepCtx sleeps for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
