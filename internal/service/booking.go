package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"corpcab/internal/domain"
	"corpcab/internal/realtime"
	redisstore "corpcab/internal/redis"
	"corpcab/internal/repository"
)

// BookingService handles ride booking operations.
type BookingService struct {
	rideRepo      repository.RideRepository
	cache         redisstore.CacheStoreInterface
	broker        realtime.Broker
	notifications *NotificationService
	now           func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	rideRepo repository.RideRepository,
	cache redisstore.CacheStoreInterface,
	broker realtime.Broker,
	notifications *NotificationService,
) *BookingService {
	return &BookingService{
		rideRepo:      rideRepo,
		cache:         cache,
		broker:        broker,
		notifications: notifications,
		now:           time.Now,
	}
}

// CreateRideRequest contains the parameters for creating a ride.
type CreateRideRequest struct {
	UserID         string
	PickupLocation string
	DropLocation   string
	RideDate       time.Time
	RideTime       string
	VehicleType    string
	Passengers     int

	// PayNow selects the pay-now flow: the ride starts in pending_payment
	// instead of upcoming and waits for the payment dialog.
	PayNow bool
}

// CreateRide creates a new ride row. Amount stays unset until a charge
// succeeds.
func (s *BookingService) CreateRide(ctx context.Context, req CreateRideRequest) (*domain.Ride, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	vehicleType, err := ValidateVehicleType(req.VehicleType)
	if err != nil {
		return nil, err
	}

	status := domain.RideStatusUpcoming
	if req.PayNow {
		status = domain.RideStatusPendingPayment
	}

	ride := &domain.Ride{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		PickupLocation: req.PickupLocation,
		DropLocation:   req.DropLocation,
		RideDate:       req.RideDate,
		RideTime:       req.RideTime,
		VehicleType:    vehicleType,
		Passengers:     req.Passengers,
		Status:         status,
		CreatedAt:      s.now(),
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.RideEvent(realtime.EventInsert, ride))

	// Direct-confirm bookings are confirmed immediately; pay-now bookings are
	// only confirmed once the charge lands.
	if !req.PayNow && s.notifications != nil {
		_ = s.notifications.NotifyRideConfirmed(ctx, ride)
	}

	return ride, nil
}

// GetRide retrieves a ride owned by the caller, trying the short-lived cache
// first.
func (s *BookingService) GetRide(ctx context.Context, userID, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	if s.cache != nil {
		if cached, err := s.cache.GetRide(ctx, rideID); err == nil && cached != nil {
			if cached.UserID != userID {
				return nil, ErrNotRideOwner
			}
			return cached, nil
		}
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.UserID != userID {
		return nil, ErrNotRideOwner
	}

	if s.cache != nil {
		if err := s.cache.SetRide(ctx, ride); err != nil {
			log.Printf("booking: failed to cache ride %s: %v", ride.ID, err)
		}
	}
	return ride, nil
}

// ListRides retrieves the caller's rides, newest first.
func (s *BookingService) ListRides(ctx context.Context, userID string) ([]*domain.Ride, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.rideRepo.ListByUser(ctx, userID)
}

// Stats computes the caller's dashboard counters. Total spent sums amounts
// over paid and completed rides only.
func (s *BookingService) Stats(ctx context.Context, userID string) (*domain.RideStats, error) {
	rides, err := s.ListRides(ctx, userID)
	if err != nil {
		return nil, err
	}

	var stats domain.RideStats
	for _, ride := range rides {
		stats.TotalRides++
		switch ride.Status {
		case domain.RideStatusUpcoming:
			stats.Upcoming++
		case domain.RideStatusPendingPayment:
			stats.PendingPayment++
		case domain.RideStatusPaid, domain.RideStatusCompleted:
			stats.Completed++
			stats.TotalSpent += ride.Amount
		case domain.RideStatusCancelled:
			stats.Cancelled++
		}
	}
	return &stats, nil
}

// CancelRide cancels a ride owned by the caller. Only upcoming and
// pending_payment rides can be cancelled; cancelled is terminal and paid
// rides keep their money (no refund path exists).
func (s *BookingService) CancelRide(ctx context.Context, userID, rideID string) (*domain.Ride, error) {
	ride, err := s.GetRide(ctx, userID, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Status == domain.RideStatusCancelled {
		return nil, ErrRideAlreadyCancelled
	}
	if ride.Status.IsTerminal() {
		return nil, ErrRideCannotBeCancelled
	}

	// The status guard runs in the UPDATE as well, so a concurrent payment
	// finishing first wins and the cancel comes back ErrNotFound.
	err = s.rideRepo.UpdateStatus(ctx, rideID, domain.RideStatusCancelled,
		domain.RideStatusUpcoming, domain.RideStatusPendingPayment)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrRideCannotBeCancelled
		}
		return nil, err
	}

	ride.Status = domain.RideStatusCancelled
	s.invalidate(ctx, rideID)
	s.publish(ctx, realtime.RideEvent(realtime.EventUpdate, ride))

	if s.notifications != nil {
		_ = s.notifications.NotifyRideCancelled(ctx, ride)
	}

	return ride, nil
}

// AdminSetStatus overrides a ride's status from the admin console. Terminal
// rides cannot be resurrected; completion is only reachable from paid.
func (s *BookingService) AdminSetStatus(ctx context.Context, rideID string, to domain.RideStatus) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	if _, err := s.rideRepo.GetByID(ctx, rideID); err != nil {
		return nil, err
	}

	var allowedFrom []domain.RideStatus
	switch to {
	case domain.RideStatusCompleted:
		allowedFrom = []domain.RideStatus{domain.RideStatusPaid}
	case domain.RideStatusCancelled:
		allowedFrom = []domain.RideStatus{domain.RideStatusUpcoming, domain.RideStatusPendingPayment}
	default:
		return nil, ErrInvalidStatusChange
	}

	if err := s.rideRepo.UpdateStatus(ctx, rideID, to, allowedFrom...); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrInvalidStatusChange
		}
		return nil, err
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, rideID)
	s.publish(ctx, realtime.RideEvent(realtime.EventUpdate, ride))
	return ride, nil
}

func (s *BookingService) invalidate(ctx context.Context, rideID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRide(ctx, rideID); err != nil {
		log.Printf("booking: failed to invalidate ride %s: %v", rideID, err)
	}
}

func (s *BookingService) publish(ctx context.Context, event realtime.Event) {
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, event); err != nil {
		log.Printf("booking: failed to publish %s event for ride %s: %v", event.Type, event.Key, err)
	}
}

func (s *BookingService) validateCreateRequest(req CreateRideRequest) error {
	if req.UserID == "" {
		return ErrInvalidUserID
	}
	if req.PickupLocation == "" {
		return ErrMissingPickupLocation
	}
	if req.DropLocation == "" {
		return ErrMissingDropLocation
	}
	if req.RideDate.IsZero() || req.RideTime == "" {
		return ErrMissingRideSchedule
	}
	if req.Passengers < 1 || req.Passengers > 8 {
		return ErrInvalidPassengerCount
	}
	return nil
}
