package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"corpcab/internal/domain"
	"corpcab/internal/realtime"
	"corpcab/internal/repository"
)

// NotificationService persists user-facing notifications and pushes their
// INSERT events onto the owner's realtime channel.
type NotificationService struct {
	repo   repository.NotificationRepository
	broker realtime.Broker
	now    func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository, broker realtime.Broker) *NotificationService {
	return &NotificationService{
		repo:   repo,
		broker: broker,
		now:    time.Now,
	}
}

// NotifyRideConfirmed records a booking confirmation for the rider.
func (s *NotificationService) NotifyRideConfirmed(ctx context.Context, ride *domain.Ride) error {
	return s.create(ctx, &domain.Notification{
		UserID:        ride.UserID,
		Title:         "Ride Confirmed",
		Message:       fmt.Sprintf("Your %s from %s to %s is booked.", ride.VehicleType, ride.PickupLocation, ride.DropLocation),
		Type:          domain.NotificationRideConfirmed,
		RelatedRideID: ride.ID,
	})
}

// NotifyPaymentSuccess records a successful charge for the rider.
func (s *NotificationService) NotifyPaymentSuccess(ctx context.Context, ride *domain.Ride) error {
	return s.create(ctx, &domain.Notification{
		UserID:        ride.UserID,
		Title:         "Payment Successful",
		Message:       fmt.Sprintf("Payment of $%.2f was successful. Your ride is confirmed.", ride.Amount),
		Type:          domain.NotificationPaymentSuccess,
		RelatedRideID: ride.ID,
	})
}

// NotifyRideCancelled records a cancellation for the rider.
func (s *NotificationService) NotifyRideCancelled(ctx context.Context, ride *domain.Ride) error {
	return s.create(ctx, &domain.Notification{
		UserID:        ride.UserID,
		Title:         "Ride Cancelled",
		Message:       fmt.Sprintf("Your ride from %s to %s has been cancelled.", ride.PickupLocation, ride.DropLocation),
		Type:          domain.NotificationRideCancelled,
		RelatedRideID: ride.ID,
	})
}

func (s *NotificationService) create(ctx context.Context, n *domain.Notification) error {
	n.ID = uuid.New().String()
	n.CreatedAt = s.now()

	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("notification: failed to persist %s for user %s: %v", n.Type, n.UserID, err)
		return err
	}

	if s.broker != nil {
		if err := s.broker.Publish(ctx, realtime.NotificationEvent(n)); err != nil {
			log.Printf("notification: failed to publish %s for user %s: %v", n.Type, n.UserID, err)
		}
	}
	return nil
}
