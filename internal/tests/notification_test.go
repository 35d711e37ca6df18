package tests

import (
	"context"
	"errors"
	"testing"

	"corpcab/internal/domain"
	"corpcab/internal/realtime"
	"corpcab/internal/repository"
	"corpcab/internal/service"
)

func TestNotifyPaymentSuccess_PersistsAndPublishes(t *testing.T) {
	t.Parallel()

	notifRepo := NewMockNotificationRepository()
	broker := NewMockBroker()
	notifications := service.NewNotificationService(notifRepo, broker)

	ride := &domain.Ride{ID: "ride-1", UserID: "user-1", Amount: 30.0, Charged: true}
	if err := notifications.NotifyPaymentSuccess(context.Background(), ride); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	stored := notifRepo.All()
	if len(stored) != 1 || stored[0].Type != domain.NotificationPaymentSuccess {
		t.Fatalf("expected one payment-success notification, got %+v", stored)
	}
	if stored[0].RelatedRideID != "ride-1" {
		t.Errorf("expected related ride recorded, got %q", stored[0].RelatedRideID)
	}

	events := broker.PublishedFor(realtime.TableNotifications)
	if len(events) != 1 || events[0].Type != realtime.EventInsert {
		t.Errorf("expected one INSERT notification event, got %d", len(events))
	}
}

func TestMarkRead_AlreadyReadIsNoOp(t *testing.T) {
	t.Parallel()

	notifRepo := NewMockNotificationRepository()
	notifications := service.NewNotificationService(notifRepo, nil)

	ride := &domain.Ride{ID: "ride-1", UserID: "user-1"}
	if err := notifications.NotifyRideConfirmed(context.Background(), ride); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	id := notifRepo.All()[0].ID

	// Marking twice succeeds both times; an existing read row is a no-op,
	// not a missing row.
	if err := notifRepo.MarkRead(context.Background(), id, "user-1"); err != nil {
		t.Fatalf("first mark failed: %v", err)
	}
	if err := notifRepo.MarkRead(context.Background(), id, "user-1"); err != nil {
		t.Errorf("expected re-mark to be a no-op, got %v", err)
	}
	if !notifRepo.All()[0].Read {
		t.Error("expected notification read")
	}
}

func TestMarkRead_MissingOrForeignRowNotFound(t *testing.T) {
	t.Parallel()

	notifRepo := NewMockNotificationRepository()
	notifications := service.NewNotificationService(notifRepo, nil)

	ride := &domain.Ride{ID: "ride-1", UserID: "user-1"}
	if err := notifications.NotifyRideConfirmed(context.Background(), ride); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	id := notifRepo.All()[0].ID

	if err := notifRepo.MarkRead(context.Background(), "missing", "user-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
	if err := notifRepo.MarkRead(context.Background(), id, "user-2"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for another user's row, got %v", err)
	}
	if notifRepo.All()[0].Read {
		t.Error("expected notification still unread")
	}
}
