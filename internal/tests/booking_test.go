package tests

import (
	"context"
	"testing"
	"time"

	"corpcab/internal/domain"
	"corpcab/internal/realtime"
	"corpcab/internal/repository"
	"corpcab/internal/service"
)

func validCreateRequest(userID string) service.CreateRideRequest {
	return service.CreateRideRequest{
		UserID:         userID,
		PickupLocation: "HQ Tower",
		DropLocation:   "Airport T2",
		RideDate:       time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		RideTime:       "09:30",
		VehicleType:    "sedan",
		Passengers:     2,
	}
}

func TestCreateRide_DirectConfirm_StartsUpcoming(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	broker := NewMockBroker()
	notifRepo := NewMockNotificationRepository()
	notifications := service.NewNotificationService(notifRepo, broker)
	booking := service.NewBookingService(rideRepo, nil, broker, notifications)

	ride, err := booking.CreateRide(context.Background(), validCreateRequest("user-1"))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if ride.ID == "" {
		t.Error("expected ride ID to be set")
	}
	if ride.Status != domain.RideStatusUpcoming {
		t.Errorf("expected upcoming status, got %s", ride.Status)
	}
	if ride.Charged {
		t.Error("expected no charge recorded at creation")
	}
	if ride.Amount != 0 {
		t.Errorf("expected amount unset at creation, got %.2f", ride.Amount)
	}

	// Direct-confirm bookings notify immediately.
	notifs := notifRepo.All()
	if len(notifs) != 1 || notifs[0].Type != domain.NotificationRideConfirmed {
		t.Errorf("expected one ride-confirmed notification, got %d", len(notifs))
	}

	events := broker.PublishedFor(realtime.TableRides)
	if len(events) != 1 || events[0].Type != realtime.EventInsert {
		t.Fatalf("expected one INSERT ride event, got %+v", events)
	}
}

func TestCreateRide_PayNow_StartsPendingPayment(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	notifRepo := NewMockNotificationRepository()
	notifications := service.NewNotificationService(notifRepo, nil)
	booking := service.NewBookingService(rideRepo, nil, nil, notifications)

	req := validCreateRequest("user-1")
	req.PayNow = true

	ride, err := booking.CreateRide(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if ride.Status != domain.RideStatusPendingPayment {
		t.Errorf("expected pending_payment status, got %s", ride.Status)
	}

	// Pay-now bookings are only confirmed once the charge lands.
	if len(notifRepo.All()) != 0 {
		t.Errorf("expected no notification before payment, got %d", len(notifRepo.All()))
	}
}

func TestCreateRide_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*service.CreateRideRequest)
		wantErr error
	}{
		{"missing user", func(r *service.CreateRideRequest) { r.UserID = "" }, service.ErrInvalidUserID},
		{"missing pickup", func(r *service.CreateRideRequest) { r.PickupLocation = "" }, service.ErrMissingPickupLocation},
		{"missing drop", func(r *service.CreateRideRequest) { r.DropLocation = "" }, service.ErrMissingDropLocation},
		{"missing date", func(r *service.CreateRideRequest) { r.RideDate = time.Time{} }, service.ErrMissingRideSchedule},
		{"missing time", func(r *service.CreateRideRequest) { r.RideTime = "" }, service.ErrMissingRideSchedule},
		{"bad vehicle", func(r *service.CreateRideRequest) { r.VehicleType = "tuk-tuk" }, service.ErrInvalidVehicleType},
		{"zero passengers", func(r *service.CreateRideRequest) { r.Passengers = 0 }, service.ErrInvalidPassengerCount},
		{"too many passengers", func(r *service.CreateRideRequest) { r.Passengers = 9 }, service.ErrInvalidPassengerCount},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rideRepo := NewMockRideRepository()
			booking := service.NewBookingService(rideRepo, nil, nil, nil)

			req := validCreateRequest("user-1")
			tc.mutate(&req)

			if _, err := booking.CreateRide(context.Background(), req); err != tc.wantErr {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
			if rideRepo.CountRides() != 0 {
				t.Error("expected no ride persisted on validation failure")
			}
		})
	}
}

func TestGetRide_OwnershipEnforced(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{ID: "ride-1", UserID: "user-1", Status: domain.RideStatusUpcoming})
	booking := service.NewBookingService(rideRepo, nil, nil, nil)

	if _, err := booking.GetRide(context.Background(), "user-2", "ride-1"); err != service.ErrNotRideOwner {
		t.Errorf("expected ErrNotRideOwner, got %v", err)
	}
	if _, err := booking.GetRide(context.Background(), "user-1", "missing"); err != repository.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := booking.GetRide(context.Background(), "user-1", "ride-1"); err != nil {
		t.Errorf("expected success for owner, got %v", err)
	}
}

func TestGetRide_UsesCache(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{ID: "ride-1", UserID: "user-1", Status: domain.RideStatusUpcoming})
	cache := NewMockCacheStore()
	booking := service.NewBookingService(rideRepo, cache, nil, nil)

	if _, err := booking.GetRide(context.Background(), "user-1", "ride-1"); err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	if !cache.Has("ride-1") {
		t.Fatal("expected ride cached after miss")
	}

	// Second read is served from cache; ownership is still enforced there.
	if _, err := booking.GetRide(context.Background(), "user-2", "ride-1"); err != service.ErrNotRideOwner {
		t.Errorf("expected ErrNotRideOwner from cached read, got %v", err)
	}
}

func TestCancelRide_AllowedStates(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		status  domain.RideStatus
		wantErr error
	}{
		{"upcoming cancels", domain.RideStatusUpcoming, nil},
		{"pending_payment cancels", domain.RideStatusPendingPayment, nil},
		{"paid rejected", domain.RideStatusPaid, service.ErrRideCannotBeCancelled},
		{"completed rejected", domain.RideStatusCompleted, service.ErrRideCannotBeCancelled},
		{"cancelled is terminal", domain.RideStatusCancelled, service.ErrRideAlreadyCancelled},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rideRepo := NewMockRideRepository()
			rideRepo.AddRide(&domain.Ride{ID: "ride-1", UserID: "user-1", Status: tc.status})
			broker := NewMockBroker()
			booking := service.NewBookingService(rideRepo, nil, broker, nil)

			ride, err := booking.CancelRide(context.Background(), "user-1", "ride-1")
			if err != tc.wantErr {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr != nil {
				if rideRepo.GetRide("ride-1").Status != tc.status {
					t.Error("expected status unchanged on rejected cancel")
				}
				return
			}

			if ride.Status != domain.RideStatusCancelled {
				t.Errorf("expected cancelled, got %s", ride.Status)
			}
			if rideRepo.GetRide("ride-1").Status != domain.RideStatusCancelled {
				t.Error("expected stored status cancelled")
			}
			events := broker.PublishedFor(realtime.TableRides)
			if len(events) != 1 || events[0].Type != realtime.EventUpdate {
				t.Errorf("expected one UPDATE event, got %+v", events)
			}
		})
	}
}

func TestCancelRide_ConcurrentPaymentWins(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{ID: "ride-1", UserID: "user-1", Status: domain.RideStatusPendingPayment})
	booking := service.NewBookingService(rideRepo, nil, nil, nil)

	// Simulate a charge landing between the read and the guarded update.
	rideRepo.UpdateStatusError = repository.ErrNotFound

	if _, err := booking.CancelRide(context.Background(), "user-1", "ride-1"); err != service.ErrRideCannotBeCancelled {
		t.Errorf("expected ErrRideCannotBeCancelled when guard loses the race, got %v", err)
	}
}

func TestStats_CountsAndSpend(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{ID: "r1", UserID: "user-1", Status: domain.RideStatusUpcoming})
	rideRepo.AddRide(&domain.Ride{ID: "r2", UserID: "user-1", Status: domain.RideStatusPendingPayment})
	rideRepo.AddRide(&domain.Ride{ID: "r3", UserID: "user-1", Status: domain.RideStatusPaid, Amount: 30, Charged: true})
	rideRepo.AddRide(&domain.Ride{ID: "r4", UserID: "user-1", Status: domain.RideStatusCompleted, Amount: 50, Charged: true})
	rideRepo.AddRide(&domain.Ride{ID: "r5", UserID: "user-1", Status: domain.RideStatusCancelled})
	rideRepo.AddRide(&domain.Ride{ID: "other", UserID: "user-2", Status: domain.RideStatusPaid, Amount: 99, Charged: true})

	booking := service.NewBookingService(rideRepo, nil, nil, nil)

	stats, err := booking.Stats(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if stats.TotalRides != 5 {
		t.Errorf("expected 5 rides, got %d", stats.TotalRides)
	}
	if stats.Upcoming != 1 || stats.PendingPayment != 1 || stats.Completed != 2 || stats.Cancelled != 1 {
		t.Errorf("unexpected counters: %+v", stats)
	}
	if stats.TotalSpent != 80 {
		t.Errorf("expected total spent 80 over paid and completed rides, got %.2f", stats.TotalSpent)
	}
}

func TestAdminSetStatus_Edges(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		from    domain.RideStatus
		to      domain.RideStatus
		wantErr error
	}{
		{"paid completes", domain.RideStatusPaid, domain.RideStatusCompleted, nil},
		{"upcoming cancels", domain.RideStatusUpcoming, domain.RideStatusCancelled, nil},
		{"upcoming cannot complete", domain.RideStatusUpcoming, domain.RideStatusCompleted, service.ErrInvalidStatusChange},
		{"cancelled cannot resurrect", domain.RideStatusCancelled, domain.RideStatusCompleted, service.ErrInvalidStatusChange},
		{"paid cannot cancel", domain.RideStatusPaid, domain.RideStatusCancelled, service.ErrInvalidStatusChange},
		{"unknown target", domain.RideStatusPaid, domain.RideStatus("archived"), service.ErrInvalidStatusChange},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rideRepo := NewMockRideRepository()
			rideRepo.AddRide(&domain.Ride{ID: "ride-1", UserID: "user-1", Status: tc.from})
			booking := service.NewBookingService(rideRepo, nil, nil, nil)

			ride, err := booking.AdminSetStatus(context.Background(), "ride-1", tc.to)
			if err != tc.wantErr {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr == nil && ride.Status != tc.to {
				t.Errorf("expected status %s, got %s", tc.to, ride.Status)
			}
		})
	}
}
