package tests

import (
	"context"
	"testing"
	"time"

	"corpcab/internal/domain"
	"corpcab/internal/realtime"
	"corpcab/internal/service"
)

func feedRide(id, userID string, status domain.RideStatus, createdAt time.Time) *domain.Ride {
	return &domain.Ride{
		ID:             id,
		UserID:         userID,
		PickupLocation: "HQ Tower",
		DropLocation:   "Airport T2",
		VehicleType:    domain.VehicleSedan,
		Status:         status,
		CreatedAt:      createdAt,
	}
}

func TestRideFeed_MergesByRideID(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	feed := realtime.NewRideFeed(NewMockRideRepository(), NewMockBroker(), "user-1")

	ride := feedRide("ride-1", "user-1", domain.RideStatusUpcoming, base)
	feed.Apply(realtime.RideEvent(realtime.EventInsert, ride))

	// An update for the same row replaces it rather than adding a second entry.
	ride.Status = domain.RideStatusPendingPayment
	feed.Apply(realtime.RideEvent(realtime.EventUpdate, ride))

	snapshot := feed.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("expected one merged row, got %d", len(snapshot))
	}
	if snapshot[0].Status != domain.RideStatusPendingPayment {
		t.Errorf("expected latest status, got %s", snapshot[0].Status)
	}

	feed.Apply(realtime.Event{Type: realtime.EventDelete, Table: realtime.TableRides, Key: "ride-1", UserID: "user-1"})
	if len(feed.Snapshot()) != 0 {
		t.Error("expected delete to remove the row")
	}
}

func TestRideFeed_AppliesEventsInArrivalOrder(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	feed := realtime.NewRideFeed(NewMockRideRepository(), NewMockBroker(), "user-1")

	ride := feedRide("ride-1", "user-1", domain.RideStatusPendingPayment, base)
	feed.Apply(realtime.RideEvent(realtime.EventInsert, ride))

	paid := *ride
	paid.Status = domain.RideStatusPaid
	paid.Amount = 20
	paid.Charged = true
	feed.Apply(realtime.RideEvent(realtime.EventUpdate, &paid))

	// Later events win even when they carry an "older looking" status.
	completed := paid
	completed.Status = domain.RideStatusCompleted
	feed.Apply(realtime.RideEvent(realtime.EventUpdate, &completed))

	snapshot := feed.Snapshot()
	if snapshot[0].Status != domain.RideStatusCompleted {
		t.Errorf("expected last-arrived status, got %s", snapshot[0].Status)
	}
	if !snapshot[0].Charged || snapshot[0].Amount != 20 {
		t.Errorf("expected charge carried through updates, got %+v", snapshot[0])
	}
}

func TestRideFeed_SnapshotOrderedNewestFirst(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	feed := realtime.NewRideFeed(NewMockRideRepository(), NewMockBroker(), "user-1")

	feed.Apply(realtime.RideEvent(realtime.EventInsert, feedRide("old", "user-1", domain.RideStatusUpcoming, base)))
	feed.Apply(realtime.RideEvent(realtime.EventInsert, feedRide("new", "user-1", domain.RideStatusUpcoming, base.Add(time.Hour))))

	snapshot := feed.Snapshot()
	if len(snapshot) != 2 || snapshot[0].ID != "new" || snapshot[1].ID != "old" {
		t.Errorf("expected newest first, got %+v", snapshot)
	}
}

func TestRideFeed_StatsTrackMergedView(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	feed := realtime.NewRideFeed(NewMockRideRepository(), NewMockBroker(), "user-1")

	ride := feedRide("ride-1", "user-1", domain.RideStatusPendingPayment, base)
	feed.Apply(realtime.RideEvent(realtime.EventInsert, ride))

	stats := feed.Stats()
	if stats.PendingPayment != 1 || stats.TotalSpent != 0 {
		t.Fatalf("unexpected stats before payment: %+v", stats)
	}

	ride.Status = domain.RideStatusPaid
	ride.Amount = 20
	ride.Charged = true
	feed.Apply(realtime.RideEvent(realtime.EventUpdate, ride))

	stats = feed.Stats()
	if stats.PendingPayment != 0 || stats.Completed != 1 || stats.TotalSpent != 20 {
		t.Errorf("unexpected stats after payment: %+v", stats)
	}
}

func TestRideFeed_StartReceivesLiveEvents(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	rideRepo.AddRide(feedRide("ride-1", "user-1", domain.RideStatusUpcoming, base))
	broker := NewMockBroker()

	feed := realtime.NewRideFeed(rideRepo, broker, "user-1")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := feed.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if len(feed.Snapshot()) != 1 {
		t.Fatal("expected initial fetch in the view")
	}

	updated := feedRide("ride-1", "user-1", domain.RideStatusCancelled, base)
	if err := broker.Publish(ctx, realtime.RideEvent(realtime.EventUpdate, updated)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		snapshot := feed.Snapshot()
		if len(snapshot) == 1 && snapshot[0].Status == domain.RideStatusCancelled {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for live event to merge")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestBookingAndFeed_EndToEndPropagation(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	broker := NewMockBroker()
	booking := service.NewBookingService(rideRepo, nil, broker, nil)

	feed := realtime.NewRideFeed(rideRepo, broker, "user-1")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := feed.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	ride, err := booking.CreateRide(ctx, validCreateRequest("user-1"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		snapshot := feed.Snapshot()
		if len(snapshot) == 1 && snapshot[0].ID == ride.ID {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for booking to reach the feed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Another user's events never reach this feed.
	other := feedRide("foreign", "user-2", domain.RideStatusUpcoming, time.Now())
	if err := broker.Publish(ctx, realtime.RideEvent(realtime.EventInsert, other)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if len(feed.Snapshot()) != 1 {
		t.Errorf("expected owner-scoped feed, got %d rows", len(feed.Snapshot()))
	}
}
