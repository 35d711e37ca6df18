package realtime

import (
	"context"
	"log"
	"sort"
	"sync"

	"corpcab/internal/domain"
	"corpcab/internal/repository"
)

// RideFeed keeps an in-memory view of one rider's history current. It fetches
// the full list once at start and thereafter merges incremental row events by
// ride id, in arrival order. No polling.
type RideFeed struct {
	rideRepo repository.RideRepository
	broker   Broker
	userID   string

	mu    sync.RWMutex
	rides map[string]*domain.Ride
}

// NewRideFeed creates a feed for one rider.
func NewRideFeed(rideRepo repository.RideRepository, broker Broker, userID string) *RideFeed {
	return &RideFeed{
		rideRepo: rideRepo,
		broker:   broker,
		userID:   userID,
		rides:    make(map[string]*domain.Ride),
	}
}

// Start subscribes before the initial fetch so no event falls between the
// snapshot and the stream, then consumes events until ctx is cancelled.
func (f *RideFeed) Start(ctx context.Context) error {
	sub, err := f.broker.Subscribe(ctx, TableRides, f.userID)
	if err != nil {
		return err
	}

	rides, err := f.rideRepo.ListByUser(ctx, f.userID)
	if err != nil {
		sub.Close()
		return err
	}

	f.mu.Lock()
	for _, ride := range rides {
		f.rides[ride.ID] = ride
	}
	f.mu.Unlock()

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-sub.C:
				if !ok {
					return
				}
				f.Apply(event)
			}
		}
	}()

	return nil
}

// Apply merges one row event into the view, keyed by ride id.
func (f *RideFeed) Apply(event Event) {
	if event.Table != TableRides {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch event.Type {
	case EventInsert, EventUpdate:
		ride, err := DecodeRide(event.Data)
		if err != nil {
			log.Printf("ride feed: dropping undecodable %s for %s: %v", event.Type, event.Key, err)
			return
		}
		f.rides[event.Key] = ride
	case EventDelete:
		delete(f.rides, event.Key)
	}
}

// Snapshot returns the current ride list ordered by created_at descending.
func (f *RideFeed) Snapshot() []*domain.Ride {
	f.mu.RLock()
	defer f.mu.RUnlock()

	rides := make([]*domain.Ride, 0, len(f.rides))
	for _, ride := range f.rides {
		rides = append(rides, ride)
	}
	sort.Slice(rides, func(i, j int) bool {
		return rides[i].CreatedAt.After(rides[j].CreatedAt)
	})
	return rides
}

// Stats derives the dashboard counters from the merged view.
func (f *RideFeed) Stats() domain.RideStats {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var stats domain.RideStats
	for _, ride := range f.rides {
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
	return stats
}
