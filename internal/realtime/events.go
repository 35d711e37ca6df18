package realtime

import (
	"context"
	"encoding/json"
	"time"

	"corpcab/internal/domain"
)

// EventType describes the kind of row change an event carries.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Table names events are scoped by.
const (
	TableRides         = "rides"
	TableNotifications = "notifications"
)

// Event is one row-change notification. Events for a given row are published
// in commit order and consumers must apply them in arrival order.
type Event struct {
	Type   EventType       `json:"type"`
	Table  string          `json:"table"`
	Key    string          `json:"key"` // row id, the merge key
	UserID string          `json:"user_id"`
	At     time.Time       `json:"at"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Subscription is a lazy, restartable stream of events for one table and owner.
type Subscription struct {
	C     <-chan Event
	close func()
}

// Close stops the stream and releases its resources.
func (s *Subscription) Close() {
	if s.close != nil {
		s.close()
	}
}

// NewSubscription wraps a channel and teardown hook. Exposed for test doubles.
func NewSubscription(c <-chan Event, closeFn func()) *Subscription {
	return &Subscription{C: c, close: closeFn}
}

// Broker publishes and delivers owner-scoped row-change events.
type Broker interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, table, userID string) (*Subscription, error)
}

// RideRecord is the wire form of a ride row carried in event data.
type RideRecord struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	PickupLocation  string    `json:"pickup_location"`
	DropLocation    string    `json:"drop_location"`
	RideDate        time.Time `json:"ride_date"`
	RideTime        string    `json:"ride_time"`
	VehicleType     string    `json:"vehicle_type"`
	Passengers      int       `json:"passengers"`
	Status          string    `json:"status"`
	Amount          *float64  `json:"amount"`
	PaymentDate     *string   `json:"payment_date"`
	PaymentIntentID string    `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// RideEvent builds a row-change event from a ride.
func RideEvent(eventType EventType, ride *domain.Ride) Event {
	rec := RideRecord{
		ID:              ride.ID,
		UserID:          ride.UserID,
		PickupLocation:  ride.PickupLocation,
		DropLocation:    ride.DropLocation,
		RideDate:        ride.RideDate,
		RideTime:        ride.RideTime,
		VehicleType:     string(ride.VehicleType),
		Passengers:      ride.Passengers,
		Status:          string(ride.Status),
		PaymentIntentID: ride.PaymentIntentID,
		CreatedAt:       ride.CreatedAt,
	}
	if ride.Charged {
		amount := ride.Amount
		rec.Amount = &amount
	}
	if !ride.PaymentDate.IsZero() {
		formatted := ride.PaymentDate.UTC().Format(time.RFC3339)
		rec.PaymentDate = &formatted
	}

	data, _ := json.Marshal(rec)
	return Event{
		Type:   eventType,
		Table:  TableRides,
		Key:    ride.ID,
		UserID: ride.UserID,
		At:     time.Now().UTC(),
		Data:   data,
	}
}

// DecodeRide converts event data back into a domain ride.
func DecodeRide(data json.RawMessage) (*domain.Ride, error) {
	var rec RideRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}

	ride := &domain.Ride{
		ID:              rec.ID,
		UserID:          rec.UserID,
		PickupLocation:  rec.PickupLocation,
		DropLocation:    rec.DropLocation,
		RideDate:        rec.RideDate,
		RideTime:        rec.RideTime,
		VehicleType:     domain.VehicleType(rec.VehicleType),
		Passengers:      rec.Passengers,
		Status:          domain.RideStatus(rec.Status),
		PaymentIntentID: rec.PaymentIntentID,
		CreatedAt:       rec.CreatedAt,
	}
	if rec.Amount != nil {
		ride.Amount = *rec.Amount
		ride.Charged = true
	}
	if rec.PaymentDate != nil {
		if t, err := time.Parse(time.RFC3339, *rec.PaymentDate); err == nil {
			ride.PaymentDate = t
		}
	}
	return ride, nil
}

// NotificationEvent builds an insert event from a notification.
func NotificationEvent(n *domain.Notification) Event {
	data, _ := json.Marshal(n)
	return Event{
		Type:   EventInsert,
		Table:  TableNotifications,
		Key:    n.ID,
		UserID: n.UserID,
		At:     time.Now().UTC(),
		Data:   data,
	}
}
