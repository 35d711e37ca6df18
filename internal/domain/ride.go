package domain

import "time"

// RideStatus represents the current lifecycle status of a ride.
type RideStatus string

const (
	RideStatusUpcoming       RideStatus = "upcoming"
	RideStatusPendingPayment RideStatus = "pending_payment"
	RideStatusPaid           RideStatus = "paid"
	RideStatusCompleted      RideStatus = "completed"
	RideStatusCancelled      RideStatus = "cancelled"
)

// IsTerminal reports whether no further payment or completion transition
// is permitted from the status.
func (s RideStatus) IsTerminal() bool {
	return s == RideStatusPaid || s == RideStatusCompleted || s == RideStatusCancelled
}

// VehicleType represents the vehicle class requested for a ride.
type VehicleType string

const (
	VehicleSedan  VehicleType = "sedan"
	VehicleSUV    VehicleType = "suv"
	VehicleLuxury VehicleType = "luxury"
	VehicleVan    VehicleType = "van"
)

// Ride represents one booking request in the system.
type Ride struct {
	ID              string
	UserID          string
	PickupLocation  string
	DropLocation    string
	RideDate        time.Time
	RideTime        string
	VehicleType     VehicleType
	Passengers      int
	Status          RideStatus
	Amount          float64 // Dollars. Meaningful only when Charged is true.
	Charged         bool
	PaymentDate     time.Time
	PaymentIntentID string
	CreatedAt       time.Time
}

// RideStats aggregates a rider's history for the dashboard counters.
type RideStats struct {
	TotalRides     int
	Upcoming       int
	PendingPayment int
	Completed      int // paid + completed
	Cancelled      int
	TotalSpent     float64 // Sum of Amount over paid/completed rides.
}
