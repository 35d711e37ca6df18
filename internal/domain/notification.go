package domain

import "time"

// NotificationType represents the type of a user-facing notification.
type NotificationType string

const (
	NotificationRideConfirmed  NotificationType = "RIDE_CONFIRMED"
	NotificationPaymentSuccess NotificationType = "PAYMENT_SUCCESS"
	NotificationRideCancelled  NotificationType = "RIDE_CANCELLED"
)

// Notification represents one user-facing event row.
// Read transitions false to true only and never reverts.
type Notification struct {
	ID            string
	UserID        string
	Title         string
	Message       string
	Type          NotificationType
	Read          bool
	RelatedRideID string
	CreatedAt     time.Time
}
