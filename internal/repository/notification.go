package repository

import (
	"context"

	"corpcab/internal/domain"
)

// NotificationRepository defines the persistence operations for notifications.
type NotificationRepository interface {
	// Create persists a new notification.
	Create(ctx context.Context, n *domain.Notification) error

	// ListByUser retrieves the owner's latest notifications, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)

	// MarkRead flips read to true for one notification owned by userID.
	// Read never reverts to false; re-marking a read notification is a
	// no-op. ErrNotFound means the row is missing or not this user's.
	MarkRead(ctx context.Context, id, userID string) error

	// MarkAllRead flips read to true for every unread notification of userID.
	MarkAllRead(ctx context.Context, userID string) error
}
