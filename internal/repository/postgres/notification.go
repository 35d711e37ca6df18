package postgres

import (
	"context"
	"database/sql"

	"corpcab/internal/domain"
	"corpcab/internal/repository"
)

// NotificationRepository is a PostgreSQL implementation of repository.NotificationRepository.
type NotificationRepository struct {
	q Querier
}

// NewNotificationRepository creates a new PostgreSQL notification repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{q: db}
}

// Create persists a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, title, message, type, read, related_ride_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.Title,
		n.Message,
		n.Type,
		n.Read,
		nullString(n.RelatedRideID),
		n.CreatedAt,
	)
	return err
}

// ListByUser retrieves the owner's latest notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, title, message, type, read, related_ride_id, created_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
	`

	rows, err := r.q.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var relatedRideID sql.NullString
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Title,
			&n.Message,
			&n.Type,
			&n.Read,
			&relatedRideID,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		if relatedRideID.Valid {
			n.RelatedRideID = relatedRideID.String
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// MarkRead flips read to true for one notification owned by userID.
// The WHERE clause only ever moves read forward, never back; marking an
// already-read notification is a no-op, not an error.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2 AND read = FALSE`

	result, err := r.q.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// Zero rows is either an already-read notification or a row that does not
	// belong to this user; only the latter is an error.
	var exists bool
	err = r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1 AND user_id = $2)`,
		id, userID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return nil
}

// MarkAllRead flips read to true for every unread notification of userID.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	query := `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`

	_, err := r.q.ExecContext(ctx, query, userID)
	return err
}
