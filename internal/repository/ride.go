package repository

import (
	"context"
	"time"

	"corpcab/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// ListByUser retrieves the owner's rides ordered by created_at descending.
	ListByUser(ctx context.Context, userID string) ([]*domain.Ride, error)

	// ListAll retrieves all rides ordered by created_at descending (admin view).
	ListAll(ctx context.Context) ([]*domain.Ride, error)

	// UpdateStatus moves a ride to the given status if its current status is
	// one of allowedFrom. Returns ErrNotFound when no row matched.
	UpdateStatus(ctx context.Context, id string, to domain.RideStatus, allowedFrom ...domain.RideStatus) error

	// SetPaymentIntent records the gateway linkage on the ride row: intent ID,
	// provisional amount and payment date, and status pending_payment. A fresh
	// payment-intent request for the same ride overwrites the previous values.
	SetPaymentIntent(ctx context.Context, id, intentID string, amount float64, paymentDate time.Time) error

	// MarkPaid finalizes a charged ride in a single update: status paid,
	// final amount and payment date.
	MarkPaid(ctx context.Context, id string, amount float64, paymentDate time.Time) error
}
