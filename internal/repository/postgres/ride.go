package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"corpcab/internal/domain"
	"corpcab/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

const rideColumns = `id, user_id, pickup_location, drop_location, ride_date, ride_time, vehicle_type, passengers, status, amount, payment_date, payment_intent_id, created_at`

// Create persists a new ride. Amount, payment_date and payment_intent_id start
// null and are only filled in by the payment flow.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.UserID,
		ride.PickupLocation,
		ride.DropLocation,
		ride.RideDate,
		ride.RideTime,
		ride.VehicleType,
		ride.Passengers,
		ride.Status,
		nullFloat(ride.Amount, ride.Charged),
		nullTime(ride.PaymentDate),
		nullString(ride.PaymentIntentID),
		ride.CreatedAt,
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// ListByUser retrieves the owner's rides ordered by created_at descending.
func (r *RideRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRides(rows)
}

// ListAll retrieves all rides ordered by created_at descending.
func (r *RideRepository) ListAll(ctx context.Context) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides ORDER BY created_at DESC LIMIT 200`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRides(rows)
}

// UpdateStatus moves a ride to the given status if its current status is one
// of allowedFrom. The guard runs inside the UPDATE so concurrent writers
// cannot resurrect a terminal ride.
func (r *RideRepository) UpdateStatus(ctx context.Context, id string, to domain.RideStatus, allowedFrom ...domain.RideStatus) error {
	query := `UPDATE rides SET status = $1 WHERE id = $2`
	args := []any{to, id}

	if len(allowedFrom) > 0 {
		query += ` AND status = ANY($3)`
		from := make([]string, len(allowedFrom))
		for i, s := range allowedFrom {
			from[i] = string(s)
		}
		args = append(args, pqStringArray(from))
	}

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// SetPaymentIntent records the gateway linkage on the ride row. A fresh
// payment-intent request for the same ride overwrites the previous values.
func (r *RideRepository) SetPaymentIntent(ctx context.Context, id, intentID string, amount float64, paymentDate time.Time) error {
	query := `
		UPDATE rides
		SET payment_intent_id = $1, status = $2, amount = $3, payment_date = $4
		WHERE id = $5
	`

	result, err := r.q.ExecContext(ctx, query, intentID, domain.RideStatusPendingPayment, amount, paymentDate, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// MarkPaid finalizes a charged ride in a single update.
func (r *RideRepository) MarkPaid(ctx context.Context, id string, amount float64, paymentDate time.Time) error {
	query := `
		UPDATE rides
		SET status = $1, amount = $2, payment_date = $3
		WHERE id = $4
	`

	result, err := r.q.ExecContext(ctx, query, domain.RideStatusPaid, amount, paymentDate, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(s rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var amount sql.NullFloat64
	var paymentDate sql.NullTime
	var intentID sql.NullString

	if err := s.Scan(
		&ride.ID,
		&ride.UserID,
		&ride.PickupLocation,
		&ride.DropLocation,
		&ride.RideDate,
		&ride.RideTime,
		&ride.VehicleType,
		&ride.Passengers,
		&ride.Status,
		&amount,
		&paymentDate,
		&intentID,
		&ride.CreatedAt,
	); err != nil {
		return nil, err
	}

	if amount.Valid {
		ride.Amount = amount.Float64
		ride.Charged = true
	}
	if paymentDate.Valid {
		ride.PaymentDate = paymentDate.Time
	}
	if intentID.Valid {
		ride.PaymentIntentID = intentID.String
	}

	return &ride, nil
}

func collectRides(rows *sql.Rows) ([]*domain.Ride, error) {
	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}
