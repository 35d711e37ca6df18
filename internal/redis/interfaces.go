package redis

import (
	"context"
	"time"

	"corpcab/internal/domain"
)

// CacheStoreInterface defines the interface for ride caching.
type CacheStoreInterface interface {
	GetRide(ctx context.Context, rideID string) (*domain.Ride, error)
	SetRide(ctx context.Context, ride *domain.Ride) error
	InvalidateRide(ctx context.Context, rideID string) error
}

// LockStoreInterface defines the interface for payment-submission locking.
type LockStoreInterface interface {
	AcquirePaymentLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error)
	ReleasePaymentLock(ctx context.Context, rideID string) error
}

// SessionStoreInterface defines the interface for session revocation.
type SessionStoreInterface interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Ensure concrete types implement interfaces.
var (
	_ CacheStoreInterface   = (*CacheStore)(nil)
	_ LockStoreInterface    = (*LockStore)(nil)
	_ SessionStoreInterface = (*SessionStore)(nil)
)
