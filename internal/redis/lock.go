package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquirePaymentLock attempts to acquire the charge-submission lock for a
// ride. Returns true if the lock was acquired, false if another submission is
// already in flight. This is the server-side guard behind the UI's disabled
// submit button: two tabs cannot double-charge the same ride.
func (s *LockStore) AcquirePaymentLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:payment:%s", rideID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// ReleasePaymentLock releases the charge-submission lock for a ride.
func (s *LockStore) ReleasePaymentLock(ctx context.Context, rideID string) error {
	key := fmt.Sprintf("lock:payment:%s", rideID)

	return s.client.Del(ctx, key).Err()
}
