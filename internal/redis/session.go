package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore tracks revoked session tokens in Redis. Tokens are valid by
// signature until expiry; sign-out adds them to the denylist for the
// remainder of their lifetime.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

const revokedPrefix = "session:revoked:"

// Revoke marks a token as signed out until it would have expired anyway.
func (s *SessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // already expired, nothing to deny
	}
	return s.client.Set(ctx, revokedPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether a token has been signed out.
func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := s.client.Get(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
