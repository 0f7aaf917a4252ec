package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// minRevocationTTL keeps a revocation alive briefly even when the session is
// already at its expiry, covering clock skew between instances.
const minRevocationTTL = time.Minute

// SessionRevoker records signed-out session ids in Redis so every instance
// rejects them. Key format: revoked:<session_id>
type SessionRevoker struct {
	client *redis.Client
	now    func() time.Time
}

// NewSessionRevoker creates a SessionRevoker wrapping the given Redis client.
func NewSessionRevoker(client *redis.Client) *SessionRevoker {
	return &SessionRevoker{client: client, now: time.Now}
}

// Revoke marks the session as signed out until it would have expired anyway.
func (s *SessionRevoker) Revoke(ctx context.Context, id string, until time.Time) error {
	ttl := until.Sub(s.now())
	if ttl < minRevocationTTL {
		ttl = minRevocationTTL
	}
	if err := s.client.Set(ctx, s.key(id), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// IsRevoked reports whether the session has been signed out.
func (s *SessionRevoker) IsRevoked(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (s *SessionRevoker) key(id string) string {
	return "revoked:" + id
}
