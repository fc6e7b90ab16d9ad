package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations is the Redis-backed denylist of logged-out token ids.
type Revocations struct{ R *redis.Client }

func (s *Revocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return Exists(ctx, s.R, fmt.Sprintf(KeyRevokedToken, tokenID))
}

// Revoke keeps the id until the token would have expired anyway. A token
// already past its expiry needs no entry.
func (s *Revocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := s.R.Set(ctx, fmt.Sprintf(KeyRevokedToken, tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
