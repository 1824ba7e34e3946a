// Package sessions tracks revoked access tokens so a signed-out token is
// refused before it expires.
package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:access:"

// Blacklist stores revoked access tokens in Redis until they expire.
// A nil *Blacklist, or one without a client, is a no-op.
type Blacklist struct {
	client *redis.Client
}

func NewBlacklist(c *redis.Client) *Blacklist {
	return &Blacklist{client: c}
}

func (b *Blacklist) enabled() bool { return b != nil && b.client != nil }

func key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return blacklistPrefix + hex.EncodeToString(sum[:])
}

// Revoke stores the token with the given TTL. Non-positive TTLs are ignored
// since the token has already expired.
func (b *Blacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if !b.enabled() || ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, key(token), "1", ttl).Err()
}

// RevokeUntil revokes the token until expiresAt.
func (b *Blacklist) RevokeUntil(ctx context.Context, token string, expiresAt time.Time) error {
	return b.Revoke(ctx, token, time.Until(expiresAt))
}

// IsRevoked returns true when the token exists in the blacklist.
func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	if !b.enabled() {
		return false, nil
	}
	exists, err := b.client.Exists(ctx, key(token)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (b *Blacklist) Ping(ctx context.Context) error {
	if !b.enabled() {
		return nil
	}
	return b.client.Ping(ctx).Err()
}
