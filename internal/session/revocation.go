// Package session tracks JWTs that were logged out before they expired.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NewRevoker uses redis when a client is configured and otherwise forgets
// revocations, leaving tokens valid until they expire.
func NewRevoker(client *redis.Client) Revoker {
	if client == nil {
		return Noop{}
	}
	return &RedisRevoker{client: client}
}

type RedisRevoker struct {
	client *redis.Client
}

func key(tokenID string) string {
	return "revoked:" + tokenID
}

// Revoke keeps the entry only as long as the token itself would be valid.
func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, key(tokenID), 1, ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type Noop struct{}

func (Noop) Revoke(context.Context, string, time.Time) error { return nil }

func (Noop) IsRevoked(context.Context, string) (bool, error) { return false, nil }

// Memory is an in-process Revoker for tests and single-instance setups.
type Memory struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemory() *Memory {
	return &Memory{revoked: map[string]time.Time{}}
}

func (m *Memory) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = expiresAt
	return nil
}

func (m *Memory) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.revoked[tokenID]
	return ok && time.Now().Before(exp), nil
}
