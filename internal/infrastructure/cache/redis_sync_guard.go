// Package cache provides the Redis-backed reconciliation guard and its
// in-memory stand-in for tests and single-node development.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/deatl/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const guardKeyPrefix = "deatl:reconcile:"

// RedisSyncGuard implements shared.SyncGuard on Redis. Begin is a single
// SET NX with TTL, so acquiring the mark is atomic across instances and a
// crashed run can hold a card for at most the TTL.
type RedisSyncGuard struct {
	client *redis.Client
}

var _ shared.SyncGuard = (*RedisSyncGuard)(nil)

// NewRedisSyncGuard creates a guard on an existing Redis client.
func NewRedisSyncGuard(client *redis.Client) *RedisSyncGuard {
	return &RedisSyncGuard{client: client}
}

// Begin implements shared.SyncGuard
func (g *RedisSyncGuard) Begin(ctx context.Context, cardID string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, guardKey(cardID), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire reconcile guard: %w", err)
	}
	return ok, nil
}

// Clear implements shared.SyncGuard
func (g *RedisSyncGuard) Clear(ctx context.Context, cardID string) error {
	if err := g.client.Del(ctx, guardKey(cardID)).Err(); err != nil {
		return fmt.Errorf("failed to clear reconcile guard: %w", err)
	}
	return nil
}

// Active implements shared.SyncGuard
func (g *RedisSyncGuard) Active(ctx context.Context, cardID string) (bool, error) {
	n, err := g.client.Exists(ctx, guardKey(cardID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check reconcile guard: %w", err)
	}
	return n > 0, nil
}

func guardKey(cardID string) string {
	return guardKeyPrefix + cardID
}
