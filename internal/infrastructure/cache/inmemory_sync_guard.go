package cache

import (
	"context"
	"sync"
	"time"

	"github.com/deatl/backend/internal/domain/shared"
)

// InMemorySyncGuard implements shared.SyncGuard with a process-local map.
// Suitable for tests and single-instance development; TTL expiry is checked
// lazily on access.
type InMemorySyncGuard struct {
	mu    sync.Mutex
	marks map[string]time.Time // cardID -> expiry
}

var _ shared.SyncGuard = (*InMemorySyncGuard)(nil)

// NewInMemorySyncGuard creates an empty in-memory guard.
func NewInMemorySyncGuard() *InMemorySyncGuard {
	return &InMemorySyncGuard{marks: make(map[string]time.Time)}
}

// Begin implements shared.SyncGuard
func (g *InMemorySyncGuard) Begin(ctx context.Context, cardID string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if expiry, ok := g.marks[cardID]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	g.marks[cardID] = time.Now().Add(ttl)
	return true, nil
}

// Clear implements shared.SyncGuard
func (g *InMemorySyncGuard) Clear(ctx context.Context, cardID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.marks, cardID)
	return nil
}

// Active implements shared.SyncGuard
func (g *InMemorySyncGuard) Active(ctx context.Context, cardID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	expiry, ok := g.marks[cardID]
	return ok && time.Now().Before(expiry), nil
}
