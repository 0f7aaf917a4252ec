package session

import (
	"context"
	"sync"
	"time"
)

// MemoryRevoker keeps revoked session ids in process memory. Suitable for a
// single instance; use the Redis revoker when running several.
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{revoked: make(map[string]time.Time), now: time.Now}
}

func (r *MemoryRevoker) Revoke(_ context.Context, id string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[id] = until
	return nil
}

func (r *MemoryRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, until := range r.revoked {
		if now.After(until) {
			delete(r.revoked, k)
		}
	}
	_, ok := r.revoked[id]
	return ok, nil
}
