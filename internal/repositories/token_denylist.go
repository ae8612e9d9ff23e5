package repositories

import (
	"context"
	"sync"
	"time"
)

// TokenDenylist records revoked token ids until their natural expiry.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryTokenDenylist is an in-memory implementation of TokenDenylist used when no
// redis address is configured.
type MemoryTokenDenylist struct {
	revoked map[string]time.Time
	mu      sync.RWMutex
	now     func() time.Time
}

// NewMemoryTokenDenylist creates a new instance of MemoryTokenDenylist.
func NewMemoryTokenDenylist() *MemoryTokenDenylist {
	return &MemoryTokenDenylist{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke marks jti as revoked for ttl.
func (r *MemoryTokenDenylist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, until := range r.revoked {
		if now.After(until) {
			delete(r.revoked, id)
		}
	}
	r.revoked[jti] = now.Add(ttl)
	return nil
}

// IsRevoked reports whether jti is currently revoked.
func (r *MemoryTokenDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	until, ok := r.revoked[jti]
	if !ok {
		return false, nil
	}
	return r.now().Before(until), nil
}
