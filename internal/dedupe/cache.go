// ABOUTME: TTL cache of recently seen event IDs
// ABOUTME: Guards the session adapter against sync redelivery after reconnects

package dedupe

import (
	"sync"
	"time"
)

// sweepInterval is how often expired entries are removed.
const sweepInterval = time.Minute

// Cache tracks event IDs seen within a TTL window. The Matrix sync protocol
// can redeliver events after a reconnect or a restarted sync loop; the cache
// keeps each one from reaching the bot core twice.
type Cache struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	done   chan struct{}
	closed bool
}

// New creates a cache. A background goroutine sweeps expired entries until
// Close is called.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		done: make(chan struct{}),
	}
	go c.sweep()
	return c
}

// Seen atomically checks whether id was recorded within the TTL window and
// records it if not. Returns true for a duplicate.
func (c *Cache) Seen(id string) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if at, ok := c.seen[id]; ok && now.Sub(at) < c.ttl {
		return true
	}
	c.seen[id] = now
	return false
}

// Len reports the number of tracked IDs, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

func (c *Cache) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.done:
			return
		}
	}
}

func (c *Cache) removeExpired() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for id, at := range c.seen {
		if now.Sub(at) >= c.ttl {
			delete(c.seen, id)
		}
	}
}

// Close stops the sweep goroutine. Safe to call multiple times.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
