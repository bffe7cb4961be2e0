// ABOUTME: Tests for the seen-event TTL cache
// ABOUTME: Covers duplicate detection, TTL expiry, sweep, and concurrency safety

package dedupe

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_FirstSightingIsNotDuplicate(t *testing.T) {
	c := New(5 * time.Minute)
	defer c.Close()

	assert.False(t, c.Seen("$evt1"))
}

func TestCache_SecondSightingIsDuplicate(t *testing.T) {
	c := New(5 * time.Minute)
	defer c.Close()

	c.Seen("$evt1")
	assert.True(t, c.Seen("$evt1"))
}

func TestCache_DistinctIDsAreIndependent(t *testing.T) {
	c := New(5 * time.Minute)
	defer c.Close()

	c.Seen("$evt1")
	assert.False(t, c.Seen("$evt2"))
}

func TestCache_ExpiredEntryIsNotDuplicate(t *testing.T) {
	c := New(10 * time.Millisecond)
	defer c.Close()

	c.Seen("$evt1")
	time.Sleep(20 * time.Millisecond)
	assert.False(t, c.Seen("$evt1"))
}

func TestCache_RemoveExpiredShrinksCache(t *testing.T) {
	c := New(10 * time.Millisecond)
	defer c.Close()

	c.Seen("$evt1")
	c.Seen("$evt2")
	time.Sleep(20 * time.Millisecond)
	c.removeExpired()

	assert.Equal(t, 0, c.Len())
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := New(time.Minute)
	c.Close()
	c.Close()
}

func TestCache_ConcurrentSeen(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Seen(fmt.Sprintf("$evt-%d-%d", n, j))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1000, c.Len())
}
