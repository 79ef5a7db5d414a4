// Package dlog implements the discrete-log recovery cache used to turn a
// decrypted ElGamal plaintext element back into the small integer tally it
// represents (spec.md §4.12). Because real tallies are bounded, counting up
// from g^0 by repeated multiplication by g is the fastest correct approach,
// and memoizing every power visited makes repeat lookups O(1).
package dlog

import (
	"fmt"
	"sync"

	"github.com/evoteguard/eg-core/crypto/group"
	"github.com/evoteguard/eg-core/log"
)

// ErrExponentTooLarge is returned when the cache's ceiling is reached before
// the target element was found, and the ceiling is a hard stop rather than a
// value worth extending further (spec.md §7's "discrete-log overflow" never
// silently returns 0).
var ErrExponentTooLarge = fmt.Errorf("dlog: target exceeds discrete-log ceiling")

// ErrNotFound is returned immediately, without searching, when target isn't
// even a valid residue of the order-q subgroup G_q: no power of g can ever
// equal an element outside G_q, so there is no need to spend the ceiling
// loop finding that out.
var ErrNotFound = fmt.Errorf("dlog: element not found as a power of g")

// DefaultCeiling bounds how far the cache will extend looking for a target;
// real elections never need a tally anywhere near this large.
const DefaultCeiling = 100_000_000

// Cache maps g^i -> i for consecutive i starting at 0, extending itself on a
// miss. Every lookup, including a read of an already-cached entry, holds the
// mutex, so concurrent callers never race to grow the table twice.
type Cache struct {
	mu      sync.Mutex
	ceiling int

	// cached holds every (g^i) -> i pair computed so far, keyed by the
	// element's decimal string (ElementModP has no natural map key).
	cached  map[string]int
	maxExp  int
	current *group.ElementModP // g^maxExp
}

// New returns a cache bounded by ceiling, pre-seeded with g^0 = 1.
func New(ceiling int) *Cache {
	c := &Cache{
		ceiling: ceiling,
		cached:  make(map[string]int),
		maxExp:  0,
		current: group.One(),
	}
	c.cached[key(c.current)] = 0
	return c
}

// Default returns a cache bounded by DefaultCeiling.
func Default() *Cache { return New(DefaultCeiling) }

func key(e *group.ElementModP) string { return e.Int().String() }

// Lookup returns the exponent i such that g^i = target, extending the cache
// as needed. Already-cached targets return immediately after a single map
// read under the lock; only a miss pays for the extension loop.
func (c *Cache) Lookup(target *group.ElementModP) (int, error) {
	if !group.ValidResidue(target) {
		return 0, ErrNotFound
	}
	k := key(target)

	c.mu.Lock()
	if i, ok := c.cached[k]; ok {
		c.mu.Unlock()
		return i, nil
	}
	defer c.mu.Unlock()

	// Re-check under lock in case another goroutine extended the cache past
	// our target while we waited.
	if i, ok := c.cached[k]; ok {
		return i, nil
	}

	for c.maxExp < c.ceiling {
		if i, ok := c.cached[k]; ok {
			return i, nil
		}
		c.maxExp++
		c.current = group.MulP(c.current, group.G())
		c.cached[key(c.current)] = c.maxExp
		if c.current.Equal(target) {
			return c.maxExp, nil
		}
	}
	if i, ok := c.cached[k]; ok {
		return i, nil
	}
	log.Warnw("dlog: ceiling reached without finding target", "ceiling", c.ceiling)
	return 0, ErrExponentTooLarge
}

// Prewarm extends the cache up to the given exponent, collapsing later
// lookups at or below it to O(1).
func (c *Cache) Prewarm(upTo int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.maxExp < upTo && c.maxExp < c.ceiling {
		c.maxExp++
		c.current = group.MulP(c.current, group.G())
		c.cached[key(c.current)] = c.maxExp
	}
}

var (
	sharedOnce sync.Once
	shared     *Cache
)

// Shared returns the process-wide default cache. Its own internal mutex
// already serializes extension, so no additional locking is needed here.
func Shared() *Cache {
	sharedOnce.Do(func() { shared = Default() })
	return shared
}
