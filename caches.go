package dbus

import (
	"errors"
	"sync"
)

// errCacheMiss is returned by cache.Get when k has never been
// computed before, so the caller must derive the value itself and
// store it with Set or SetErr.
var errCacheMiss = errors.New("dbus: value not yet computed")

// errCacheCycle is the placeholder value a cache stores for a key
// while that key's value is still being derived, so that a second
// concurrent or reentrant lookup of the same key can be told apart
// from an ordinary miss.
var errCacheCycle = errors.New("dbus: cyclic derivation for this key")

// cache memoizes values derived from a reflect.Type (or any other
// comparable key), guarding against two goroutines deriving the same
// entry concurrently and against a derivation that reenters itself.
//
// The zero value is ready to use.
type cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]cacheSlot[V]
}

type cacheSlot[V any] struct {
	val V
	err error
}

// Get returns the cached value for k.
//
// If k has no entry yet, Get reserves the slot (so a concurrent
// derivation of the same key observes errCacheCycle rather than
// recomputing) and returns errCacheMiss; the caller is expected to
// derive the value and report it via Set or SetErr.
func (c *cache[K, V]) Get(k K) (V, error) {
	c.mu.RLock()
	slot, ok := c.peek(k)
	c.mu.RUnlock()
	if ok {
		return slot.val, slot.err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if slot, ok := c.peek(k); ok {
		// Someone else populated it while we waited for the write lock.
		return slot.val, slot.err
	}
	c.reserve(k)
	var zero V
	return zero, errCacheMiss
}

func (c *cache[K, V]) peek(k K) (cacheSlot[V], bool) {
	s, ok := c.entries[k]
	return s, ok
}

func (c *cache[K, V]) reserve(k K) {
	if c.entries == nil {
		c.entries = make(map[K]cacheSlot[V])
	}
	c.entries[k] = cacheSlot[V]{err: errCacheCycle}
}

// Set records v as the result of deriving k.
func (c *cache[K, V]) Set(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[K]cacheSlot[V])
	}
	c.entries[k] = cacheSlot[V]{val: v}
}

// SetErr records that deriving k failed with err.
func (c *cache[K, V]) SetErr(k K, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[K]cacheSlot[V])
	}
	c.entries[k] = cacheSlot[V]{err: err}
}
