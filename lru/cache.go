// Package lru provides a bounded associative cache with most-recently-used
// reordering. Repositories use it as read-through acceleration in front of
// durable storage: eviction simply drops the entry, there is no write-back.
//
// The cache is generic over its key and value types, so the mismatched-type
// misuse a loosely-typed store would have to detect at runtime is rejected at
// compile time instead.
package lru

import (
	"errors"
	"iter"
	"sync"
)

// ErrNotFound is returned when the requested key is not cached.
var ErrNotFound = errors.New("lru: key not found")

type node[K comparable, V any] struct {
	key   K
	value V
	prev  *node[K, V]
	next  *node[K, V]
}

// Cache is a bounded LRU cache. One mutex is held across each full operation;
// no I/O ever happens inside, so critical sections stay short.
type Cache[K comparable, V any] struct {
	mu     sync.Mutex
	maxLen int
	nodes  map[K]*node[K, V]
	head   *node[K, V] // most recently used
	tail   *node[K, V] // least recently used
}

// New builds a cache holding at most maxLen entries.
func New[K comparable, V any](maxLen int) (*Cache[K, V], error) {
	if maxLen <= 0 {
		return nil, errors.New("lru: max length must be positive")
	}
	return &Cache[K, V]{
		maxLen: maxLen,
		nodes:  make(map[K]*node[K, V], maxLen),
	}, nil
}

// Get returns the cached value and promotes the key to most recently used.
func (c *Cache[K, V]) Get(key K) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[key]
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	c.moveToFront(n)
	return n.value, nil
}

// Set inserts or overwrites the value for key and marks it most recently
// used, evicting the least-recently-used entry first when the insertion would
// exceed the cache's capacity.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.nodes[key]; ok {
		n.value = value
		c.moveToFront(n)
		return
	}

	if len(c.nodes) >= c.maxLen {
		c.evictOldest()
	}

	n := &node[K, V]{key: key, value: value}
	c.nodes[key] = n
	c.pushFront(n)
}

// Contains reports whether key is cached without altering recency order.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.nodes[key]
	return ok
}

// MoveToFront promotes key to most recently used without changing its value,
// for cached values mutated in place by their owner.
func (c *Cache[K, V]) MoveToFront(key K) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[key]
	if !ok {
		return ErrNotFound
	}
	c.moveToFront(n)
	return nil
}

// Remove drops the entry for key.
func (c *Cache[K, V]) Remove(key K) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[key]
	if !ok {
		return ErrNotFound
	}
	c.unlink(n)
	delete(c.nodes, key)
	return nil
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

// Keys returns the cached keys ordered most recently used first.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.nodes))
	for n := c.head; n != nil; n = n.next {
		keys = append(keys, n.key)
	}
	return keys
}

// All iterates over entries ordered most recently used first. The snapshot is
// taken up front so the yield functions may touch the cache.
func (c *Cache[K, V]) All() iter.Seq2[K, V] {
	c.mu.Lock()
	entries := make([]node[K, V], 0, len(c.nodes))
	for n := c.head; n != nil; n = n.next {
		entries = append(entries, node[K, V]{key: n.key, value: n.value})
	}
	c.mu.Unlock()

	return func(yield func(K, V) bool) {
		for _, entry := range entries {
			if !yield(entry.key, entry.value) {
				return
			}
		}
	}
}

func (c *Cache[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *Cache[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev = nil
	n.next = nil
}

func (c *Cache[K, V]) moveToFront(n *node[K, V]) {
	if c.head == n {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

func (c *Cache[K, V]) evictOldest() {
	if c.tail == nil {
		return
	}
	oldest := c.tail
	c.unlink(oldest)
	delete(c.nodes, oldest.key)
}
