// Package cache provides the read-through memo used by every loader.
//
// Entries are keyed by (path, content type, category), are computed at most
// once per key and live for the lifetime of the process. Concurrent misses on
// the same key share one load. Errors are returned to every waiter but never
// stored, so a file that appears later is picked up on the next request.
package cache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Key identifies one cached value.
type Key struct {
	Path        string
	ContentType string
	Category    string
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s", k.Path, k.ContentType, k.Category)
}

// Observer is notified about cache traffic. Kind is the cache's name.
type Observer interface {
	Hit(kind string)
	Miss(kind string)
}

// LoadFunc computes the value for a key.
type LoadFunc[V any] func(ctx context.Context) (V, error)

// Cache is a never-evicting memo for values of type V.
type Cache[V any] struct {
	kind     string
	observer Observer

	mu      sync.RWMutex
	entries map[Key]V
	group   singleflight.Group
}

// New creates a cache. observer may be nil.
func New[V any](kind string, observer Observer) *Cache[V] {
	return &Cache[V]{
		kind:     kind,
		observer: observer,
		entries:  make(map[Key]V),
	}
}

// Get returns the cached value for key, calling load on a miss.
func (c *Cache[V]) Get(ctx context.Context, key Key, load LoadFunc[V]) (V, error) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.hit()
		return v, nil
	}

	res, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		c.mu.RLock()
		v, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}

		c.miss()
		v, err := load(ctx)
		if err != nil {
			return v, err
		}

		c.mu.Lock()
		c.entries[key] = v
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Len returns the number of stored entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset drops every entry.
func (c *Cache[V]) Reset() {
	c.mu.Lock()
	c.entries = make(map[Key]V)
	c.mu.Unlock()
}

func (c *Cache[V]) hit() {
	if c.observer != nil {
		c.observer.Hit(c.kind)
	}
}

func (c *Cache[V]) miss() {
	if c.observer != nil {
		c.observer.Miss(c.kind)
	}
}
