// Package cache owns the current hydrated notification collection.
// It is the single mutable resource shared between the pipeline worker
// and the UI; a RWMutex keeps one writer at a time while readers only
// block for the duration of a swap.
package cache

import (
	"sync"

	"github.com/nhle/ghnotif/internal/github"
)

// Cache holds the hydrated inbox between refreshes. At most one
// notification per stub id is present at any time. Entries are created
// only by a refresh and removed only by a successful mark-as-read or
// the next full replace.
type Cache struct {
	mu            sync.RWMutex
	notifications []github.Notification
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{}
}

// Replace atomically swaps the entire collection. Readers never
// observe a half-replaced state.
func (c *Cache) Replace(notifications []github.Notification) {
	// Copy so later mutation of the caller's slice cannot alias the
	// cache contents.
	owned := make([]github.Notification, len(notifications))
	copy(owned, notifications)

	c.mu.Lock()
	c.notifications = owned
	c.mu.Unlock()
}

// Remove deletes the entry with the given stub id, preserving order.
// Removing an absent id is a no-op: a concurrent refresh may already
// have dropped it.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.notifications {
		if n.Stub.ID == id {
			c.notifications = append(
				c.notifications[:i], c.notifications[i+1:]...,
			)
			return
		}
	}
}

// Snapshot returns a copy of the current collection for rendering.
// The caller owns the returned slice and must not assume it tracks
// later mutations.
func (c *Cache) Snapshot() []github.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make([]github.Notification, len(c.notifications))
	copy(snapshot, c.notifications)
	return snapshot
}

// Get returns the notification at position index, or false when the
// index is out of range. Index clamping is the caller's concern.
func (c *Cache) Get(index int) (github.Notification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if index < 0 || index >= len(c.notifications) {
		return github.Notification{}, false
	}
	return c.notifications[index], true
}

// Len returns the current number of cached notifications.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.notifications)
}
