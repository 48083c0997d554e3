// Package cache memoizes fact lookups that hit the mod index.
package cache

import (
	"container/list"
	"sync"

	"github.com/DonovanMods/fomod/internal/domain"
)

// DefaultSize is the number of file-state answers kept when no size is given
const DefaultSize = 1024

// Provider is the fact source wrapped by FactCache. It matches core.FactProvider.
type Provider interface {
	CheckFile(path string, state domain.FileState) (bool, error)
	CheckFlag(flag, value string) (bool, error)
	CheckGameVersion(version string) (bool, error)
	CheckInstallerVersion(version string) (bool, error)
}

type fileKey struct {
	path  string
	state domain.FileState
}

type entry struct {
	key fileKey
	ok  bool
}

// FactCache is an LRU of CheckFile answers keyed by (normalized path, state).
// Other checks pass through. Errors are never cached.
type FactCache struct {
	next Provider
	size int

	mu     sync.Mutex
	order  *list.List
	items  map[fileKey]*list.Element
	hits   int
	misses int
}

// New wraps next with an LRU of the given size (DefaultSize when size <= 0)
func New(next Provider, size int) *FactCache {
	if size <= 0 {
		size = DefaultSize
	}
	return &FactCache{
		next:  next,
		size:  size,
		order: list.New(),
		items: make(map[fileKey]*list.Element),
	}
}

// CheckFile answers from the cache or asks the wrapped provider
func (c *FactCache) CheckFile(path string, state domain.FileState) (bool, error) {
	key := fileKey{path: domain.NormalizePath(path), state: state}

	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		c.hits++
		c.mu.Unlock()
		return el.Value.(*entry).ok, nil
	}
	c.misses++
	c.mu.Unlock()

	ok, err := c.next.CheckFile(path, state)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, exists := c.items[key]; exists {
		el.Value.(*entry).ok = ok
		c.order.MoveToFront(el)
		return ok, nil
	}
	c.items[key] = c.order.PushFront(&entry{key: key, ok: ok})
	if c.order.Len() > c.size {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
	}
	return ok, nil
}

// CheckFlag passes through
func (c *FactCache) CheckFlag(flag, value string) (bool, error) {
	return c.next.CheckFlag(flag, value)
}

// CheckGameVersion passes through
func (c *FactCache) CheckGameVersion(version string) (bool, error) {
	return c.next.CheckGameVersion(version)
}

// CheckInstallerVersion passes through
func (c *FactCache) CheckInstallerVersion(version string) (bool, error) {
	return c.next.CheckInstallerVersion(version)
}

// Len returns the number of cached answers
func (c *FactCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns cache hits and misses since creation or the last Purge
func (c *FactCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Purge drops every cached answer, e.g. after the mod index changed
func (c *FactCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[fileKey]*list.Element)
	c.hits, c.misses = 0, 0
}
