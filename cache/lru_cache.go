// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultSize = 1024

// LRUCache is a size-bounded read-through cache for values that only ever
// change through this process, such as replay marks and chain flags.
type LRUCache[K comparable, V any] struct {
	cache *lru.Cache[K, V]
	lock  sync.RWMutex
}

// NewLRUCache returns a cache holding at most size entries. A non-positive
// size falls back to a default.
func NewLRUCache[K comparable, V any](size int) *LRUCache[K, V] {
	if size <= 0 {
		size = defaultSize
	}
	// lru.New only fails on a non-positive size
	c, _ := lru.New[K, V](size)
	return &LRUCache[K, V]{cache: c}
}

// Get checks if the cached value exists for a given key, otherwise fetches
// the value using fetchFunc. If [invalidate] is true, the value will be
// cleared from the cache prior to fetching. Fetch errors are not cached.
func (c *LRUCache[K, V]) Get(key K, fetchFunc func(K) (V, error), invalidate bool) (V, error) {
	if invalidate {
		c.lock.Lock()
		c.cache.Remove(key)
		c.lock.Unlock()
	} else {
		c.lock.RLock()
		if value, found := c.cache.Get(key); found {
			c.lock.RUnlock()
			return value, nil
		}
		c.lock.RUnlock()
	}

	newValue, err := fetchFunc(key)
	if err != nil {
		var zero V
		return zero, err
	}

	c.lock.Lock()
	c.cache.Add(key, newValue)
	c.lock.Unlock()

	return newValue, nil
}

// Put overwrites the cached value for key.
func (c *LRUCache[K, V]) Put(key K, value V) {
	c.lock.Lock()
	c.cache.Add(key, value)
	c.lock.Unlock()
}

// Contains reports whether key is cached without touching its recency.
func (c *LRUCache[K, V]) Contains(key K) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.cache.Contains(key)
}

// Len returns the number of cached entries.
func (c *LRUCache[K, V]) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.cache.Len()
}
