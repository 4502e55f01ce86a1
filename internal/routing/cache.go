package routing

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheKey identifies a (config version, method, path) triple. Embedding
// the version means a stale entry from a superseded Config is simply
// never hit again after a reload — no explicit invalidation pass is
// needed, it is eviction-by-irrelevance.
type cacheKey struct {
	version string
	method  string
	path    string
}

type cacheEntry struct {
	result Result
	ok     bool
}

// Cache memoizes Match results for a bounded number of (version, method,
// path) triples. Safe for concurrent use — golang-lru/v2's Cache
// provides its own locking.
type Cache struct {
	lru *lru.Cache[cacheKey, cacheEntry]
}

// NewCache builds a route-match cache holding up to size entries.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = 1000
	}
	c, _ := lru.New[cacheKey, cacheEntry](size)
	return &Cache{lru: c}
}

// MatchCached behaves like Match, but serves repeat (version, method,
// path) lookups from cache.
func (c *Cache) MatchCached(routes []RouteSpec, version, method, path string) (Result, bool) {
	key := cacheKey{version: version, method: method, path: path}
	if entry, ok := c.lru.Get(key); ok {
		return entry.result, entry.ok
	}

	result, matched := Match(routes, method, path)
	c.lru.Add(key, cacheEntry{result: result, ok: matched})
	return result, matched
}
