package resolver

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// BuildFunc resolves a source for the cache.
type BuildFunc func(ctx context.Context) (*ResolvedSource, error)

// cacheEntry is one cached resolved source with its lease count.
type cacheEntry struct {
	resolved *ResolvedSource
	built    time.Time
	refs     int
	retired  bool
}

// Cache holds resolved sources keyed by source name for a TTL.
//
// Callers lease a source with Acquire and hand it back with the returned
// release function. A source that expires or is invalidated is closed once
// its last lease is released. With a TTL of zero nothing is cached: every
// Acquire resolves afresh and release closes the result.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	sf      singleflight.Group
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewCache creates a cache with the given TTL.
func NewCache(ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

func (c *Cache) expired(e *cacheEntry) bool {
	return c.now().Sub(e.built) > c.ttl
}

// Acquire returns the cached source for key, building it with build when
// missing or expired. Concurrent builds of the same key are collapsed.
func (c *Cache) Acquire(ctx context.Context, key string, build BuildFunc) (*ResolvedSource, func(), error) {
	// key may alias a request buffer that is reused once the caller returns.
	key = strings.Clone(key)
	if c.ttl <= 0 {
		rs, err := build(ctx)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { c.closeResolved(key, rs) }, nil
	}

	for {
		c.mu.Lock()
		if e, ok := c.entries[key]; ok {
			if !c.expired(e) {
				e.refs++
				c.mu.Unlock()
				return e.resolved, c.releaser(key, e), nil
			}
			c.retireLocked(key, e)
		}
		c.mu.Unlock()

		v, err, _ := c.sf.Do(key, func() (any, error) {
			c.mu.Lock()
			if e, ok := c.entries[key]; ok && !c.expired(e) {
				c.mu.Unlock()
				return e, nil
			}
			c.mu.Unlock()

			rs, err := build(ctx)
			if err != nil {
				return nil, err
			}
			e := &cacheEntry{resolved: rs, built: c.now()}

			c.mu.Lock()
			if old, ok := c.entries[key]; ok {
				c.retireLocked(key, old)
			}
			c.entries[key] = e
			c.mu.Unlock()

			c.logger.Debug("Cached resolved source", zap.String("source", key))
			return e, nil
		})
		if err != nil {
			return nil, nil, err
		}

		e := v.(*cacheEntry)
		c.mu.Lock()
		if !e.retired {
			e.refs++
			c.mu.Unlock()
			return e.resolved, c.releaser(key, e), nil
		}
		c.mu.Unlock()
	}
}

func (c *Cache) releaser(key string, e *cacheEntry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			e.refs--
			closeNow := e.retired && e.refs == 0
			c.mu.Unlock()
			if closeNow {
				c.closeResolved(key, e.resolved)
			}
		})
	}
}

// retireLocked removes e from the cache and closes it when unleased.
// c.mu must be held.
func (c *Cache) retireLocked(key string, e *cacheEntry) {
	if c.entries[key] == e {
		delete(c.entries, key)
	}
	if e.retired {
		return
	}
	e.retired = true
	if e.refs == 0 {
		c.closeResolved(key, e.resolved)
	}
}

func (c *Cache) closeResolved(key string, rs *ResolvedSource) {
	if err := rs.Close(); err != nil {
		c.logger.Warn("Failed to close resolved source", zap.String("source", key), zap.Error(err))
	}
}

// Invalidate drops key from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.retireLocked(key, e)
	}
}

// Close drops every entry and reports close failures of unleased sources.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for key, e := range c.entries {
		delete(c.entries, key)
		e.retired = true
		if e.refs == 0 {
			if err := e.resolved.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Keys returns the names of the cached sources, sorted.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
