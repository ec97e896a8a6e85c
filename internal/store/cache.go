package store

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	evaluation *Evaluation
	expiresAt  time.Time
}

// Cache keeps recently read evaluations in memory. A nil *Cache is valid and
// never hits.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	ttl   time.Duration
	stop  chan struct{}
	once  sync.Once
}

// NewCache starts a cache whose entries live for ttl. Expired entries are
// swept every sweep interval until Close.
func NewCache(ttl, sweep time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]*cacheEntry),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}
	if sweep > 0 {
		go c.cleanup(sweep)
	}
	return c
}

func (c *Cache) Get(id string) (*Evaluation, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.items[id]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.evaluation, true
}

func (c *Cache) Set(ev *Evaluation) {
	if c == nil || ev == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[ev.ID] = &cacheEntry{evaluation: ev, expiresAt: time.Now().Add(c.ttl)}
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*cacheEntry)
}

// Close stops the sweeper.
func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep(time.Now())
		}
	}
}

func (c *Cache) sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, entry := range c.items {
		if now.After(entry.expiresAt) {
			delete(c.items, id)
		}
	}
}

// Cached reads through cache before hitting the database.
type Cached struct {
	*Store
	cache *Cache
}

func NewCached(s *Store, c *Cache) *Cached { return &Cached{Store: s, cache: c} }

func (c *Cached) SaveEvaluation(ctx context.Context, ev *Evaluation) error {
	if err := c.Store.SaveEvaluation(ctx, ev); err != nil {
		return err
	}
	c.cache.Set(ev)
	return nil
}

func (c *Cached) GetEvaluation(ctx context.Context, id string) (*Evaluation, error) {
	if ev, ok := c.cache.Get(id); ok {
		return ev, nil
	}
	ev, err := c.Store.GetEvaluation(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Set(ev)
	return ev, nil
}
