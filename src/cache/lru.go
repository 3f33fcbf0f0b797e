package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type lruItem struct {
	key       string
	value     *CachedSchedule
	expiresAt time.Time
}

// LRUScheduleCache is an in-process cache bounded by size and TTL.
// A zero TTL keeps entries until they are evicted by size.
type LRUScheduleCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List // Front is most recently used
	now     func() time.Time
}

// NewLRUScheduleCache creates a cache holding at most maxSize schedules
func NewLRUScheduleCache(maxSize int, ttl time.Duration) *LRUScheduleCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &LRUScheduleCache{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

func (c *LRUScheduleCache) Get(ctx context.Context, key string) (*CachedSchedule, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	item := elem.Value.(*lruItem)
	if c.expired(item) {
		c.removeElement(elem)
		return nil, false
	}

	c.order.MoveToFront(elem)
	return item.value, true
}

func (c *LRUScheduleCache) Set(ctx context.Context, key string, value *CachedSchedule) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}

	if elem, ok := c.items[key]; ok {
		item := elem.Value.(*lruItem)
		item.value = value
		item.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return nil
	}

	c.items[key] = c.order.PushFront(&lruItem{key: key, value: value, expiresAt: expiresAt})
	for c.order.Len() > c.maxSize {
		c.removeElement(c.order.Back())
	}
	return nil
}

func (c *LRUScheduleCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
	return nil
}

// Len returns the number of stored schedules, expired ones included
func (c *LRUScheduleCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// CleanExpired drops every expired entry and returns how many were removed
func (c *LRUScheduleCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if c.expired(elem.Value.(*lruItem)) {
			c.removeElement(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

func (c *LRUScheduleCache) expired(item *lruItem) bool {
	return !item.expiresAt.IsZero() && !c.now().Before(item.expiresAt)
}

func (c *LRUScheduleCache) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*lruItem).key)
}
