package planner

import (
	"container/list"
	"sync"
)

// Cache keeps the most recently used commands keyed by their SQL text.
// Commands are shared between callers and must not be modified.
// A nil *Cache is valid and caches nothing.
type Cache struct {
	mu       sync.Mutex
	capacity int
	lru      *list.List
	items    map[string]*list.Element

	hits   uint64
	misses uint64
}

type cacheEntry struct {
	sql string
	cmd Command
}

// NewCache returns a cache holding up to capacity commands, or nil when
// capacity is not positive.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		return nil
	}
	return &Cache{
		capacity: capacity,
		lru:      list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Parse returns the cached command for sql or parses and caches it.
// Failed parses are not cached.
func (c *Cache) Parse(sql string) (Command, error) {
	if cmd, ok := c.Get(sql); ok {
		return cmd, nil
	}
	cmd, err := Parse(sql)
	if err != nil {
		return nil, err
	}
	c.Put(sql, cmd)
	return cmd, nil
}

func (c *Cache) Get(sql string) (Command, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[sql]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.lru.MoveToFront(elem)
	return elem.Value.(*cacheEntry).cmd, true
}

func (c *Cache) Put(sql string, cmd Command) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[sql]; ok {
		elem.Value.(*cacheEntry).cmd = cmd
		c.lru.MoveToFront(elem)
		return
	}

	c.items[sql] = c.lru.PushFront(&cacheEntry{sql: sql, cmd: cmd})
	for c.lru.Len() > c.capacity {
		back := c.lru.Back()
		c.lru.Remove(back)
		delete(c.items, back.Value.(*cacheEntry).sql)
	}
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns the number of lookups that hit and missed.
func (c *Cache) Stats() (hits, misses uint64) {
	if c == nil {
		return 0, 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
