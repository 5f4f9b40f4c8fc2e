package dlna

import (
	"container/list"
	"sync"
)

// Cache maps stream urls to resolved titles.
type Cache interface {
	Get(url string) (string, bool)
	Put(url, title string)
}

// MapCache never evicts. It grows with every distinct stream url seen
// during the process lifetime.
type MapCache struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMapCache() *MapCache {
	return &MapCache{m: make(map[string]string)}
}

func (c *MapCache) Get(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.m[url]
	return t, ok
}

func (c *MapCache) Put(url, title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[url] = title
}

// LRUCache holds at most size entries, evicting the least recently used.
type LRUCache struct {
	mu    sync.Mutex
	size  int
	order *list.List // front = most recent
	items map[string]*list.Element
}

type lruEntry struct {
	url   string
	title string
}

// NewLRUCache returns a bounded cache. size < 1 is treated as 1.
func NewLRUCache(size int) *LRUCache {
	if size < 1 {
		size = 1
	}
	return &LRUCache{size: size, order: list.New(), items: make(map[string]*list.Element)}
}

func (c *LRUCache) Get(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[url]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).title, true
}

func (c *LRUCache) Put(url, title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[url]; ok {
		el.Value.(*lruEntry).title = title
		c.order.MoveToFront(el)
		return
	}
	c.items[url] = c.order.PushFront(&lruEntry{url: url, title: title})
	for c.order.Len() > c.size {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*lruEntry).url)
	}
}

// Len returns the number of cached entries.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
