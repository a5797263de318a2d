package jobsearch

import (
	"container/list"
	"encoding/json"
	"sync"
	"time"
)

// Cache is an LRU cache of search results bounded by their encoded size.
// Entries older than the TTL are treated as missing.
type Cache struct {
	mu       sync.Mutex
	maxBytes int
	curBytes int
	ttl      time.Duration
	cache    map[string]*list.Element
	lru      *list.List
	now      func() time.Time
}

type cacheEntry struct {
	key     string
	resp    *Response
	bytes   int
	created time.Time
}

// NewCache creates a new Cache holding at most maxBytes of results, each for at most ttl
func NewCache(maxBytes int, ttl time.Duration) *Cache {
	return &Cache{
		maxBytes: maxBytes,
		ttl:      ttl,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
		now:      time.Now,
	}
}

func estimateBytes(resp *Response) int {
	data, _ := json.Marshal(resp)
	return len(data)
}

// Get returns the cached Response for key
func (c *Cache) Get(key string) (*Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.cache[key]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	if c.ttl > 0 && c.now().Sub(entry.created) > c.ttl {
		c.remove(elem)
		return nil, false
	}

	c.lru.MoveToFront(elem)
	return entry.resp, true
}

// Put stores resp under key, evicting the least recently used entries as needed.
// A Response larger than the whole cache is not stored.
func (c *Cache) Put(key string, resp *Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bytes := estimateBytes(resp)
	if bytes > c.maxBytes {
		return
	}

	if elem, ok := c.cache[key]; ok {
		c.remove(elem)
	}

	c.evictIfNeeded(bytes)

	entry := &cacheEntry{key: key, resp: resp, bytes: bytes, created: c.now()}
	elem := c.lru.PushFront(entry)
	c.cache[key] = elem
	c.curBytes += bytes
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Bytes returns the estimated size of the cached entries
func (c *Cache) Bytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.curBytes
}

func (c *Cache) remove(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	c.lru.Remove(elem)
	delete(c.cache, entry.key)
	c.curBytes -= entry.bytes
}

func (c *Cache) evictIfNeeded(additionalBytes int) {
	for c.curBytes+additionalBytes > c.maxBytes && c.lru.Len() > 0 {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.remove(oldest)
	}
}
