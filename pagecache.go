package ese

import "sync"

// pageCacheEntry holds one decoded page frame. Intrusive prev/next pointers
// avoid a container/list.Element allocation per cached page, mirroring the
// teacher's name-decode cache.
type pageCacheEntry struct {
	prev, next *pageCacheEntry
	key        PageNumber
	page       Page
}

// pageCacheShard is a single-mutex LRU of decoded pages, keyed by page number.
type pageCacheShard struct {
	mu       sync.Mutex
	capacity int
	items    map[PageNumber]*pageCacheEntry

	head, tail pageCacheEntry
}

func newPageCacheShard(capacity int) *pageCacheShard {
	s := &pageCacheShard{
		capacity: capacity,
		items:    make(map[PageNumber]*pageCacheEntry, capacity),
	}
	s.head.next = &s.tail
	s.tail.prev = &s.head
	return s
}

func pcInsertAfter(at, e *pageCacheEntry) {
	e.prev = at
	e.next = at.next
	at.next.prev = e
	at.next = e
}

func pcRemove(e *pageCacheEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = nil
	e.next = nil
}

func (s *pageCacheShard) moveToFront(e *pageCacheEntry) {
	pcRemove(e)
	pcInsertAfter(&s.head, e)
}

func (s *pageCacheShard) back() *pageCacheEntry {
	if s.tail.prev == &s.head {
		return nil
	}
	return s.tail.prev
}

func (s *pageCacheShard) get(n PageNumber) (Page, bool) {
	if s.capacity == 0 {
		return Page{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[n]
	if !ok {
		return Page{}, false
	}
	s.moveToFront(e)
	return e.page, true
}

func (s *pageCacheShard) put(n PageNumber, p Page) {
	if s.capacity == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.items[n]; ok {
		e.page = p
		s.moveToFront(e)
		return
	}
	if len(s.items) >= s.capacity {
		if lru := s.back(); lru != nil {
			pcRemove(lru)
			delete(s.items, lru.key)
		}
	}
	e := &pageCacheEntry{key: n, page: p}
	pcInsertAfter(&s.head, e)
	s.items[n] = e
}

func (s *pageCacheShard) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// pageCache is a page-number-striped LRU of decoded Page frames (§4.2),
// avoiding re-parsing and re-checksumming a page every time a traversal
// revisits it through a sibling pointer or a repeated Seek.
type pageCache struct {
	shards []*pageCacheShard
}

func newPageCache(capacity, shardCount int) *pageCache {
	if shardCount < 1 {
		shardCount = 1
	}
	perShard := capacity / shardCount
	if perShard < 1 && capacity > 0 {
		perShard = 1
	}
	c := &pageCache{shards: make([]*pageCacheShard, shardCount)}
	for i := range c.shards {
		c.shards[i] = newPageCacheShard(perShard)
	}
	return c
}

func (c *pageCache) shardFor(n PageNumber) *pageCacheShard {
	return c.shards[int(n)%len(c.shards)]
}

func (c *pageCache) get(n PageNumber) (Page, bool) {
	return c.shardFor(n).get(n)
}

func (c *pageCache) put(n PageNumber, p Page) {
	c.shardFor(n).put(n, p)
}

func (c *pageCache) len() int {
	total := 0
	for _, s := range c.shards {
		total += s.len()
	}
	return total
}
