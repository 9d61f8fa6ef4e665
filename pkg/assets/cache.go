package assets

import (
	"container/list"
	"sync"
)

// DefaultCacheCapacity bounds the recency cache at 50 distinct asset ids.
const DefaultCacheCapacity = 50

type cacheEntry struct {
	id    int64
	asset Asset
}

// AssetCache is a fixed-capacity least-recently-used map from asset id to the
// last-known asset snapshot. Both Get and Put count as use. The cache is
// advisory: entries go stale and are only dropped by capacity eviction or
// Clear. Safe for concurrent use.
type AssetCache struct {
	mu    sync.Mutex
	cap   int
	order *list.List // front is most recently used
	items map[int64]*list.Element
}

func NewAssetCache() *AssetCache {
	return NewAssetCacheWithCapacity(DefaultCacheCapacity)
}

func NewAssetCacheWithCapacity(capacity int) *AssetCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &AssetCache{
		cap:   capacity,
		order: list.New(),
		items: make(map[int64]*list.Element, capacity),
	}
}

func (c *AssetCache) Put(a Asset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[a.ID]; ok {
		el.Value.(*cacheEntry).asset = a
		c.order.MoveToFront(el)
		return
	}

	c.items[a.ID] = c.order.PushFront(&cacheEntry{id: a.ID, asset: a})
	if c.order.Len() > c.cap {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).id)
	}
}

func (c *AssetCache) PutAll(assets []Asset) {
	for _, a := range assets {
		c.Put(a)
	}
}

func (c *AssetCache) Get(id int64) (Asset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[id]
	if !ok {
		return Asset{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).asset, true
}

func (c *AssetCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[int64]*list.Element, c.cap)
}

func (c *AssetCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
