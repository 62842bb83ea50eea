package mapbox

import (
	"container/list"
	"context"
	"sync"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
)

// CachedTileFetcher wraps a TileFetcher with an in-memory LRU cache. Only
// raster tiles are cached; feed data always goes upstream.
type CachedTileFetcher struct {
	inner   domain.TileFetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedTileFetcher creates a cache decorator around a tile fetcher.
func NewCachedTileFetcher(inner domain.TileFetcher, maxEntries int, metrics *observability.Metrics) *CachedTileFetcher {
	return &CachedTileFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedTileFetcher) FetchTile(ctx context.Context, key domain.TileKey) (domain.Tile, error) {
	k := key.String()
	if tile, ok := c.cache.get(k); ok {
		c.metrics.TileCache.WithLabelValues("hit").Inc()
		return tile, nil
	}
	c.metrics.TileCache.WithLabelValues("miss").Inc()

	tile, err := c.inner.FetchTile(ctx, key)
	if err != nil {
		return tile, err
	}
	if len(tile.Data) > 0 {
		c.cache.put(k, tile)
	}
	return tile, nil
}

// lruCache is a size-bounded, thread-safe LRU map. The front of order is
// the most recently used entry.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
}

type entry struct {
	key   string
	value domain.Tile
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

func (c *lruCache) get(key string) (domain.Tile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return domain.Tile{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).value, true
}

func (c *lruCache) put(key string, value domain.Tile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).value = value
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&entry{key: key, value: value})
	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
