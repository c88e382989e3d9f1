package repository

import "sync"

// ViewCache memoizes list views per entity+store. It is a plain
// invalidate-on-write map, not an eviction cache: entries only disappear
// when a mutation touches their key.
type ViewCache struct {
	mu    sync.RWMutex
	views map[string]any
}

func NewViewCache() *ViewCache {
	return &ViewCache{views: map[string]any{}}
}

func (c *ViewCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.views[key]
	return v, ok
}

func (c *ViewCache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[key] = value
}

func (c *ViewCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, key)
}

// viewKey is the one key form for list views; Repo.List and every
// invalidation site must agree on it.
func viewKey(entity, storeID string) string {
	return entity + ":" + storeID
}

// InvalidateEntity drops the cached list for one entity+store pair. Handlers
// that mutate rows outside the repository (fulfillment, purchases) go
// through here so they cannot diverge from the repository's key form.
func (c *ViewCache) InvalidateEntity(entity, storeID string) {
	c.Invalidate(viewKey(entity, storeID))
}
