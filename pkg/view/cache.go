package view

import "sync"

// cache stores parsed templates by name. Rendered output is never cached.
type cache[T any] struct {
	items map[string]T
	mu    sync.RWMutex
}

func newCache[T any]() *cache[T] {
	return &cache[T]{items: make(map[string]T)}
}

// get returns the cached value for key or stores the result of load.
func (c *cache[T]) get(key string, load func() (T, error)) (T, error) {
	c.mu.RLock()
	v, ok := c.items[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.items[key]; ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.items[key] = v
	return v, nil
}
