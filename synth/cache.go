package synth

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/reoring/polyskema/class"
)

// Key identifies a synthesized model: the qualified class name and the
// canonical text of the normalized config.
type Key struct {
	Class  string
	Config string
}

func (k Key) String() string { return k.Class + "\x00" + k.Config }

// Stats is a snapshot of cache activity.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// Cache memoizes models and bases per Key. It is safe for concurrent use;
// concurrent builds of one key are collapsed and the first stored model wins.
// A key bound to a different class object, as after a hierarchy is declared
// again, is rebuilt and replaced; the last rebind wins. Entries are never
// evicted.
//
// The key does not cover the type resolver: builds that share a cache must
// resolve named types the same way.
type Cache struct {
	mu     sync.RWMutex
	models map[Key]*Model
	bases  map[Key]*Base
	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

func NewCache() *Cache {
	return &Cache{models: map[Key]*Model{}, bases: map[Key]*Base{}}
}

// Get returns the cached model for k.
func (c *Cache) Get(k Key) (*Model, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.models[k]
	return m, ok
}

// Len returns the number of cached models.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}

func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: c.Len()}
}

// getOrBuild returns the cached model of cls for k or runs build once. hit
// reports whether the model came from the cache. Failed builds are not stored.
func (c *Cache) getOrBuild(k Key, cls class.Class, build func() (*Model, error)) (m *Model, hit bool, err error) {
	if m, ok := c.Get(k); ok && m.class == cls {
		c.hits.Add(1)
		return m, true, nil
	}
	built := false
	v, err, _ := c.group.Do(k.String(), func() (any, error) {
		if m, ok := c.Get(k); ok && m.class == cls {
			return m, nil
		}
		built = true
		m, err := build()
		if err != nil {
			return nil, err
		}
		return c.store(k, m), nil
	})
	if err != nil {
		return nil, false, err
	}
	m = v.(*Model)
	if m.class != cls {
		// joined a concurrent build for another class object under k
		m, err = build()
		if err != nil {
			return nil, false, err
		}
		m, built = c.store(k, m), true
	}
	if built {
		c.misses.Add(1)
	} else {
		c.hits.Add(1)
	}
	return m, !built, nil
}

// store keeps the first model of a class object under k and replaces a
// model of another class object.
func (c *Cache) store(k Key, m *Model) *Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.models[k]; ok && prev.class == m.class {
		return prev
	}
	c.models[k] = m
	return m
}

// base returns the composite base of cls for k, creating it with build on
// first use or when k is bound to another class object.
func (c *Cache) base(k Key, cls class.Class, build func() *Base) *Base {
	c.mu.RLock()
	b, ok := c.bases[k]
	c.mu.RUnlock()
	if ok && b.class == cls {
		return b
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.bases[k]; ok && b.class == cls {
		return b
	}
	b = build()
	c.bases[k] = b
	return b
}
