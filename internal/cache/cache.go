package cache

import (
	"sync"

	"github.com/jakubkanna/labguy-manager/internal/entity"
)

// Cache keeps the site preferences in memory so the upload surfaces can read
// them without a round trip to the database.
type Cache struct {
	mu    sync.RWMutex
	prefs entity.Preferences
}

// New returns a cache holding the default preferences.
func New() *Cache {
	return &Cache{prefs: entity.DefaultPreferences()}
}

func (c *Cache) GetPreferences() entity.Preferences {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prefs
}

func (c *Cache) SetPreferences(p entity.Preferences) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefs = p
}
