package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"querydraft/models"
)

type Cache struct {
	cache *cache.Cache
}

func New() *Cache {
	return NewWithTTL(5*time.Minute, 10*time.Minute)
}

func NewWithTTL(ttl, cleanup time.Duration) *Cache {
	return &Cache{
		cache: cache.New(ttl, cleanup),
	}
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.cache.Get(key)
}

func (c *Cache) Set(key string, value interface{}, expiration time.Duration) {
	c.cache.Set(key, value, expiration)
}

func (c *Cache) SetDefault(key string, value interface{}) {
	c.cache.Set(key, value, cache.DefaultExpiration)
}

func (c *Cache) Delete(key string) {
	c.cache.Delete(key)
}

func (c *Cache) ItemCount() int {
	return c.cache.ItemCount()
}

// DraftKey builds the cache key of a generated draft. Prompts are compared
// case-insensitively with surrounding whitespace ignored.
func DraftKey(provider string, dialect models.Dialect, prompt string) string {
	return fmt.Sprintf("draft:%s:%s:%s", provider, dialect, strings.ToLower(strings.TrimSpace(prompt)))
}

// GetDraft returns a copy of a cached draft.
func (c *Cache) GetDraft(key string) (*models.Draft, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	d, ok := v.(models.Draft)
	if !ok {
		return nil, false
	}
	d.Preview = d.Preview.Clone()
	return &d, true
}

func (c *Cache) SetDraft(key string, d *models.Draft) {
	if d == nil {
		return
	}
	cp := *d
	cp.Preview = d.Preview.Clone()
	c.cache.Set(key, cp, cache.DefaultExpiration)
}
