package session

import "querydraft/models"

// ResultCache holds the last execution result per response turn id. Callers
// serialize access.
type ResultCache struct {
	results map[uint64]*models.ExecutionResult
}

func NewResultCache() *ResultCache {
	return &ResultCache{results: make(map[uint64]*models.ExecutionResult)}
}

// Put stores r for id, replacing any earlier result.
func (c *ResultCache) Put(id uint64, r *models.ExecutionResult) {
	c.results[id] = r.Clone()
}

func (c *ResultCache) Get(id uint64) (*models.ExecutionResult, bool) {
	r, ok := c.results[id]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

func (c *ResultCache) Has(id uint64) bool {
	_, ok := c.results[id]
	return ok
}

func (c *ResultCache) Delete(id uint64) {
	delete(c.results, id)
}

func (c *ResultCache) Clear() {
	c.results = make(map[uint64]*models.ExecutionResult)
}

func (c *ResultCache) Len() int {
	return len(c.results)
}
