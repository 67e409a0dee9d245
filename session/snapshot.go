package session

import (
	"time"

	"querydraft/models"
)

// TurnView is a turn as rendered to clients, with its lifecycle when it is a
// response.
type TurnView struct {
	Position int `json:"position"`
	models.Turn
	Status    *Status `json:"status,omitempty"`
	HasResult bool    `json:"has_result"`
}

// Snapshot is a consistent, read-only copy of a session's state.
type Snapshot struct {
	ID           string         `json:"id"`
	Dialect      models.Dialect `json:"dialect"`
	CreatedAt    time.Time      `json:"created_at"`
	Turns        []TurnView     `json:"turns"`
	Generating   bool           `json:"generating"`
	Selected     *int           `json:"selected"`
	ResultsView  *int           `json:"results_view"`
	Executing    []int          `json:"executing"`
	HistoryDepth int            `json:"history_depth"`
}

// RequestPositions lists the positions of request turns.
func (s Snapshot) RequestPositions() []int {
	return s.positions(models.RoleRequest)
}

// ResponsePositions lists the positions of response turns.
func (s Snapshot) ResponsePositions() []int {
	return s.positions(models.RoleResponse)
}

func (s Snapshot) positions(role models.Role) []int {
	out := []int{}
	for _, t := range s.Turns {
		if t.Role == role {
			out = append(out, t.Position)
		}
	}
	return out
}

// NthResponse returns the position of the n-th response (0-based), or -1.
func (s Snapshot) NthResponse(n int) int {
	rp := s.ResponsePositions()
	if n < 0 || n >= len(rp) {
		return -1
	}
	return rp[n]
}

func optionalPos(p int) *int {
	if p < 0 {
		return nil
	}
	return &p
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	turns := c.turns.Turns()
	views := make([]TurnView, len(turns))
	executing := []int{}
	for i, t := range turns {
		v := TurnView{Position: i, Turn: t}
		if t.Role == models.RoleResponse {
			st := c.lifecycle.Status(t.ID)
			v.Status = &st
			v.HasResult = c.results.Has(t.ID)
			if st.Running {
				executing = append(executing, i)
			}
		}
		views[i] = v
	}
	return Snapshot{
		ID:           c.id,
		Dialect:      c.dialect,
		CreatedAt:    c.createdAt,
		Turns:        views,
		Generating:   c.generating,
		Selected:     optionalPos(c.selected),
		ResultsView:  optionalPos(c.resultsView),
		Executing:    executing,
		HistoryDepth: c.history.Len(),
	}
}

func (c *Controller) Dialect() models.Dialect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialect
}

func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.turns.Len()
}

func (c *Controller) Turn(pos int) (models.Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.turns.At(pos)
}

func (c *Controller) Turns() []models.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.turns.Turns()
}

// Result returns the cached execution result of the response at pos.
func (c *Controller) Result(pos int) (*models.ExecutionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.turns.Response(pos)
	if err != nil {
		return nil, err
	}
	r, ok := c.results.Get(t.ID)
	if !ok {
		return nil, ErrNoResult
	}
	return r, nil
}

func (c *Controller) Status(pos int) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.turns.Response(pos)
	if err != nil {
		return Status{}, err
	}
	return c.lifecycle.Status(t.ID), nil
}

func (c *Controller) IsConfirmed(pos int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.turns.Response(pos)
	if err != nil {
		return false
	}
	return c.lifecycle.Confirmed(t.ID)
}

// Confirmed returns the positions of confirmed responses in ascending order.
func (c *Controller) Confirmed() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []int{}
	for i, t := range c.turns.turns {
		if t.Role == models.RoleResponse && c.lifecycle.Confirmed(t.ID) {
			out = append(out, i)
		}
	}
	return out
}

func (c *Controller) Generating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generating
}

// Selected returns the position under inspection, or -1.
func (c *Controller) Selected() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// ResultsView returns the position whose results are open, or -1.
func (c *Controller) ResultsView() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resultsView
}

func (c *Controller) History() []HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Entries()
}

func (c *Controller) CreatedAt() time.Time { return c.createdAt }
