package session

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"querydraft/models"
)

// Manager keeps the live sessions of one process. Every session it creates
// shares the same collaborators and observers.
type Manager struct {
	gen         Generator
	exec        Executor
	feedback    FeedbackSink
	observers   []Observer
	keepOnRegen bool

	mu       sync.RWMutex
	sessions map[string]*Controller

	// retiring counts deleted sessions whose operations are still in flight.
	retiring sync.WaitGroup
}

type ManagerOptions struct {
	Feedback              FeedbackSink
	Observers             []Observer
	KeepStateOnRegenerate bool
}

func NewManager(gen Generator, exec Executor, opts ManagerOptions) *Manager {
	return &Manager{
		gen:         gen,
		exec:        exec,
		feedback:    opts.Feedback,
		observers:   opts.Observers,
		keepOnRegen: opts.KeepStateOnRegenerate,
		sessions:    make(map[string]*Controller),
	}
}

// Create starts a new session. With seed set the transcript starts with the
// demo conversation.
func (m *Manager) Create(dialect models.Dialect, seed bool) (*Controller, error) {
	opts := Options{
		ID:                    uuid.New().String(),
		Dialect:               dialect,
		Feedback:              m.feedback,
		Observers:             m.observers,
		KeepStateOnRegenerate: m.keepOnRegen,
	}
	if seed {
		opts.Seed = DemoTranscript()
	}
	c, err := NewController(m.gen, m.exec, opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[c.ID()] = c
	m.mu.Unlock()

	log.Info().Str("component", "session").Str("session_id", c.ID()).Str("dialect", string(c.Dialect())).
		Bool("seed", seed).Msg("session created")
	return c, nil
}

func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// List returns all sessions, oldest first.
func (m *Manager) List() []*Controller {
	m.mu.RLock()
	out := make([]*Controller, 0, len(m.sessions))
	for _, c := range m.sessions {
		out = append(out, c)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].ID() < out[j].ID()
		}
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out
}

// Delete forgets the session. Outstanding operations still resolve but their
// results are no longer reachable; Wait keeps waiting for them.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	c, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.retiring.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.retiring.Done()
		c.Wait()
	}()
	log.Info().Str("component", "session").Str("session_id", id).Msg("session deleted")
	return nil
}

// Wait blocks until every outstanding operation resolves, including those of
// sessions deleted while they were busy.
func (m *Manager) Wait() {
	for _, c := range m.List() {
		c.Wait()
	}
	m.retiring.Wait()
}
