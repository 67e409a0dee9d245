package db

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"querydraft/session"
)

const historyQueueSize = 256

type chatEntry struct {
	sessionID string
	request   string
	response  string
}

// HistoryRecorder is a session observer that records every completed
// generation as a chat history entry. Writes run on a background goroutine;
// an entry that arrives while the queue is full is dropped and logged.
type HistoryRecorder struct {
	db      *DB
	entries chan chatEntry
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// HistoryObserver starts a HistoryRecorder. Close it before closing d.
func (d *DB) HistoryObserver() *HistoryRecorder {
	r := &HistoryRecorder{
		db:      d,
		entries: make(chan chatEntry, historyQueueSize),
		done:    make(chan struct{}),
	}
	go r.loop()
	return r
}

// OnEvent implements session.Observer.
func (r *HistoryRecorder) OnEvent(_ context.Context, ev session.Event) {
	if ev.Type != session.EventGenerationCompleted {
		return
	}
	request, _ := ev.Data["request"].(string)
	response, _ := ev.Data["response"].(string)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.entries <- chatEntry{sessionID: ev.SessionID, request: request, response: response}:
	default:
		log.Warn().Str("component", "db").Str("session_id", ev.SessionID).
			Msg("chat history queue full, dropping entry")
	}
}

func (r *HistoryRecorder) loop() {
	defer close(r.done)
	for e := range r.entries {
		if err := r.db.StoreChatHistory(e.sessionID, e.request, e.response); err != nil {
			log.Error().Err(err).Str("component", "db").Str("session_id", e.sessionID).
				Msg("failed to store chat history")
		}
	}
}

// Close stops accepting events and waits until queued entries are written.
func (r *HistoryRecorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.entries)
	}
	r.mu.Unlock()
	<-r.done
}
