package session

import (
	"context"
	"time"
)

// EventType names a controller event, e.g. "execution.completed".
type EventType string

const (
	EventGenerationStarted   EventType = "generation.started"
	EventGenerationCompleted EventType = "generation.completed"
	EventGenerationFailed    EventType = "generation.failed"
	EventGenerationDiscarded EventType = "generation.discarded"
	EventExecutionStarted    EventType = "execution.started"
	EventExecutionCompleted  EventType = "execution.completed"
	EventExecutionFailed     EventType = "execution.failed"
	EventExecutionDiscarded  EventType = "execution.discarded"
	EventConfirmed           EventType = "query.confirmed"
	EventRejected            EventType = "query.rejected"
	EventUndone              EventType = "transcript.undone"
	EventSelected            EventType = "inspection.selected"
	EventResultsOpened       EventType = "results.opened"
	EventResultsClosed       EventType = "results.closed"
	EventReported            EventType = "feedback.reported"
	EventReportFailed        EventType = "feedback.failed"
	EventDialectChanged      EventType = "dialect.changed"
)

// Event describes one state change in a session. Position is -1 when the
// event is not tied to a turn.
type Event struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id"`
	Position  int            `json:"position"`
	TurnID    uint64         `json:"turn_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Duration  time.Duration  `json:"duration,omitempty"`
	Error     string         `json:"error,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Observer receives controller events. OnEvent is called outside the session
// lock, from whichever goroutine produced the event, and must not block.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

type ObserverFunc func(ctx context.Context, event Event)

func (f ObserverFunc) OnEvent(ctx context.Context, event Event) { f(ctx, event) }

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
