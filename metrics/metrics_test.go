package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"querydraft/session"
)

func TestObserver_CountsEvents(t *testing.T) {
	ctx := context.Background()
	before := testutil.ToFloat64(sessionEvents.WithLabelValues(string(session.EventConfirmed)))

	Observer.OnEvent(ctx, session.Event{Type: session.EventConfirmed})
	Observer.OnEvent(ctx, session.Event{Type: session.EventConfirmed})

	after := testutil.ToFloat64(sessionEvents.WithLabelValues(string(session.EventConfirmed)))
	assert.Equal(t, before+2, after)
}

func TestObserver_RecordsDurations(t *testing.T) {
	ctx := context.Background()
	Observer.OnEvent(ctx, session.Event{Type: session.EventExecutionStarted})
	Observer.OnEvent(ctx, session.Event{Type: session.EventExecutionFailed, Duration: 20 * time.Millisecond})
	Observer.OnEvent(ctx, session.Event{Type: session.EventGenerationCompleted, Duration: time.Second})

	// started events carry no duration and are not observed
	assert.Equal(t, 1, testutil.CollectAndCount(executionDuration, "querydraft_execution_duration_seconds"))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(generationDuration), 1)
}

func TestActiveSessions(t *testing.T) {
	base := testutil.ToFloat64(activeSessions)
	SessionCreated()
	SessionCreated()
	SessionDeleted()
	assert.Equal(t, base+1, testutil.ToFloat64(activeSessions))
}
