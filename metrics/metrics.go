// Package metrics exposes Prometheus instrumentation for query drafting
// sessions.
package metrics

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"querydraft/session"
)

var (
	sessionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "querydraft_session_events_total",
		Help: "Session events by type",
	}, []string{"type"})

	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "querydraft_generation_duration_seconds",
		Help:    "Time for the generator to produce a draft",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"outcome"})

	executionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "querydraft_execution_duration_seconds",
		Help:    "Time for the executor to run a query",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"outcome"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "querydraft_sessions_active",
		Help: "Sessions currently held in memory",
	})
)

// Observer records every session event it receives.
var Observer session.Observer = session.ObserverFunc(observe)

func observe(_ context.Context, ev session.Event) {
	sessionEvents.WithLabelValues(string(ev.Type)).Inc()

	group, outcome, ok := strings.Cut(string(ev.Type), ".")
	if !ok || outcome == "started" {
		return
	}
	switch group {
	case "generation":
		generationDuration.WithLabelValues(outcome).Observe(ev.Duration.Seconds())
	case "execution":
		executionDuration.WithLabelValues(outcome).Observe(ev.Duration.Seconds())
	}
}

func SessionCreated() { activeSessions.Inc() }

func SessionDeleted() { activeSessions.Dec() }
