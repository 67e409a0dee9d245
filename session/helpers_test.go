package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"querydraft/models"
)

// fakeGenerator answers every request with "SELECT * FROM <text>;" unless
// draft is set. With release set, each call blocks until a value is sent.
type fakeGenerator struct {
	mu      sync.Mutex
	calls   []GenerateRequest
	release chan struct{}
	draft   func(req GenerateRequest, n int) (*models.Draft, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, req GenerateRequest) (*models.Draft, error) {
	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, req)
	release, draft := f.release, f.draft
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	if draft != nil {
		return draft(req, n)
	}
	if req.Text == "list customers" {
		return &models.Draft{Content: "SELECT * FROM customers;", Explanation: "Lists every customer."}, nil
	}
	return &models.Draft{Content: "SELECT * FROM " + req.Text + ";"}, nil
}

func (f *fakeGenerator) Calls() []GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]GenerateRequest(nil), f.calls...)
}

// fakeExecutor numbers its calls from 0 and returns a single row holding the
// call number. When gated, call n blocks until gate(n) is closed.
type fakeExecutor struct {
	mu      sync.Mutex
	n       int
	gated   bool
	gates   map[int]chan struct{}
	started chan int
	err     error
}

func (f *fakeExecutor) gate(n int) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gates == nil {
		f.gates = make(map[int]chan struct{})
	}
	g, ok := f.gates[n]
	if !ok {
		g = make(chan struct{})
		f.gates[n] = g
	}
	return g
}

func (f *fakeExecutor) open(n int) { close(f.gate(n)) }

func (f *fakeExecutor) Execute(ctx context.Context, query string) (*models.ExecutionResult, error) {
	f.mu.Lock()
	n := f.n
	f.n++
	gated, err, started := f.gated, f.err, f.started
	f.mu.Unlock()

	if started != nil {
		started <- n
	}
	if gated {
		<-f.gate(n)
	}
	if err != nil {
		return nil, err
	}
	return &models.ExecutionResult{
		Columns:  []string{"call"},
		Rows:     [][]interface{}{{n}},
		RowCount: 1,
	}, nil
}

type fakeSink struct {
	mu      sync.Mutex
	reports []models.FeedbackReport
	err     error
}

func (f *fakeSink) Report(ctx context.Context, r models.FeedbackReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reports = append(f.reports, r)
	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ctx context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *recorder) last(t EventType) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return Event{}, false
}

var errBoom = errors.New("boom")

func newTestController(t *testing.T, gen *fakeGenerator, exec *fakeExecutor, opts Options) *Controller {
	t.Helper()
	if gen == nil {
		gen = &fakeGenerator{}
	}
	if exec == nil {
		exec = &fakeExecutor{}
	}
	if opts.ID == "" {
		opts.ID = "test-session"
	}
	c, err := NewController(gen, exec, opts)
	require.NoError(t, err)
	t.Cleanup(c.Wait)
	return c
}

func waitOp(t *testing.T, op *Operation) error {
	t.Helper()
	require.NotNil(t, op)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := op.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "operation did not resolve")
	return err
}

// submit runs one full submit cycle and returns the response position.
func submit(t *testing.T, c *Controller, text string) int {
	t.Helper()
	op, err := c.Submit(context.Background(), text)
	require.NoError(t, err)
	require.NoError(t, waitOp(t, op))
	_, pos := op.Turn()
	require.GreaterOrEqual(t, pos, 0)
	return pos
}

func run(t *testing.T, c *Controller, pos int) *models.ExecutionResult {
	t.Helper()
	op, err := c.Run(context.Background(), pos)
	require.NoError(t, err)
	require.NoError(t, waitOp(t, op))
	return op.Result()
}
