// Package session implements the per-conversation state machine of the query
// drafting assistant: the turn transcript, execution and confirmation
// lifecycle, cached results, and undo history.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"querydraft/models"
)

type Options struct {
	// ID identifies the session in events and feedback. Optional.
	ID      string
	Dialect models.Dialect
	// Seed is appended to the transcript at creation, e.g. DemoTranscript().
	Seed      []models.Turn
	Feedback  FeedbackSink
	Observers []Observer
	// KeepStateOnRegenerate leaves confirmation, lifecycle and cached result
	// of a regenerated response in place. By default they are cleared because
	// they describe the replaced query, not the new one.
	KeepStateOnRegenerate bool
}

// Controller owns one session's transcript, lifecycle tracker, result cache
// and history. All mutations are serialized on mu; generation and execution
// run in their own goroutines and re-enter the lock to publish.
type Controller struct {
	id          string
	gen         Generator
	exec        Executor
	feedback    FeedbackSink
	observers   []Observer
	keepOnRegen bool
	createdAt   time.Time

	mu          sync.Mutex
	dialect     models.Dialect
	turns       *TurnStore
	lifecycle   *LifecycleTracker
	results     *ResultCache
	history     *HistoryStack
	generating  bool
	selected    int
	resultsView int

	wg sync.WaitGroup
}

func NewController(gen Generator, exec Executor, opts Options) (*Controller, error) {
	if gen == nil {
		return nil, errors.New("session: generator is required")
	}
	if exec == nil {
		return nil, errors.New("session: executor is required")
	}
	dialect := opts.Dialect
	if dialect == "" {
		dialect = models.DialectSQL
	}
	if !dialect.Valid() {
		return nil, ErrInvalidDialect
	}

	c := &Controller{
		id:          opts.ID,
		gen:         gen,
		exec:        exec,
		feedback:    opts.Feedback,
		observers:   append([]Observer(nil), opts.Observers...),
		keepOnRegen: opts.KeepStateOnRegenerate,
		createdAt:   time.Now().UTC(),
		dialect:     dialect,
		turns:       NewTurnStore(),
		lifecycle:   NewLifecycleTracker(),
		results:     NewResultCache(),
		history:     NewHistoryStack(),
		selected:    -1,
		resultsView: -1,
	}
	for _, t := range opts.Seed {
		c.turns.Append(t.Role, models.Draft{Content: t.Content, Explanation: t.Explanation, Preview: t.Preview})
	}
	return c, nil
}

func (c *Controller) ID() string { return c.id }

func (c *Controller) emit(ctx context.Context, events ...Event) {
	now := time.Now().UTC()
	for _, ev := range events {
		ev.SessionID = c.id
		if ev.Timestamp.IsZero() {
			ev.Timestamp = now
		}
		for _, o := range c.observers {
			o.OnEvent(ctx, ev)
		}
	}
}

// Wait blocks until every generation and execution started so far has
// resolved.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Submit appends text as a request turn and starts generating its response.
// Whitespace-only input is ignored and yields a nil Operation and nil error.
// While another generation is outstanding Submit returns ErrGenerating.
func (c *Controller) Submit(ctx context.Context, text string) (*Operation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	c.mu.Lock()
	if c.generating {
		c.mu.Unlock()
		return nil, ErrGenerating
	}
	prior := c.turns.Turns()
	req := c.turns.Append(models.RoleRequest, models.Draft{Content: text})
	pos := c.turns.Len() - 1
	c.generating = true
	gr := GenerateRequest{Text: text, Transcript: prior, Dialect: c.dialect}
	op := newOperation(OpSubmit, pos)
	c.wg.Add(1)
	c.mu.Unlock()

	c.emit(ctx, Event{Type: EventGenerationStarted, Position: pos, TurnID: req.ID, Data: map[string]any{"op": string(OpSubmit)}})
	go c.completeSubmit(context.WithoutCancel(ctx), op, req, gr)
	return op, nil
}

func (c *Controller) completeSubmit(ctx context.Context, op *Operation, req models.Turn, gr GenerateRequest) {
	defer c.wg.Done()
	start := time.Now()
	draft, err := c.gen.Generate(ctx, gr)
	if err == nil && draft == nil {
		err = errors.New("generator returned no draft")
	}

	c.mu.Lock()
	c.generating = false
	ev := Event{Position: op.Position, TurnID: req.ID, Duration: time.Since(start), Data: map[string]any{"op": string(OpSubmit)}}
	switch {
	case err != nil:
		err = &GenerationError{Err: err}
		ev.Type = EventGenerationFailed
	case c.turns.Len() == 0 || c.turns.IndexOf(req.ID) != c.turns.Len()-1:
		err = ErrStale
		ev.Type = EventGenerationDiscarded
	default:
		resp := c.turns.Append(models.RoleResponse, *draft)
		op.turn = resp
		op.turnPos = c.turns.Len() - 1
		ev.Type = EventGenerationCompleted
		ev.Position = op.turnPos
		ev.TurnID = resp.ID
		ev.Data["request"] = req.Content
		ev.Data["response"] = resp.Content
	}
	ev.Error = errString(err)
	c.mu.Unlock()

	if errors.Is(err, ErrStale) {
		log.Debug().Str("component", "session").Str("session_id", c.id).Uint64("turn_id", req.ID).
			Msg("dropping draft for request removed during generation")
	}
	c.emit(ctx, ev)
	op.finish(err)
}

// Regenerate asks the generator for a new draft of the request at pos and
// overwrites the response at pos+1 in place.
func (c *Controller) Regenerate(ctx context.Context, pos int) (*Operation, error) {
	c.mu.Lock()
	if c.generating {
		c.mu.Unlock()
		return nil, ErrGenerating
	}
	req, err := c.turns.At(pos)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if req.Role != models.RoleRequest {
		c.mu.Unlock()
		return nil, ErrNotRequest
	}
	resp, err := c.turns.Response(pos + 1)
	if err != nil {
		c.mu.Unlock()
		return nil, ErrNotResponse
	}
	c.generating = true
	gr := GenerateRequest{
		Text:       req.Content,
		Transcript: c.turns.Turns()[:pos],
		Dialect:    c.dialect,
		Regenerate: true,
	}
	op := newOperation(OpRegenerate, pos)
	c.wg.Add(1)
	c.mu.Unlock()

	c.emit(ctx, Event{Type: EventGenerationStarted, Position: pos + 1, TurnID: resp.ID, Data: map[string]any{"op": string(OpRegenerate)}})
	go c.completeRegenerate(context.WithoutCancel(ctx), op, req, resp.ID, gr)
	return op, nil
}

func (c *Controller) completeRegenerate(ctx context.Context, op *Operation, req models.Turn, respID uint64, gr GenerateRequest) {
	defer c.wg.Done()
	start := time.Now()
	draft, err := c.gen.Generate(ctx, gr)
	if err == nil && draft == nil {
		err = errors.New("generator returned no draft")
	}

	c.mu.Lock()
	c.generating = false
	ev := Event{Position: op.Position + 1, TurnID: respID, Duration: time.Since(start), Data: map[string]any{"op": string(OpRegenerate)}}
	reqPos := c.turns.IndexOf(req.ID)
	respPos := c.turns.IndexOf(respID)
	switch {
	case err != nil:
		err = &GenerationError{Err: err}
		ev.Type = EventGenerationFailed
	case reqPos < 0 || respPos != reqPos+1:
		err = ErrStale
		ev.Type = EventGenerationDiscarded
	default:
		resp, rerr := c.turns.Replace(respPos, *draft)
		if rerr != nil {
			err = rerr
			ev.Type = EventGenerationFailed
			break
		}
		if !c.keepOnRegen {
			c.lifecycle.Forget(respID)
			c.results.Delete(respID)
			if c.resultsView == respPos {
				c.resultsView = -1
			}
		}
		op.turn = resp
		op.turnPos = respPos
		ev.Type = EventGenerationCompleted
		ev.Position = respPos
		ev.Data["request"] = req.Content
		ev.Data["response"] = resp.Content
		ev.Data["revision"] = resp.Revision
	}
	ev.Error = errString(err)
	c.mu.Unlock()

	c.emit(ctx, ev)
	op.finish(err)
}

// Run executes the query of the response at pos. The turn is marked executed
// immediately; a successful completion replaces any cached result and opens
// the results view on pos. Runs on the same position may overlap, in which
// case the last one to complete wins.
func (c *Controller) Run(ctx context.Context, pos int) (*Operation, error) {
	c.mu.Lock()
	t, err := c.turns.Response(pos)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	attempt := c.lifecycle.Begin(t.ID)
	op := newOperation(OpRun, pos)
	c.wg.Add(1)
	c.mu.Unlock()

	c.emit(ctx, Event{Type: EventExecutionStarted, Position: pos, TurnID: t.ID, Data: map[string]any{"attempt": attempt.N}})
	go c.completeRun(context.WithoutCancel(ctx), op, t, attempt)
	return op, nil
}

func (c *Controller) completeRun(ctx context.Context, op *Operation, t models.Turn, attempt Attempt) {
	defer c.wg.Done()
	start := time.Now()
	res, err := c.exec.Execute(ctx, t.Content)
	if err == nil && res == nil {
		err = errors.New("executor returned no result")
	}

	c.mu.Lock()
	pos := c.turns.IndexOf(t.ID)
	ev := Event{Position: pos, TurnID: t.ID, Duration: time.Since(start), Data: map[string]any{"attempt": attempt.N}}
	switch {
	case pos < 0 || !c.lifecycle.Live(attempt):
		err = ErrStale
		ev.Type = EventExecutionDiscarded
	case err != nil:
		c.lifecycle.Finish(attempt, err)
		err = &ExecutionError{Position: pos, Err: err}
		ev.Type = EventExecutionFailed
	default:
		if res.RowCount < 0 {
			res.RowCount = len(res.Rows)
		}
		if res.ExecutedAt.IsZero() {
			res.ExecutedAt = time.Now().UTC()
		}
		c.results.Put(t.ID, res)
		c.lifecycle.Finish(attempt, nil)
		c.resultsView = pos
		op.result = res.Clone()
		ev.Type = EventExecutionCompleted
		ev.Data["row_count"] = res.RowCount
	}
	ev.Error = errString(err)
	c.mu.Unlock()

	c.emit(ctx, ev)
	op.finish(err)
}

// Confirm marks the response at pos confirmed. It requires a cached result and
// is idempotent.
func (c *Controller) Confirm(ctx context.Context, pos int) error {
	c.mu.Lock()
	t, err := c.turns.Response(pos)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if !c.results.Has(t.ID) {
		c.mu.Unlock()
		return ErrNoResult
	}
	changed := c.lifecycle.Confirm(t.ID)
	if c.resultsView == pos {
		c.resultsView = -1
	}
	c.mu.Unlock()

	if changed {
		c.emit(ctx, Event{Type: EventConfirmed, Position: pos, TurnID: t.ID})
	}
	return nil
}

// Reject reverses confirmation and drops the cached result of the response at
// pos, leaving the transcript untouched.
func (c *Controller) Reject(ctx context.Context, pos int) error {
	c.mu.Lock()
	t, err := c.turns.Response(pos)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.lifecycle.Unconfirm(t.ID)
	c.results.Delete(t.ID)
	if c.resultsView == pos {
		c.resultsView = -1
	}
	c.mu.Unlock()

	c.emit(ctx, Event{Type: EventRejected, Position: pos, TurnID: t.ID})
	return nil
}

// Undo records the current transcript in history, then removes the most
// recent request/response pair (or a trailing unanswered request) and clears
// every cached result.
func (c *Controller) Undo(ctx context.Context) error {
	c.mu.Lock()
	n := c.turns.Len()
	if n == 0 {
		c.mu.Unlock()
		return ErrNothingToUndo
	}
	c.history.Push(c.turns.Turns())

	k := 1
	if last, _ := c.turns.At(n - 1); last.Role == models.RoleResponse && n >= 2 {
		k = 2
	}
	removed := c.turns.Truncate(k)
	for _, t := range removed {
		c.lifecycle.Forget(t.ID)
	}
	c.results.Clear()
	if c.selected >= c.turns.Len() {
		c.selected = -1
	}
	c.resultsView = -1
	remaining := c.turns.Len()
	c.mu.Unlock()

	c.emit(ctx, Event{Type: EventUndone, Position: -1, Data: map[string]any{"removed": len(removed), "remaining": remaining}})
	return nil
}

// Select toggles which response is expanded for inspection and returns the
// new selection, or -1 when nothing is selected.
func (c *Controller) Select(ctx context.Context, pos int) (int, error) {
	c.mu.Lock()
	t, err := c.turns.Response(pos)
	if err != nil {
		c.mu.Unlock()
		return -1, err
	}
	if c.selected == pos {
		c.selected = -1
	} else {
		c.selected = pos
	}
	selected := c.selected
	c.mu.Unlock()

	c.emit(ctx, Event{Type: EventSelected, Position: pos, TurnID: t.ID, Data: map[string]any{"selected": selected}})
	return selected, nil
}

// ShowResults opens the results view on pos, which must have a cached result.
func (c *Controller) ShowResults(ctx context.Context, pos int) error {
	c.mu.Lock()
	t, err := c.turns.Response(pos)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if !c.results.Has(t.ID) {
		c.mu.Unlock()
		return ErrNoResult
	}
	c.resultsView = pos
	c.mu.Unlock()

	c.emit(ctx, Event{Type: EventResultsOpened, Position: pos, TurnID: t.ID})
	return nil
}

func (c *Controller) CloseResults(ctx context.Context) {
	c.mu.Lock()
	pos := c.resultsView
	c.resultsView = -1
	c.mu.Unlock()

	if pos >= 0 {
		c.emit(ctx, Event{Type: EventResultsClosed, Position: pos})
	}
}

// Report forwards the query at pos to the feedback sink. Failures are
// returned as *FeedbackError and leave the session unchanged.
func (c *Controller) Report(ctx context.Context, pos int) error {
	c.mu.Lock()
	t, err := c.turns.Response(pos)
	dialect := c.dialect
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if c.feedback == nil {
		log.Warn().Str("component", "session").Str("session_id", c.id).Int("position", pos).
			Msg("no feedback sink configured, dropping report")
		return nil
	}
	report := models.FeedbackReport{
		SessionID:  c.id,
		Position:   pos,
		Query:      t.Content,
		Dialect:    dialect,
		ReportedAt: time.Now().UTC(),
	}
	if err := c.feedback.Report(ctx, report); err != nil {
		ferr := &FeedbackError{Err: err}
		c.emit(ctx, Event{Type: EventReportFailed, Position: pos, TurnID: t.ID, Error: ferr.Error()})
		return ferr
	}
	c.emit(ctx, Event{Type: EventReported, Position: pos, TurnID: t.ID})
	return nil
}

func (c *Controller) SetDialect(ctx context.Context, d models.Dialect) error {
	if !d.Valid() {
		return ErrInvalidDialect
	}
	c.mu.Lock()
	changed := c.dialect != d
	c.dialect = d
	c.mu.Unlock()

	if changed {
		c.emit(ctx, Event{Type: EventDialectChanged, Position: -1, Data: map[string]any{"dialect": string(d)}})
	}
	return nil
}
