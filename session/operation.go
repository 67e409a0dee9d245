package session

import (
	"context"

	"querydraft/models"
)

type OpKind string

const (
	OpSubmit     OpKind = "submit"
	OpRegenerate OpKind = "regenerate"
	OpRun        OpKind = "run"
)

// Operation tracks one asynchronous generation or execution. Accessors other
// than Done and Wait are only meaningful once Done is closed.
type Operation struct {
	Kind OpKind
	// Position is the turn the operation was issued against: the request
	// position for submit and regenerate, the response position for run.
	Position int

	done    chan struct{}
	err     error
	turn    models.Turn
	turnPos int
	result  *models.ExecutionResult
}

func newOperation(kind OpKind, pos int) *Operation {
	return &Operation{Kind: kind, Position: pos, turnPos: -1, done: make(chan struct{})}
}

func (o *Operation) finish(err error) {
	o.err = err
	close(o.done)
}

func (o *Operation) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the operation resolves or ctx ends. It returns the
// operation's error, or ctx.Err() if the wait was abandoned. Abandoning the
// wait does not cancel the operation.
func (o *Operation) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Operation) Err() error {
	select {
	case <-o.done:
		return o.err
	default:
		return nil
	}
}

// Turn returns the response produced by a submit or regenerate and its
// position, or -1 when none was written.
func (o *Operation) Turn() (models.Turn, int) {
	return o.turn.Clone(), o.turnPos
}

// Result returns the execution result stored by a successful run.
func (o *Operation) Result() *models.ExecutionResult {
	return o.result.Clone()
}
