package session

import (
	"errors"
	"fmt"
)

var (
	// ErrGenerating is returned by Submit and Regenerate while another
	// generation is outstanding.
	ErrGenerating = errors.New("generation already in progress")

	ErrPositionOutOfRange = errors.New("position out of range")
	ErrNotResponse        = errors.New("position is not a response turn")
	ErrNotRequest         = errors.New("position is not a request turn")
	ErrNoResult           = errors.New("no execution result for position")
	ErrNothingToUndo      = errors.New("transcript is empty")
	ErrInvalidDialect     = errors.New("unsupported dialect")
	ErrSessionNotFound    = errors.New("session not found")

	// ErrStale marks a completion whose turn was removed before it resolved.
	ErrStale = errors.New("turn no longer in transcript")
)

// GenerationError wraps a Generator failure.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ExecutionError wraps an Executor failure.
type ExecutionError struct {
	Position int
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution of position %d failed: %v", e.Position, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// FeedbackError wraps a FeedbackSink failure. It is never fatal to the session.
type FeedbackError struct {
	Err error
}

func (e *FeedbackError) Error() string {
	return fmt.Sprintf("feedback report failed: %v", e.Err)
}

func (e *FeedbackError) Unwrap() error { return e.Err }
