package session

import (
	"context"

	"querydraft/models"
)

type GenerateRequest struct {
	Text string
	// Transcript holds the turns preceding the request, oldest first.
	Transcript []models.Turn
	Dialect    models.Dialect
	// Regenerate is set when an existing response is being replaced; cached
	// drafts should not be returned.
	Regenerate bool
}

// Generator drafts a query for a natural-language request.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*models.Draft, error)
}

// Executor runs a query against a target data store.
type Executor interface {
	Execute(ctx context.Context, query string) (*models.ExecutionResult, error)
}

// FeedbackSink receives user-flagged defects.
type FeedbackSink interface {
	Report(ctx context.Context, report models.FeedbackReport) error
}
