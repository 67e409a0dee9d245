package service

import (
	"context"
	"time"

	"querydraft/models"
)

// StubExecutor returns canned results chosen by the query's leading verb,
// after an artificial delay. It never touches a database.
type StubExecutor struct {
	Delay time.Duration
}

func NewStubExecutor(delay time.Duration) *StubExecutor {
	return &StubExecutor{Delay: delay}
}

func (s *StubExecutor) Execute(ctx context.Context, query string) (*models.ExecutionResult, error) {
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var result *models.ExecutionResult
	switch LeadingVerb(query) {
	case "SELECT", "WITH":
		result = &models.ExecutionResult{
			Columns: []string{"customer_id", "first_name", "last_name", "email", "total_spent", "order_count"},
			Rows: [][]interface{}{
				{1001, "Sarah", "Johnson", "sarah.j@email.com", 3450.0, 3},
				{1045, "Michael", "Chen", "m.chen@email.com", 2890.5, 2},
				{1023, "Emma", "Williams", "emma.w@email.com", 2150.0, 2},
				{1067, "James", "Brown", "j.brown@email.com", 1875.25, 1},
			},
			RowCount: 4,
		}
	case "UPDATE", "INSERT", "DELETE":
		result = &models.ExecutionResult{
			Columns:  []string{"Status"},
			Rows:     [][]interface{}{{"1 row(s) affected"}},
			RowCount: 1,
		}
	default:
		result = &models.ExecutionResult{
			Columns:  []string{"Result"},
			Rows:     [][]interface{}{{"Query executed successfully"}},
			RowCount: 1,
		}
	}
	result.ExecutedAt = time.Now().UTC()
	return result, nil
}
