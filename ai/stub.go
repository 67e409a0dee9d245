package ai

import (
	"context"
	"time"

	"querydraft/models"
	"querydraft/session"
)

const (
	stubQuery = `SELECT users.name, orders.total, orders.created_at
FROM users
INNER JOIN orders ON users.id = orders.user_id
WHERE orders.created_at >= DATE_SUB(NOW(), INTERVAL 30 DAY)
ORDER BY orders.total DESC
LIMIT 10;`

	stubExplanation = "This query retrieves the top 10 customers by order value from the last 30 days. " +
		"It joins the users and orders tables, filters for recent orders, and sorts by total amount in descending order."

	stubRegeneratedQuery = `-- Regenerated query
SELECT c.customer_id, c.email, SUM(o.total_amount) as total
FROM customers c
JOIN orders o ON c.customer_id = o.customer_id
WHERE o.order_date >= DATE_SUB(NOW(), INTERVAL 30 DAY)
  AND o.total_amount > 1000
GROUP BY c.customer_id, c.email;`

	stubRegeneratedExplanation = "This is an alternative approach to the same query. " +
		"It uses a simpler JOIN syntax and focuses on essential fields for better performance."
)

// StubGenerator returns fixed drafts after an artificial delay. It is used for
// demos and when no model provider is configured.
type StubGenerator struct {
	Delay time.Duration
}

func NewStubGenerator(delay time.Duration) *StubGenerator {
	return &StubGenerator{Delay: delay}
}

// Generate implements session.Generator.
func (s *StubGenerator) Generate(ctx context.Context, req session.GenerateRequest) (*models.Draft, error) {
	if s.Delay > 0 {
		if err := sleepCtx(ctx, s.Delay); err != nil {
			return nil, err
		}
	}

	if req.Regenerate {
		// No preview: the session keeps the one already shown.
		return &models.Draft{Content: stubRegeneratedQuery, Explanation: stubRegeneratedExplanation}, nil
	}
	return &models.Draft{
		Content:     stubQuery,
		Explanation: stubExplanation,
		Preview: &models.Preview{
			After: &models.TableData{
				Headers: []string{"name", "total", "created_at"},
				Rows: [][]interface{}{
					{"Alice Cooper", 1250.0, "2025-01-05"},
					{"Bob Smith", 980.5, "2025-01-03"},
					{"Carol White", 875.25, "2025-01-06"},
				},
			},
			Title: "Query Results (3 rows shown)",
		},
	}, nil
}
