package session

import "querydraft/models"

// DemoTranscript returns the demonstration conversation a session can be
// seeded with: a report query and a single-row update with a change preview.
func DemoTranscript() []models.Turn {
	productHeaders := []string{"product_id", "product_name", "price", "stock", "updated_at"}
	return []models.Turn{
		{
			Role:    models.RoleRequest,
			Content: "Show me all customers who made purchases over $1000 in the last 30 days",
		},
		{
			Role: models.RoleResponse,
			Content: `SELECT 
  c.customer_id,
  c.first_name,
  c.last_name,
  c.email,
  SUM(o.total_amount) as total_spent,
  COUNT(o.order_id) as order_count
FROM customers c
INNER JOIN orders o ON c.customer_id = o.customer_id
WHERE o.order_date >= DATE_SUB(CURDATE(), INTERVAL 30 DAY)
  AND o.total_amount > 1000
GROUP BY c.customer_id, c.first_name, c.last_name, c.email
ORDER BY total_spent DESC;`,
			Explanation: "This query retrieves high-value customers from the last month. It joins the customers and orders tables, " +
				"filters for orders over $1000 made in the past 30 days, then groups by customer to calculate their total spending " +
				"and order count. Results are sorted by total spending in descending order to show the biggest spenders first.",
		},
		{
			Role:    models.RoleRequest,
			Content: "Update the price of product 'Wireless Mouse' to $29.99",
		},
		{
			Role: models.RoleResponse,
			Content: `UPDATE products
SET price = 29.99,
    updated_at = NOW()
WHERE product_name = 'Wireless Mouse';`,
			Explanation: "This query updates the price of the 'Wireless Mouse' product to $29.99. It also sets the updated_at " +
				"timestamp to the current time to track when the change was made. The WHERE clause ensures only the specific " +
				"product is modified.",
			Preview: &models.Preview{
				Before: &models.TableData{
					Headers: productHeaders,
					Rows:    [][]interface{}{{205, "Wireless Mouse", 24.99, 150, "2025-01-05 10:30:00"}},
				},
				After: &models.TableData{
					Headers: productHeaders,
					Rows:    [][]interface{}{{205, "Wireless Mouse", 29.99, 150, "2025-01-07 14:22:15"}},
				},
				Title: "Table Change Preview (1 row affected)",
			},
		},
	}
}
