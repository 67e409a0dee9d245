package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"querydraft/models"
)

// SQLExecutor runs drafted queries against a database/sql connection and
// optionally archives each result.
type SQLExecutor struct {
	db             *sql.DB
	driver         string
	resultsStorage *ResultsStorage
	format         string
}

func newSQLExecutor(db *sql.DB, driver string, storage *ResultsStorage, format string) *SQLExecutor {
	if format == "none" {
		storage = nil
	}
	return &SQLExecutor{db: db, driver: driver, resultsStorage: storage, format: format}
}

func (s *SQLExecutor) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLExecutor) Driver() string { return s.driver }

func (s *SQLExecutor) GetResultsStorage() *ResultsStorage {
	return s.resultsStorage
}

func (s *SQLExecutor) IsConnected(ctx context.Context) bool {
	if s.db == nil {
		return false
	}
	return s.db.PingContext(ctx) == nil
}

// Execute runs query. Statements that return rows are read in full; other
// statements report the number of affected rows as a single status row.
func (s *SQLExecutor) Execute(ctx context.Context, query string) (*models.ExecutionResult, error) {
	if s.db == nil {
		return nil, fmt.Errorf("%s connection is not initialized", s.driver)
	}

	var (
		result *models.ExecutionResult
		err    error
	)
	if ReturnsRows(query) {
		result, err = s.query(ctx, query)
	} else {
		result, err = s.exec(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	result.ExecutedAt = time.Now().UTC()

	if s.resultsStorage != nil {
		filename, err := s.resultsStorage.Save(result, query, s.format)
		if err != nil {
			log.Warn().Err(err).Str("component", "executor").Msg("failed to archive result")
		} else {
			result.Filename = filename
		}
	}
	return result, nil
}

func (s *SQLExecutor) query(ctx context.Context, query string) (*models.ExecutionResult, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	resultRows := [][]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make([]interface{}, len(columns))
		for i, val := range values {
			row[i] = normalizeValue(val)
		}
		resultRows = append(resultRows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.ExecutionResult{
		Columns:  columns,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

func (s *SQLExecutor) exec(ctx context.Context, query string) (*models.ExecutionResult, error) {
	res, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	return &models.ExecutionResult{
		Columns:  []string{"Status"},
		Rows:     [][]interface{}{{fmt.Sprintf("%d row(s) affected", affected)}},
		RowCount: int(affected),
	}, nil
}

// normalizeValue converts driver values into JSON-friendly ones.
func normalizeValue(val interface{}) interface{} {
	switch v := val.(type) {
	case nil:
		return nil
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case int64, int32, int, float64, float32, bool, string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

var rowVerbs = map[string]bool{
	"SELECT":  true,
	"WITH":    true,
	"SHOW":    true,
	"EXPLAIN": true,
	"PRAGMA":  true,
	"VALUES":  true,
	"EXEC":    true,
	"EXECUTE": true,
}

// LeadingVerb returns the first keyword of query in upper case, skipping
// leading comment lines.
func LeadingVerb(query string) string {
	for _, line := range strings.Split(query, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t' || r == '(' || r == ';'
		})
		if len(fields) == 0 {
			continue
		}
		return strings.ToUpper(fields[0])
	}
	return ""
}

// ReturnsRows reports whether query is expected to produce a result set.
func ReturnsRows(query string) bool {
	return rowVerbs[LeadingVerb(query)]
}
