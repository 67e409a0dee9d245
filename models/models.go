package models

import "time"

type Role string

const (
	RoleRequest  Role = "request"
	RoleResponse Role = "response"
)

// Dialect is the target database family a session drafts queries for.
type Dialect string

const (
	DialectSQL        Dialect = "SQL"
	DialectMongoDB    Dialect = "MongoDB"
	DialectPostgreSQL Dialect = "PostgreSQL"
	DialectMySQL      Dialect = "MySQL"
)

var Dialects = []Dialect{DialectSQL, DialectMongoDB, DialectPostgreSQL, DialectMySQL}

func (d Dialect) Valid() bool {
	for _, v := range Dialects {
		if v == d {
			return true
		}
	}
	return false
}

type TableData struct {
	Headers []string        `json:"headers"`
	Rows    [][]interface{} `json:"rows"`
}

// Preview illustrates the effect of a mutating query before it runs.
type Preview struct {
	Before *TableData `json:"before,omitempty"`
	After  *TableData `json:"after,omitempty"`
	Title  string     `json:"title,omitempty"`
}

type Turn struct {
	ID          uint64    `json:"id"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	Explanation string    `json:"explanation,omitempty"`
	Preview     *Preview  `json:"preview,omitempty"`
	Revision    int       `json:"revision"`
	CreatedAt   time.Time `json:"created_at"`
}

// Draft is what a generator returns for one request.
type Draft struct {
	Content     string   `json:"content"`
	Explanation string   `json:"explanation,omitempty"`
	Preview     *Preview `json:"preview,omitempty"`
}

type ExecutionResult struct {
	Columns    []string        `json:"columns"`
	Rows       [][]interface{} `json:"rows"`
	RowCount   int             `json:"row_count"`
	ExecutedAt time.Time       `json:"executed_at"`
	Filename   string          `json:"filename,omitempty"`
}

type FeedbackReport struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Position   int       `json:"position"`
	Query      string    `json:"query"`
	Dialect    Dialect   `json:"dialect"`
	ReportedAt time.Time `json:"reported_at"`
}

type SQLFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type ChatHistory struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

type ResultFile struct {
	Filename  string          `json:"filename"`
	Query     string          `json:"query,omitempty"`
	Timestamp string          `json:"timestamp"`
	Columns   []string        `json:"columns"`
	Rows      [][]interface{} `json:"rows"`
	RowCount  int             `json:"row_count"`
	Error     string          `json:"error,omitempty"`
}

type ResultFileInfo struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
	Format   string `json:"format"`
}

// API request bodies

type CreateSessionRequest struct {
	Seed    bool    `json:"seed"`
	Dialect Dialect `json:"dialect,omitempty" validate:"omitempty,dialect"`
}

type SubmitRequest struct {
	Message string `json:"message" validate:"max=32768"`
	Wait    *bool  `json:"wait,omitempty"`
}

type WaitRequest struct {
	Wait *bool `json:"wait,omitempty"`
}

type DialectRequest struct {
	Dialect Dialect `json:"dialect" validate:"required,dialect"`
}

// ShouldWait reports whether the caller wants the handler to block until the
// asynchronous operation resolves. Defaults to true.
func ShouldWait(w *bool) bool {
	return w == nil || *w
}

func cloneRows(rows [][]interface{}) [][]interface{} {
	if rows == nil {
		return nil
	}
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		out[i] = append([]interface{}(nil), row...)
	}
	return out
}

func (t *TableData) Clone() *TableData {
	if t == nil {
		return nil
	}
	return &TableData{
		Headers: append([]string(nil), t.Headers...),
		Rows:    cloneRows(t.Rows),
	}
}

func (p *Preview) Clone() *Preview {
	if p == nil {
		return nil
	}
	return &Preview{Before: p.Before.Clone(), After: p.After.Clone(), Title: p.Title}
}

// Clone returns a copy sharing no slices with t.
func (t Turn) Clone() Turn {
	t.Preview = t.Preview.Clone()
	return t
}

func (r *ExecutionResult) Clone() *ExecutionResult {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Columns = append([]string(nil), r.Columns...)
	cp.Rows = cloneRows(r.Rows)
	return &cp
}
