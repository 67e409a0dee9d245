package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querydraft/ai"
	"querydraft/db"
	"querydraft/metrics"
	"querydraft/models"
	"querydraft/service"
	"querydraft/session"
)

type testEnv struct {
	router   *gin.Engine
	handlers *Handlers
	manager  *session.Manager
	db       *db.DB
	hub      *Hub
}

func newTestEnv(t *testing.T, gen session.Generator, exec session.Executor) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	storage, err := service.NewResultsStorage(t.TempDir())
	require.NoError(t, err)

	if gen == nil {
		gen = ai.NewStubGenerator(0)
	}
	if exec == nil {
		exec = service.NewStubExecutor(0)
	}
	hub := NewHub()
	recorder := database.HistoryObserver()
	t.Cleanup(recorder.Close)
	mgr := session.NewManager(gen, exec, session.ManagerOptions{
		Feedback:  database,
		Observers: []session.Observer{recorder, metrics.Observer, hub},
	})
	t.Cleanup(mgr.Wait)

	h := New(mgr, database, storage, exec, hub, t.TempDir())
	return &testEnv{router: NewRouter(h, []string{"*"}), handlers: h, manager: mgr, db: database, hub: hub}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (e *testEnv) createSession(t *testing.T, body string) session.Snapshot {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/sessions", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[session.Snapshot](t, w)
}

type failingExecutor struct{}

func (failingExecutor) Execute(context.Context, string) (*models.ExecutionResult, error) {
	return nil, errors.New("connection refused")
}

type blockingGenerator struct {
	release chan struct{}
}

func (b *blockingGenerator) Generate(ctx context.Context, req session.GenerateRequest) (*models.Draft, error) {
	<-b.release
	return &models.Draft{Content: "SELECT 1;"}, nil
}

func TestSessionsLifecycle(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	snap := env.createSession(t, `{"seed": true, "dialect": "MySQL"}`)
	assert.Equal(t, models.DialectMySQL, snap.Dialect)
	require.Len(t, snap.Turns, 4)
	assert.Equal(t, []int{1, 3}, snap.ResponsePositions())
	assert.Nil(t, snap.Selected)

	empty := env.createSession(t, "")
	assert.Equal(t, models.DialectSQL, empty.Dialect)
	assert.Empty(t, empty.Turns)

	w := env.do(t, http.MethodGet, "/api/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Sessions []sessionSummary `json:"sessions"`
	}](t, w)
	require.Len(t, list.Sessions, 2)
	assert.Equal(t, snap.ID, list.Sessions[0].ID)
	assert.Equal(t, 4, list.Sessions[0].Turns)

	w = env.do(t, http.MethodGet, "/api/sessions/"+snap.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, snap.ID, decode[session.Snapshot](t, w).ID)

	w = env.do(t, http.MethodDelete, "/api/sessions/"+snap.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/sessions/"+snap.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/sessions/"+snap.ID, "").Code)
}

func TestCreateSession_InvalidDialect(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	w := env.do(t, http.MethodPost, "/api/sessions", `{"dialect": "Oracle"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Oracle")
}

func TestSetDialect(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	snap := env.createSession(t, "")

	w := env.do(t, http.MethodPut, "/api/sessions/"+snap.ID+"/dialect", `{"dialect": "PostgreSQL"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DialectPostgreSQL, decode[session.Snapshot](t, w).Dialect)

	w = env.do(t, http.MethodPut, "/api/sessions/"+snap.ID+"/dialect", `{"dialect": "dBase"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPut, "/api/sessions/"+snap.ID+"/dialect", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmit(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	snap := env.createSession(t, "")

	w := env.do(t, http.MethodPost, "/api/sessions/"+snap.ID+"/submit", `{"message": "top customers this month"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[operationResponse](t, w)
	assert.Equal(t, session.OpSubmit, resp.Kind)
	assert.True(t, resp.Done)
	assert.Equal(t, 0, resp.Position)
	require.NotNil(t, resp.TurnPosition)
	assert.Equal(t, 1, *resp.TurnPosition)
	require.NotNil(t, resp.Turn)
	assert.Equal(t, models.RoleResponse, resp.Turn.Role)
	assert.Contains(t, resp.Turn.Content, "LIMIT 10;")
	assert.Len(t, resp.Session.Turns, 2)
	assert.False(t, resp.Session.Generating)

	type history struct {
		Undo []session.HistoryEntry `json:"undo"`
		Chat []models.ChatHistory   `json:"chat"`
	}
	var hist history
	require.Eventually(t, func() bool {
		w := env.do(t, http.MethodGet, "/api/sessions/"+snap.ID+"/history", "")
		if w.Code != http.StatusOK {
			return false
		}
		hist = decode[history](t, w)
		return len(hist.Chat) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Empty(t, hist.Undo)
	assert.Equal(t, "top customers this month", hist.Chat[0].Message)
}

func TestSubmit_IgnoresBlankMessage(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	snap := env.createSession(t, "")

	w := env.do(t, http.MethodPost, "/api/sessions/"+snap.ID+"/submit", `{"message": "   "}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Ignored bool             `json:"ignored"`
		Session session.Snapshot `json:"session"`
	}](t, w)
	assert.True(t, body.Ignored)
	assert.Empty(t, body.Session.Turns)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/sessions/"+snap.ID+"/submit", `not json`).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/sessions/missing/submit", `{"message": "x"}`).Code)
}

func TestSubmit_NoWaitAndBusy(t *testing.T) {
	gen := &blockingGenerator{release: make(chan struct{})}
	env := newTestEnv(t, gen, nil)
	snap := env.createSession(t, "")

	w := env.do(t, http.MethodPost, "/api/sessions/"+snap.ID+"/submit?wait=false", `{"message": "first"}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	resp := decode[operationResponse](t, w)
	assert.False(t, resp.Done)
	assert.True(t, resp.Session.Generating)
	assert.Len(t, resp.Session.Turns, 1)

	w = env.do(t, http.MethodPost, "/api/sessions/"+snap.ID+"/submit", `{"message": "second"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = env.do(t, http.MethodPost, "/api/sessions/"+snap.ID+"/submit", `{"message": "bad", "wait": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	close(gen.release)
	env.manager.Wait()

	w = env.do(t, http.MethodGet, "/api/sessions/"+snap.ID, "")
	got := decode[session.Snapshot](t, w)
	assert.False(t, got.Generating)
	require.Len(t, got.Turns, 2)
	assert.Equal(t, "SELECT 1;", got.Turns[1].Content)
}

func TestRunConfirmReject(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	snap := env.createSession(t, `{"seed": true}`)
	base := "/api/sessions/" + snap.ID

	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodPost, base+"/turns/1/confirm", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodGet, base+"/turns/1/result", "").Code)

	w := env.do(t, http.MethodPost, base+"/turns/1/run", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[operationResponse](t, w)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 4, resp.Result.RowCount)
	require.NotNil(t, resp.Session.ResultsView)
	assert.Equal(t, 1, *resp.Session.ResultsView)
	require.NotNil(t, resp.Session.Turns[1].Status)
	assert.True(t, resp.Session.Turns[1].Status.Executed)
	assert.True(t, resp.Session.Turns[1].HasResult)

	w = env.do(t, http.MethodGet, base+"/turns/1/result", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "customer_id", decode[models.ExecutionResult](t, w).Columns[0])

	for i := 0; i < 2; i++ {
		w = env.do(t, http.MethodPost, base+"/turns/1/confirm", "")
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[session.Snapshot](t, w)
		assert.True(t, got.Turns[1].Status.Confirmed)
		assert.Nil(t, got.ResultsView)
	}

	w = env.do(t, http.MethodPost, base+"/turns/1/reject", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[session.Snapshot](t, w)
	assert.False(t, got.Turns[1].Status.Confirmed)
	assert.False(t, got.Turns[1].HasResult)
	assert.Len(t, got.Turns, 4)
	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodGet, base+"/turns/1/result", "").Code)
}

func TestRun_PositionErrors(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	snap := env.createSession(t, `{"seed": true}`)
	base := "/api/sessions/" + snap.ID

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, base+"/turns/0/run", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, base+"/turns/9/run", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, base+"/turns/abc/run", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, base+"/turns/-1/run", "").Code)
}

func TestRun_ExecutorFailure(t *testing.T) {
	env := newTestEnv(t, nil, failingExecutor{})
	snap := env.createSession(t, `{"seed": true}`)

	w := env.do(t, http.MethodPost, "/api/sessions/"+snap.ID+"/turns/3/run", `{"wait": true}`)
	require.Equal(t, http.StatusBadGateway, w.Code)
	resp := decode[operationResponse](t, w)
	assert.Contains(t, resp.Error, "connection refused")
	st := resp.Session.Turns[3].Status
	require.NotNil(t, st)
	assert.True(t, st.Executed)
	assert.Contains(t, st.LastError, "connection refused")
	assert.False(t, resp.Session.Turns[3].HasResult)
}

func TestRegenerate(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	snap := env.createSession(t, `{"seed": true}`)
	base := "/api/sessions/" + snap.ID

	w := env.do(t, http.MethodPost, base+"/turns/0/regenerate", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[operationResponse](t, w)
	require.NotNil(t, resp.TurnPosition)
	assert.Equal(t, 1, *resp.TurnPosition)
	assert.Contains(t, resp.Turn.Content, "-- Regenerated query")
	assert.Equal(t, 1, resp.Turn.Revision)
	assert.Len(t, resp.Session.Turns, 4)
	assert.Equal(t, snap.Turns[0].Content, resp.Session.Turns[0].Content)

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, base+"/turns/1/regenerate", "").Code)
}

func TestSelectAndResultsView(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	snap := env.createSession(t, `{"seed": true}`)
	base := "/api/sessions/" + snap.ID

	type selectBody struct {
		Selected *int `json:"selected"`
	}
	w := env.do(t, http.MethodPost, base+"/turns/3/select", "")
	require.Equal(t, http.StatusOK, w.Code)
	sel := decode[selectBody](t, w)
	require.NotNil(t, sel.Selected)
	assert.Equal(t, 3, *sel.Selected)

	w = env.do(t, http.MethodPost, base+"/turns/3/select", "")
	assert.Nil(t, decode[selectBody](t, w).Selected)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, base+"/turns/2/select", "").Code)

	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodPost, base+"/results/3/show", "").Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, base+"/turns/3/run", "").Code)

	w = env.do(t, http.MethodPost, base+"/results/close", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[session.Snapshot](t, w).ResultsView)

	w = env.do(t, http.MethodPost, base+"/results/3/show", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[session.Snapshot](t, w)
	require.NotNil(t, got.ResultsView)
	assert.Equal(t, 3, *got.ResultsView)
}

func TestUndo(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	snap := env.createSession(t, `{"seed": true}`)
	base := "/api/sessions/" + snap.ID

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, base+"/turns/1/run", "").Code)

	w := env.do(t, http.MethodPost, base+"/undo", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[session.Snapshot](t, w)
	assert.Len(t, got.Turns, 2)
	assert.False(t, got.Turns[1].HasResult)
	assert.Equal(t, 1, got.HistoryDepth)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, base+"/undo", "").Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, base+"/undo", "").Code)

	w = env.do(t, http.MethodGet, base+"/history", "")
	hist := decode[struct {
		Undo []session.HistoryEntry `json:"undo"`
	}](t, w)
	require.Len(t, hist.Undo, 2)
	assert.Len(t, hist.Undo[0].Turns, 4)
	assert.Len(t, hist.Undo[1].Turns, 2)
}

func TestReportAndFeedback(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	snap := env.createSession(t, `{"seed": true, "dialect": "MySQL"}`)
	other := env.createSession(t, `{"seed": true}`)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/sessions/"+snap.ID+"/turns/3/report", "").Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/sessions/"+other.ID+"/turns/1/report", "").Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/sessions/"+snap.ID+"/turns/0/report", "").Code)

	w := env.do(t, http.MethodGet, "/api/feedback?session_id="+snap.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Reports []models.FeedbackReport `json:"reports"`
	}](t, w)
	require.Len(t, body.Reports, 1)
	assert.Equal(t, 3, body.Reports[0].Position)
	assert.Equal(t, models.DialectMySQL, body.Reports[0].Dialect)
	assert.Contains(t, body.Reports[0].Query, "Wireless Mouse")

	w = env.do(t, http.MethodGet, "/api/feedback", "")
	assert.Len(t, decode[struct {
		Reports []models.FeedbackReport `json:"reports"`
	}](t, w).Reports, 2)
}

func TestSQLFiles(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	upload := func(name, content string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, _ = fw.Write([]byte(content))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/sql/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusOK, upload("orders.sql", "SELECT * FROM orders;").Code)
	assert.Equal(t, http.StatusBadRequest, upload("notes.txt", "hello").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/sql/upload", "").Code)

	w := env.do(t, http.MethodGet, "/api/sql/files", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"orders.sql"}, decode[struct {
		Files []string `json:"files"`
	}](t, w).Files)
}

func TestResultFiles(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	w := env.do(t, http.MethodGet, "/api/results/files", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/results/file/missing.json", "").Code)

	env.handlers.results = nil
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/api/results/files", "").Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	snap := env.createSession(t, `{"seed": true}`)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/sessions/"+snap.ID+"/turns/1/run", "").Code)

	w := env.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[map[string]interface{}](t, w)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "stub", health["executor"])

	w = env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "querydraft_session_events_total")
	assert.Contains(t, w.Body.String(), "querydraft_execution_duration_seconds")
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/sessions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestEventStream(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	snap := env.createSession(t, "")

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/" + snap.ID + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first streamMessage
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "snapshot", first.Type)
	require.NotNil(t, first.Session)
	assert.Equal(t, snap.ID, first.Session.ID)
	assert.Equal(t, 1, env.hub.Subscribers(snap.ID))

	resp, err := http.Post(srv.URL+"/api/sessions/"+snap.ID+"/submit", "application/json",
		strings.NewReader(`{"message": "top customers"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var types []session.EventType
	for len(types) < 2 {
		var msg streamMessage
		require.NoError(t, conn.ReadJSON(&msg))
		require.Equal(t, "event", msg.Type)
		require.NotNil(t, msg.Event)
		assert.Equal(t, snap.ID, msg.Event.SessionID)
		types = append(types, msg.Event.Type)
	}
	assert.Equal(t, []session.EventType{session.EventGenerationStarted, session.EventGenerationCompleted}, types)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/sessions/"+snap.ID, "").Code)
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestEventStream_UnknownSession(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	w := env.do(t, http.MethodGet, "/api/sessions/missing/events", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{session.ErrSessionNotFound, http.StatusNotFound},
		{session.ErrPositionOutOfRange, http.StatusNotFound},
		{session.ErrGenerating, http.StatusConflict},
		{session.ErrNotResponse, http.StatusConflict},
		{session.ErrNothingToUndo, http.StatusConflict},
		{session.ErrNoResult, http.StatusUnprocessableEntity},
		{session.ErrInvalidDialect, http.StatusBadRequest},
		{&session.GenerationError{Err: errors.New("upstream")}, http.StatusBadGateway},
		{&session.ExecutionError{Position: 1, Err: errors.New("db")}, http.StatusBadGateway},
		{&session.FeedbackError{Err: errors.New("sink")}, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
