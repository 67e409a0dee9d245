package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"querydraft/models"
	"querydraft/session"
	"querydraft/validation"
)

type operationResponse struct {
	Kind     session.OpKind `json:"kind"`
	Position int            `json:"position"`
	Done     bool           `json:"done"`
	Error    string         `json:"error,omitempty"`
	// Turn and TurnPosition are set once a submit or regenerate wrote a response.
	Turn         *models.Turn            `json:"turn,omitempty"`
	TurnPosition *int                    `json:"turn_position,omitempty"`
	Result       *models.ExecutionResult `json:"result,omitempty"`
	Session      session.Snapshot        `json:"session"`
}

// respondOperation either returns 202 right away or blocks until op resolves.
func respondOperation(c *gin.Context, sess *session.Controller, op *session.Operation, wait bool) {
	if !wait {
		c.JSON(http.StatusAccepted, operationResponse{Kind: op.Kind, Position: op.Position, Session: sess.Snapshot()})
		return
	}

	err := op.Wait(c.Request.Context())
	resp := operationResponse{Kind: op.Kind, Position: op.Position, Done: true}
	if err != nil {
		resp.Error = err.Error()
		resp.Session = sess.Snapshot()
		c.JSON(statusFor(err), resp)
		return
	}
	if t, pos := op.Turn(); pos >= 0 {
		resp.Turn = &t
		resp.TurnPosition = &pos
	}
	resp.Result = op.Result()
	resp.Session = sess.Snapshot()
	c.JSON(http.StatusOK, resp)
}

// SubmitHandler appends a request and drafts its query
// @Summary      Submit a request
// @Description  Append a natural-language request to the transcript and generate a query for it. Whitespace-only messages are ignored.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Session ID"
// @Param        request  body      models.SubmitRequest  true  "Message and wait flag"
// @Param        wait     query     bool                  false "Override the body's wait flag"
// @Success      200      {object}  operationResponse  "Generated response"
// @Success      202      {object}  operationResponse  "Generation started"
// @Failure      400      {object}  map[string]string  "Invalid request"
// @Failure      409      {object}  map[string]string  "Generation already in progress"
// @Failure      502      {object}  operationResponse  "Generator failed"
// @Router       /api/sessions/{id}/submit [post]
func (h *Handlers) SubmitHandler(c *gin.Context) {
	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := validation.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wait, err := wantWait(c, req.Wait)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wait flag"})
		return
	}
	sess := h.session(c)
	if sess == nil {
		return
	}

	op, err := sess.Submit(c.Request.Context(), req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	if op == nil {
		c.JSON(http.StatusOK, gin.H{"ignored": true, "session": sess.Snapshot()})
		return
	}
	log.Debug().Str("component", "chat_handler").Str("session_id", sess.ID()).Int("position", op.Position).
		Msg("generation started")
	respondOperation(c, sess, op, wait)
}

// RegenerateHandler replaces the response that follows a request
// @Summary      Regenerate a response
// @Description  Ask for a different query for the request at pos; the response at pos+1 is replaced in place
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        id       path      string              true  "Session ID"
// @Param        pos      path      int                 true  "Request position"
// @Param        request  body      models.WaitRequest  false "Wait flag"
// @Success      200      {object}  operationResponse
// @Success      202      {object}  operationResponse
// @Failure      404      {object}  map[string]string  "Unknown session or position"
// @Failure      409      {object}  map[string]string  "Busy, or pos is not a request followed by a response"
// @Router       /api/sessions/{id}/turns/{pos}/regenerate [post]
func (h *Handlers) RegenerateHandler(c *gin.Context) {
	h.startOperation(c, func(sess *session.Controller, pos int) (*session.Operation, error) {
		return sess.Regenerate(c.Request.Context(), pos)
	})
}

// RunHandler executes the query of a response
// @Summary      Run a query
// @Description  Execute the query at pos. On success the result is cached and the results view opens on pos.
// @Tags         Turns
// @Accept       json
// @Produce      json
// @Param        id       path      string              true  "Session ID"
// @Param        pos      path      int                 true  "Response position"
// @Param        request  body      models.WaitRequest  false "Wait flag"
// @Success      200      {object}  operationResponse
// @Success      202      {object}  operationResponse
// @Failure      404      {object}  map[string]string  "Unknown session or position"
// @Failure      409      {object}  map[string]string  "pos is not a response"
// @Failure      502      {object}  operationResponse  "Executor failed"
// @Router       /api/sessions/{id}/turns/{pos}/run [post]
func (h *Handlers) RunHandler(c *gin.Context) {
	h.startOperation(c, func(sess *session.Controller, pos int) (*session.Operation, error) {
		return sess.Run(c.Request.Context(), pos)
	})
}

func (h *Handlers) startOperation(c *gin.Context, start func(*session.Controller, int) (*session.Operation, error)) {
	var req models.WaitRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	wait, err := wantWait(c, req.Wait)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wait flag"})
		return
	}
	sess := h.session(c)
	if sess == nil {
		return
	}
	pos, ok := position(c)
	if !ok {
		return
	}

	op, err := start(sess, pos)
	if err != nil {
		writeError(c, err)
		return
	}
	respondOperation(c, sess, op, wait)
}

// UndoHandler removes the most recent exchange
// @Summary      Undo
// @Description  Remove the last request/response pair (or a lone trailing turn). The removed transcript is kept in history.
// @Tags         Chat
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  session.Snapshot
// @Failure      404  {object}  map[string]string  "Session not found"
// @Failure      409  {object}  map[string]string  "Transcript is empty"
// @Router       /api/sessions/{id}/undo [post]
func (h *Handlers) UndoHandler(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	if err := sess.Undo(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}
