package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"querydraft/metrics"
	"querydraft/models"
	"querydraft/session"
	"querydraft/validation"
)

type sessionSummary struct {
	ID         string         `json:"id"`
	Dialect    models.Dialect `json:"dialect"`
	CreatedAt  time.Time      `json:"created_at"`
	Turns      int            `json:"turns"`
	Generating bool           `json:"generating"`
}

// CreateSessionHandler starts a new drafting session.
// @Summary      Create a session
// @Description  Start a new drafting session, optionally seeded with the demo conversation
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        request  body      models.CreateSessionRequest  false  "Dialect and seed flag"
// @Success      201      {object}  session.Snapshot
// @Failure      400      {object}  map[string]string  "Invalid request"
// @Router       /api/sessions [post]
func (h *Handlers) CreateSessionHandler(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := validation.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.sessions.Create(req.Dialect, req.Seed)
	if err != nil {
		writeError(c, err)
		return
	}
	metrics.SessionCreated()
	c.JSON(http.StatusCreated, sess.Snapshot())
}

// ListSessionsHandler lists live sessions, oldest first.
// @Summary      List sessions
// @Tags         Sessions
// @Produce      json
// @Success      200  {object}  map[string][]sessionSummary
// @Router       /api/sessions [get]
func (h *Handlers) ListSessionsHandler(c *gin.Context) {
	list := h.sessions.List()
	out := make([]sessionSummary, 0, len(list))
	for _, sess := range list {
		out = append(out, sessionSummary{
			ID:         sess.ID(),
			Dialect:    sess.Dialect(),
			CreatedAt:  sess.CreatedAt(),
			Turns:      sess.Len(),
			Generating: sess.Generating(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

// GetSessionHandler returns a snapshot of one session.
// @Summary      Get a session
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  session.Snapshot
// @Failure      404  {object}  map[string]string  "Session not found"
// @Router       /api/sessions/{id} [get]
func (h *Handlers) GetSessionHandler(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// DeleteSessionHandler forgets a session and disconnects its event streams.
// @Summary      Delete a session
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string  "Session not found"
// @Router       /api/sessions/{id} [delete]
func (h *Handlers) DeleteSessionHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.sessions.Delete(id); err != nil {
		writeError(c, err)
		return
	}
	metrics.SessionDeleted()
	if h.hub != nil {
		h.hub.CloseSession(id)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted", "id": id})
}

// SetDialectHandler switches the dialect used for subsequent generations.
// @Summary      Set session dialect
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Session ID"
// @Param        request  body      models.DialectRequest  true  "Target dialect"
// @Success      200      {object}  session.Snapshot
// @Failure      400      {object}  map[string]string  "Invalid dialect"
// @Failure      404      {object}  map[string]string  "Session not found"
// @Router       /api/sessions/{id}/dialect [put]
func (h *Handlers) SetDialectHandler(c *gin.Context) {
	var req models.DialectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := validation.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := h.session(c)
	if sess == nil {
		return
	}
	if err := sess.SetDialect(c.Request.Context(), req.Dialect); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// HistoryHandler returns the transcripts recorded before each undo together
// with the persisted chat log of the session.
// @Summary      Session history
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  map[string]interface{}  "{ \"undo\": HistoryEntry[], \"chat\": ChatHistory[] }"
// @Failure      404  {object}  map[string]string  "Session not found"
// @Router       /api/sessions/{id}/history [get]
func (h *Handlers) HistoryHandler(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	undo := sess.History()
	if undo == nil {
		undo = []session.HistoryEntry{}
	}

	chat := []models.ChatHistory{}
	if h.db != nil {
		stored, err := h.db.GetChatHistory(sess.ID())
		if err != nil {
			log.Warn().Err(err).Str("component", "handlers").Str("session_id", sess.ID()).
				Msg("failed to load chat history")
		} else if stored != nil {
			chat = stored
		}
	}
	c.JSON(http.StatusOK, gin.H{"undo": undo, "chat": chat})
}
