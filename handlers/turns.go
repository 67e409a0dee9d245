package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"querydraft/session"
)

// turnAction runs a synchronous controller call against the :pos turn and
// answers with the updated snapshot.
func (h *Handlers) turnAction(c *gin.Context, action func(ctx context.Context, sess *session.Controller, pos int) error) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	pos, ok := position(c)
	if !ok {
		return
	}
	if err := action(c.Request.Context(), sess, pos); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// ConfirmHandler marks an executed query as confirmed
// @Summary      Confirm a query
// @Tags         Turns
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Param        pos  path      int     true  "Response position"
// @Success      200  {object}  session.Snapshot
// @Failure      409  {object}  map[string]string  "pos is not a response"
// @Failure      422  {object}  map[string]string  "Query has no result yet"
// @Router       /api/sessions/{id}/turns/{pos}/confirm [post]
func (h *Handlers) ConfirmHandler(c *gin.Context) {
	h.turnAction(c, func(ctx context.Context, sess *session.Controller, pos int) error {
		return sess.Confirm(ctx, pos)
	})
}

// RejectHandler reverses confirmation from the inspection panel
// @Summary      Reject a query
// @Description  Unconfirm the response at pos and drop its cached result. The transcript is not changed.
// @Tags         Turns
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Param        pos  path      int     true  "Response position"
// @Success      200  {object}  session.Snapshot
// @Failure      409  {object}  map[string]string  "pos is not a response"
// @Router       /api/sessions/{id}/turns/{pos}/reject [post]
func (h *Handlers) RejectHandler(c *gin.Context) {
	h.turnAction(c, func(ctx context.Context, sess *session.Controller, pos int) error {
		return sess.Reject(ctx, pos)
	})
}

// SelectHandler toggles the inspection panel on a response
// @Summary      Select a response
// @Tags         Turns
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Param        pos  path      int     true  "Response position"
// @Success      200  {object}  map[string]interface{}  "{ \"selected\": int|null, \"session\": Snapshot }"
// @Failure      409  {object}  map[string]string  "pos is not a response"
// @Router       /api/sessions/{id}/turns/{pos}/select [post]
func (h *Handlers) SelectHandler(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	pos, ok := position(c)
	if !ok {
		return
	}
	selected, err := sess.Select(c.Request.Context(), pos)
	if err != nil {
		writeError(c, err)
		return
	}
	var sel *int
	if selected >= 0 {
		sel = &selected
	}
	c.JSON(http.StatusOK, gin.H{"selected": sel, "session": sess.Snapshot()})
}

// ReportHandler flags a generated query as wrong
// @Summary      Report a query
// @Tags         Turns
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Param        pos  path      int     true  "Response position"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  map[string]string  "pos is not a response"
// @Failure      502  {object}  map[string]string  "Feedback store failed"
// @Router       /api/sessions/{id}/turns/{pos}/report [post]
func (h *Handlers) ReportHandler(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	pos, ok := position(c)
	if !ok {
		return
	}
	if err := sess.Report(c.Request.Context(), pos); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Report submitted"})
}

// TurnResultHandler returns the cached execution result of a response
// @Summary      Get a query result
// @Tags         Turns
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Param        pos  path      int     true  "Response position"
// @Success      200  {object}  models.ExecutionResult
// @Failure      409  {object}  map[string]string  "pos is not a response"
// @Failure      422  {object}  map[string]string  "No result for pos"
// @Router       /api/sessions/{id}/turns/{pos}/result [get]
func (h *Handlers) TurnResultHandler(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	pos, ok := position(c)
	if !ok {
		return
	}
	res, err := sess.Result(pos)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ShowResultsHandler opens the results view on a response
// @Summary      Show results
// @Tags         Results
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Param        pos  path      int     true  "Response position"
// @Success      200  {object}  session.Snapshot
// @Failure      422  {object}  map[string]string  "No result for pos"
// @Router       /api/sessions/{id}/results/{pos}/show [post]
func (h *Handlers) ShowResultsHandler(c *gin.Context) {
	h.turnAction(c, func(ctx context.Context, sess *session.Controller, pos int) error {
		return sess.ShowResults(ctx, pos)
	})
}

// CloseResultsHandler closes the results view
// @Summary      Close results
// @Tags         Results
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  session.Snapshot
// @Router       /api/sessions/{id}/results/close [post]
func (h *Handlers) CloseResultsHandler(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	sess.CloseResults(c.Request.Context())
	c.JSON(http.StatusOK, sess.Snapshot())
}
