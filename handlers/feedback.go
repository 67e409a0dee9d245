package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"querydraft/models"
)

// ListFeedbackHandler lists reported queries
// @Summary      List feedback reports
// @Description  Queries users flagged as wrong, oldest first. Filter by session with session_id.
// @Tags         Feedback
// @Produce      json
// @Param        session_id  query     string  false  "Session ID"
// @Success      200         {object}  map[string][]models.FeedbackReport
// @Failure      500         {object}  map[string]string  "Failed to load reports"
// @Router       /api/feedback [get]
func (h *Handlers) ListFeedbackHandler(c *gin.Context) {
	reports, err := h.db.ListFeedback(c.Query("session_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load feedback reports"})
		return
	}
	if reports == nil {
		reports = []models.FeedbackReport{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}
