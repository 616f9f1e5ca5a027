package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JournalInsightRequest is the JSON payload for a journal reflection.
type JournalInsightRequest struct {
	JournalID string `json:"journal_id" binding:"required" example:"j_20250601"`
	// Content is the journal text (1–10000 chars).
	Content string `json:"content" binding:"required,min=1,max=10000" example:"Today I finally went for a walk."`
}

// JournalInsightResponse carries the model's reflection.
type JournalInsightResponse struct {
	Insight   string `json:"insight"`
	JournalID string `json:"journal_id"`
}

// JournalInsight godoc
// @ID          journalInsight
// @Summary     Journal reflection
// @Description Returns a brief, supportive reflection on a journal entry.
// @Tags        Journal
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  handlers.JournalInsightRequest  true  "Journal entry"
// @Success     200  {object}  handlers.JournalInsightResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     503  {object}  handlers.ErrorResponse  "Model unavailable"
// @Router      /api/journal/insight [post]
func (h *Handlers) JournalInsight(c *gin.Context) {
	var req JournalInsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "journal_id and content (1–10000 chars) are required")
		return
	}
	insight, err := h.journalSvc.Insight(c.Request.Context(), req.Content)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, JournalInsightResponse{Insight: insight, JournalID: req.JournalID})
}
