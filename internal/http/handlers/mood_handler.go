package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-companion-backend/internal/domain"
)

// MoodAnalysisRequest selects an inclusive date range (YYYY-MM-DD).
type MoodAnalysisRequest struct {
	StartDate string `json:"start_date" binding:"required" example:"2025-05-01"`
	EndDate   string `json:"end_date" binding:"required" example:"2025-05-31"`
}

// MoodPeriod echoes the requested range.
type MoodPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MoodSummary holds the aggregate statistics.
type MoodSummary struct {
	AverageScore float64      `json:"average_score"`
	TotalEntries int          `json:"total_entries"`
	Trend        domain.Trend `json:"trend" enums:"improving,declining,stable"`
}

// MoodAnalysisResponse is the result of a mood analysis.
type MoodAnalysisResponse struct {
	Period    MoodPeriod  `json:"period"`
	Summary   MoodSummary `json:"summary"`
	AIInsight string      `json:"ai_insight"`
}

// MoodAnalysis godoc
// @ID          moodAnalysis
// @Summary     Mood analysis
// @Description Summarizes mood entries in the range and adds a supportive narrative.
// @Tags        Mood
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  handlers.MoodAnalysisRequest  true  "Date range"
// @Success     200  {object}  handlers.MoodAnalysisResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed dates or start after end"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     503  {object}  handlers.ErrorResponse  "Store or model unavailable"
// @Router      /api/mood/analysis [post]
func (h *Handlers) MoodAnalysis(c *gin.Context) {
	var req MoodAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "start_date and end_date are required")
		return
	}
	res, err := h.moodSvc.Analyze(c.Request.Context(), userID(c), req.StartDate, req.EndDate)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, MoodAnalysisResponse{
		Period: MoodPeriod{Start: res.Start, End: res.End},
		Summary: MoodSummary{
			AverageScore: res.AverageScore,
			TotalEntries: res.TotalEntries,
			Trend:        res.Trend,
		},
		AIInsight: res.Insight,
	})
}
