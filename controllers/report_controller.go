// controllers/report_controller.go
package controllers

import (
	"net/http"
	"time"

	"github.com/ImAadarsh/my-calories/services"
	"github.com/ImAadarsh/my-calories/utils"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	Svc *services.ReportService
}

func NewReportController(svc *services.ReportService) *ReportController {
	return &ReportController{Svc: svc}
}

// GetReports serves two query shapes, matching the dashboard:
//   - ?date=yyyy-mm-dd          → single report (null when absent)
//   - ?range=daily|weekly|custom → {summary, trend} over the window
func (h *ReportController) GetReports(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if rng := c.Query("range"); rng != "" {
		h.rangeReports(c, userID, rng)
		return
	}

	date := time.Now()
	if v := c.Query("date"); v != "" {
		d, err := utils.ParseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		date = d
	}

	report, err := h.Svc.GetReport(userID, date)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report) // null body when no report exists
}

func (h *ReportController) rangeReports(c *gin.Context, userID uint, rng string) {
	now := time.Now()
	var from, to time.Time

	switch rng {
	case "daily":
		from, to = now, now
	case "weekly":
		from, to = now.AddDate(0, 0, -7), now
	case "custom":
		var err error
		from, err = utils.ParseDate(c.Query("start"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date"})
			return
		}
		to, err = utils.ParseDate(c.Query("end"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date"})
			return
		}
		if to.Before(from) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "`end` must be on/after `start`"})
			return
		}
	default:
		from, to = now.AddDate(0, 0, -7), now
	}

	summary, trend, err := h.Svc.RangeSummary(userID, from, to)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary, "trend": trend})
}

type AnalyzeDayInput struct {
	Feeling string `json:"feeling"`
	Date    string `json:"date"` // yyyy-mm-dd, default today
}

// AnalyzeDay is the explicit "Analyze My Day" action: at most one AI
// report per user per date.
func (h *ReportController) AnalyzeDay(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var input AnalyzeDayInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date := time.Now()
	if input.Date != "" {
		d, err := utils.ParseDate(input.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		date = d
	}

	report, err := h.Svc.GenerateDailyAnalysis(c.Request.Context(), userID, date, input.Feeling)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "report": report})
}

// GetStats feeds the weekly/monthly calorie chart from raw meals.
func (h *ReportController) GetStats(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	days := 7
	if c.DefaultQuery("type", "weekly") == "monthly" {
		days = 30
	}

	points, err := h.Svc.DailyCalorieTrend(userID, days)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}
