package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pennywise/internal/models"
	"pennywise/internal/services"
)

// AnalysisHandler serves the aggregate views.
type AnalysisHandler struct {
	analysisService services.AnalysisServicer
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService services.AnalysisServicer) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// GetSummary handles the monthly income/expense summary.
// @Summary     Monthly summary
// @Tags        analysis
// @Produce     json
// @Param       month query int false "Month 0-11 (default current)"
// @Param       year  query int false "Year (default current)"
// @Success     200 {object} services.MonthlySummary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analysis/summary [get]
func (h *AnalysisHandler) GetSummary(c *gin.Context) {
	month, year, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.analysisService.MonthlySummary(month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetBreakdown handles the per-category totals of a month.
// @Summary     Category breakdown
// @Tags        analysis
// @Produce     json
// @Param       type  query string false "Category type (income/expense, default expense)"
// @Param       month query int    false "Month 0-11 (default current)"
// @Param       year  query int    false "Year (default current)"
// @Success     200 {array}  services.CategoryTotal "Breakdown"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analysis/breakdown [get]
func (h *AnalysisHandler) GetBreakdown(c *gin.Context) {
	month, year, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryType := models.CategoryType(c.DefaultQuery("type", string(models.CategoryTypeExpense)))

	breakdown, err := h.analysisService.CategoryBreakdown(categoryType, month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"breakdown": breakdown})
}

// GetDailyFlow handles the per-day income and expense of a month.
// @Summary     Daily cash flow
// @Tags        analysis
// @Produce     json
// @Param       month query int false "Month 0-11 (default current)"
// @Param       year  query int false "Year (default current)"
// @Success     200 {array}  services.DailyFlow "One entry per day"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analysis/daily [get]
func (h *AnalysisHandler) GetDailyFlow(c *gin.Context) {
	month, year, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	flow, err := h.analysisService.DailyFlow(month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": flow})
}

// GetTrends handles monthly totals over a trailing window.
// @Summary     Monthly trends
// @Tags        analysis
// @Produce     json
// @Param       month  query int false "Last month of the window, 0-11 (default current)"
// @Param       year   query int false "Year of the last month (default current)"
// @Param       months query int false "Window length (default 6, max 120)"
// @Success     200 {array}  services.MonthlySummary "Oldest month first"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analysis/trends [get]
func (h *AnalysisHandler) GetTrends(c *gin.Context) {
	month, year, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	months, err := queryInt(c, "months")
	if err != nil {
		respondWithError(c, err)
		return
	}
	window := 0
	if months != nil {
		window = *months
	}

	trends, err := h.analysisService.Trends(month, year, window)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trends": trends})
}

// GetOverview handles the balance overview across accounts.
// @Summary     Balance overview
// @Tags        analysis
// @Produce     json
// @Success     200 {object} services.Overview "Overview"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analysis/overview [get]
func (h *AnalysisHandler) GetOverview(c *gin.Context) {
	overview, err := h.analysisService.Overview()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"overview": overview})
}
