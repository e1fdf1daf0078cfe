package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pennywise/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// SetBudgetRequest represents the request payload for setting a monthly budget.
// Month is zero-based.
type SetBudgetRequest struct {
	CategoryID uint            `json:"category_id" binding:"required"`
	Month      *int            `json:"month" binding:"required,min=0,max=11"`
	Year       int             `json:"year" binding:"required,min=1,max=9999"`
	Amount     decimal.Decimal `json:"amount" binding:"gte=0"`
}

// SetBudget handles creating or replacing a budget.
// @Summary     Set a budget
// @Description Create the budget for an expense category and month, or overwrite its amount
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       request body SetBudgetRequest true "Budget details"
// @Success     200 {object} models.Budget "Budget stored"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [put]
func (h *BudgetHandler) SetBudget(c *gin.Context) {
	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	budget, err := h.budgetService.SetBudget(req.CategoryID, *req.Month, req.Year, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// GetBudgets handles listing the budgets of a month.
// @Summary     Get budgets
// @Tags        budgets
// @Produce     json
// @Param       month query int false "Month 0-11 (default current)"
// @Param       year  query int false "Year (default current)"
// @Success     200 {array}  models.Budget "Budgets of the month"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	month, year, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.budgetService.ListBudgets(month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": budgets})
}

// GetBudgetByID handles the retrieval of a specific budget.
// @Summary     Get budget by ID
// @Tags        budgets
// @Produce     json
// @Param       id path int true "Budget ID"
// @Success     200 {object} models.Budget "Budget details"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudgetByID(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudget(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Tags        budgets
// @Produce     json
// @Param       id path int true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Budget deleted successfully"})
}

// GetBudgetProgress handles budget vs actual spending for a month.
// @Summary     Get budget progress
// @Description Compare each budget of the month with the expenses in its category
// @Tags        budgets
// @Produce     json
// @Param       month query int false "Month 0-11 (default current)"
// @Param       year  query int false "Year (default current)"
// @Success     200 {array}  services.BudgetProgress "Budget progress"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/progress [get]
func (h *BudgetHandler) GetBudgetProgress(c *gin.Context) {
	month, year, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.budgetService.GetBudgetProgress(month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}
