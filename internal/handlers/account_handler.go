package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

// AccountHandler handles account-related requests.
type AccountHandler struct {
	accountService services.AccountServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccountRequest represents the request payload for creating an account
type CreateAccountRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=100"`
	Color          string          `json:"color" binding:"omitempty,hex_color"`
	Icon           models.IconTag  `json:"icon" binding:"omitempty,icon_tag"`
	InitialBalance decimal.Decimal `json:"initial_balance" binding:"gte=0"`
}

// UpdateAccountRequest represents the request payload for updating an account.
// The balance is derived from transactions and cannot be set.
type UpdateAccountRequest struct {
	Name  *string         `json:"name" binding:"omitempty,min=1,max=100"`
	Color *string         `json:"color" binding:"omitempty,hex_color"`
	Icon  *models.IconTag `json:"icon" binding:"omitempty,icon_tag"`
}

// CreateAccount handles the creation of a new account
// @Summary     Create an account
// @Description Create an account. A positive initial balance is recorded as an "Initial Balance" income transaction.
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Param       request body CreateAccountRequest true "Account details"
// @Success     201 {object} models.Account "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	account, err := h.accountService.CreateAccount(services.AccountInput{
		Name:           req.Name,
		Color:          req.Color,
		Icon:           req.Icon,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// GetAccounts handles listing accounts
// @Summary     Get accounts
// @Description Get a paginated list of accounts in creation order
// @Tags        accounts
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 50, max 500)"
// @Success     200 {object} pagination.PageResponse[models.Account] "Paginated accounts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [get]
func (h *AccountHandler) GetAccounts(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.accountService.ListAccounts(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAccountByID handles the retrieval of a specific account
// @Summary     Get account by ID
// @Tags        accounts
// @Produce     json
// @Param       id path int true "Account ID"
// @Success     200 {object} models.Account "Account details"
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [get]
func (h *AccountHandler) GetAccountByID(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.GetAccount(accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// UpdateAccount handles updating an account
// @Summary     Update account
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Param       id      path int                  true "Account ID"
// @Param       request body UpdateAccountRequest true "Fields to update"
// @Success     200 {object} models.Account "Updated account"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	account, err := h.accountService.UpdateAccount(accountID, services.AccountUpdate{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// DeleteAccount handles deleting an account
// @Summary     Delete account
// @Description Delete an account. Its transactions are kept.
// @Tags        accounts
// @Produce     json
// @Param       id path int true "Account ID"
// @Success     200 {object} MessageResponse "Account deleted"
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.accountService.DeleteAccount(accountID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Account deleted successfully"})
}

// RecomputeBalances handles rebuilding every balance from transactions
// @Summary     Recompute balances
// @Tags        accounts
// @Produce     json
// @Success     200 {object} MessageResponse "Balances recomputed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/recompute [post]
func (h *AccountHandler) RecomputeBalances(c *gin.Context) {
	if err := h.accountService.RecomputeBalances(); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Balances recomputed"})
}
