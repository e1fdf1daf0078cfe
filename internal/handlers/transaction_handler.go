package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/middleware"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Amount      decimal.Decimal        `json:"amount" binding:"required,gt=0"`
	Type        models.TransactionType `json:"type" binding:"required,transaction_type"`
	CategoryID  *uint                  `json:"category_id"`
	AccountID   uint                   `json:"account_id" binding:"required"`
	ToAccountID *uint                  `json:"to_account_id"`
	Date        *string                `json:"date"`
	Notes       string                 `json:"notes" binding:"max=1000"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
// Omitted fields keep their current value.
type UpdateTransactionRequest struct {
	Amount      *decimal.Decimal        `json:"amount" binding:"omitempty,gt=0"`
	Type        *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	CategoryID  *uint                   `json:"category_id"`
	AccountID   *uint                   `json:"account_id"`
	ToAccountID *uint                   `json:"to_account_id"`
	Date        *string                 `json:"date"`
	Notes       *string                 `json:"notes" binding:"omitempty,max=1000"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Create an income, expense or transfer and update account balances
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	var date time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, _, parseErr := parseFlexibleTime(*req.Date, middleware.LocationFrom(c))
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		date = parsed
	}

	transaction, err := h.transactionService.CreateTransaction(services.TransactionInput{
		Amount:      req.Amount,
		Type:        req.Type,
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
		ToAccountID: req.ToAccountID,
		Date:        date,
		Notes:       req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetTransactions handles listing transactions
// @Summary     Get transactions
// @Description Get a paginated list of transactions, newest first, with optional filters
// @Tags        transactions
// @Produce     json
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 50, max 500)"
// @Param       account_id  query int    false "Filter by source or destination account"
// @Param       from_date   query string false "Filter by start date (RFC3339 e.g. 2024-01-01T00:00:00Z, or YYYY-MM-DD)"
// @Param       to_date     query string false "Filter by end date (RFC3339 or YYYY-MM-DD)"
// @Param       month       query int    false "Filter by month (0-11, requires year)"
// @Param       year        query int    false "Filter by year"
// @Param       type        query string false "Filter by transaction type (income, expense, transfer)"
// @Param       category_id query int    false "Filter by category ID"
// @Param       min_amount  query string false "Filter by minimum amount"
// @Param       max_amount  query string false "Filter by maximum amount"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListTransactions(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter
	var err error

	loc := middleware.LocationFrom(c)

	if v := c.Query("from_date"); v != "" {
		t, _, err := parseFlexibleTime(v, loc)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, dateOnly, err := parseFlexibleTime(v, loc)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		if dateOnly {
			// A plain date covers the whole day.
			next := t.AddDate(0, 0, 1)
			filter.Before = &next
		} else {
			filter.ToDate = &t
		}
	}

	if filter.Month, err = queryInt(c, "month"); err != nil {
		return filter, err
	}
	if filter.Year, err = queryInt(c, "year"); err != nil {
		return filter, err
	}

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		if !txType.Valid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be income, expense, or transfer")
		}
		filter.Type = &txType
	}

	if filter.CategoryID, err = queryUint(c, "category_id"); err != nil {
		return filter, err
	}
	if filter.AccountID, err = queryUint(c, "account_id"); err != nil {
		return filter, err
	}

	if v := c.Query("min_amount"); v != "" {
		amt, err := decimal.NewFromString(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid min_amount")
		}
		filter.MinAmount = &amt
	}

	if v := c.Query("max_amount"); v != "" {
		amt, err := decimal.NewFromString(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid max_amount")
		}
		filter.MaxAmount = &amt
	}

	return filter, nil
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransaction(transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction handles updating an existing transaction
// @Summary     Update transaction
// @Description Update an existing transaction. The result is validated like a new transaction and balances are recomputed.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path int                      true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	txID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	patch := services.TransactionPatch{
		Amount:      req.Amount,
		Type:        req.Type,
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
		ToAccountID: req.ToAccountID,
		Notes:       req.Notes,
	}

	// Parse date if provided
	if req.Date != nil && *req.Date != "" {
		parsed, _, parseErr := parseFlexibleTime(*req.Date, middleware.LocationFrom(c))
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		patch.Date = &parsed
	}

	transaction, err := h.transactionService.UpdateTransaction(txID, patch)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete transaction
// @Tags        transactions
// @Produce     json
// @Param       id path int true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted successfully"})
}
