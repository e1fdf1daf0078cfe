package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn func(input services.TransactionInput) (*models.Transaction, error)
	updateTransactionFn func(transactionID uint, patch services.TransactionPatch) (*models.Transaction, error)
	deleteTransactionFn func(transactionID uint) error
	getTransactionFn    func(transactionID uint) (*models.Transaction, error)
	listTransactionsFn  func(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

func (m *mockTransactionService) CreateTransaction(input services.TransactionInput) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(input)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(transactionID uint, patch services.TransactionPatch) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(transactionID, patch)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(transactionID uint) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(transactionID)
	}
	return nil
}

func (m *mockTransactionService) GetTransaction(transactionID uint) (*models.Transaction, error) {
	if m.getTransactionFn != nil {
		return m.getTransactionFn(transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) ListTransactions(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	r.POST("/transactions", handler.CreateTransaction)
	r.GET("/transactions", handler.GetTransactions)
	r.GET("/transactions/:id", handler.GetTransactionByID)
	r.PUT("/transactions/:id", handler.UpdateTransaction)
	r.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var captured services.TransactionInput
		txSvc := &mockTransactionService{
			createTransactionFn: func(input services.TransactionInput) (*models.Transaction, error) {
				captured = input
				return &models.Transaction{
					Base:       models.Base{ID: 1},
					Amount:     input.Amount,
					Type:       input.Type,
					CategoryID: input.CategoryID,
					AccountID:  input.AccountID,
					Date:       input.Date,
				}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, "POST", "/transactions",
			`{"amount":"4.20","type":"expense","category_id":2,"account_id":1,"date":"2024-03-15","notes":"coffee"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !captured.Amount.Equal(decimal.RequireFromString("4.2")) {
			t.Errorf("expected amount 4.2, got %s", captured.Amount)
		}
		if captured.CategoryID == nil || *captured.CategoryID != 2 {
			t.Errorf("expected category 2, got %v", captured.CategoryID)
		}
		if want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC); !captured.Date.Equal(want) {
			t.Errorf("expected date %v, got %v", want, captured.Date)
		}
		if captured.Notes != "coffee" {
			t.Errorf("expected notes coffee, got %q", captured.Notes)
		}
	})

	t.Run("leaves the date zero when omitted", func(t *testing.T) {
		var captured services.TransactionInput
		txSvc := &mockTransactionService{
			createTransactionFn: func(input services.TransactionInput) (*models.Transaction, error) {
				captured = input
				return &models.Transaction{Base: models.Base{ID: 1}}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, "POST", "/transactions", `{"amount":10,"type":"income","category_id":1,"account_id":1}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !captured.Date.IsZero() {
			t.Errorf("expected zero date for the service to default, got %v", captured.Date)
		}
	})

	t.Run("passes the transfer destination", func(t *testing.T) {
		var captured services.TransactionInput
		txSvc := &mockTransactionService{
			createTransactionFn: func(input services.TransactionInput) (*models.Transaction, error) {
				captured = input
				return &models.Transaction{Base: models.Base{ID: 1}}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, "POST", "/transactions", `{"amount":"50","type":"transfer","account_id":1,"to_account_id":2}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.ToAccountID == nil || *captured.ToAccountID != 2 {
			t.Errorf("expected destination 2, got %v", captured.ToAccountID)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"returns 400 on zero amount", `{"amount":"0","type":"expense","category_id":1,"account_id":1}`},
		{"returns 400 on negative amount", `{"amount":"-3","type":"expense","category_id":1,"account_id":1}`},
		{"returns 400 on missing amount", `{"type":"expense","category_id":1,"account_id":1}`},
		{"returns 400 on unknown type", `{"amount":"3","type":"refund","category_id":1,"account_id":1}`},
		{"returns 400 on missing account", `{"amount":"3","type":"expense","category_id":1}`},
		{"returns 400 on bad date", `{"amount":"3","type":"expense","category_id":1,"account_id":1,"date":"yesterday"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			txSvc := &mockTransactionService{
				createTransactionFn: func(services.TransactionInput) (*models.Transaction, error) {
					called = true
					return &models.Transaction{}, nil
				},
			}
			r := setupTransactionRouter(NewTransactionHandler(txSvc))

			rec := doRequest(r, "POST", "/transactions", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
			if called {
				t.Error("service should not be called for invalid input")
			}
		})
	}

	serviceErrors := []struct {
		name string
		err  error
		code string
	}{
		{"returns 400 on category type mismatch", apperrors.ErrCategoryTypeMismatch, "CATEGORY_TYPE_MISMATCH"},
		{"returns 400 on missing reference", apperrors.ErrInvalidReference, "INVALID_REFERENCE"},
		{"returns 400 on same account transfer", apperrors.ErrSameAccountTransfer, "SAME_ACCOUNT_TRANSFER"},
	}
	for _, tt := range serviceErrors {
		t.Run(tt.name, func(t *testing.T) {
			txSvc := &mockTransactionService{
				createTransactionFn: func(services.TransactionInput) (*models.Transaction, error) {
					return nil, tt.err
				},
			}
			r := setupTransactionRouter(NewTransactionHandler(txSvc))

			rec := doRequest(r, "POST", "/transactions", `{"amount":"3","type":"expense","category_id":1,"account_id":1}`)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), tt.code)
		})
	}
}

func TestTransactionHandler_GetTransactions(t *testing.T) {
	t.Run("parses every filter", func(t *testing.T) {
		var captured services.TransactionFilter
		var capturedPage pagination.PageRequest
		txSvc := &mockTransactionService{
			listTransactionsFn: func(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				captured = filter
				capturedPage = page
				resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, "GET",
			"/transactions?month=2&year=2024&type=expense&category_id=4&account_id=7&min_amount=10.5&max_amount=99&from_date=2024-01-01&to_date=2024-12-31T23:59:59Z&page=2&page_size=10", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.Month == nil || *captured.Month != 2 {
			t.Errorf("expected month 2, got %v", captured.Month)
		}
		if captured.Year == nil || *captured.Year != 2024 {
			t.Errorf("expected year 2024, got %v", captured.Year)
		}
		if captured.Type == nil || *captured.Type != models.TransactionTypeExpense {
			t.Errorf("expected type expense, got %v", captured.Type)
		}
		if captured.CategoryID == nil || *captured.CategoryID != 4 {
			t.Errorf("expected category 4, got %v", captured.CategoryID)
		}
		if captured.AccountID == nil || *captured.AccountID != 7 {
			t.Errorf("expected account 7, got %v", captured.AccountID)
		}
		if captured.MinAmount == nil || !captured.MinAmount.Equal(decimal.RequireFromString("10.5")) {
			t.Errorf("expected min 10.5, got %v", captured.MinAmount)
		}
		if captured.MaxAmount == nil || !captured.MaxAmount.Equal(decimal.NewFromInt(99)) {
			t.Errorf("expected max 99, got %v", captured.MaxAmount)
		}
		if captured.FromDate == nil || captured.ToDate == nil {
			t.Fatal("expected both date bounds")
		}
		if capturedPage.Page != 2 || capturedPage.PageSize != 10 {
			t.Errorf("expected page 2 size 10, got %+v", capturedPage)
		}
	})

	t.Run("leaves unset filters nil", func(t *testing.T) {
		var captured services.TransactionFilter
		txSvc := &mockTransactionService{
			listTransactionsFn: func(_ pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				captured = filter
				resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, "GET", "/transactions", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if captured.Month != nil || captured.Type != nil || captured.AccountID != nil || captured.FromDate != nil {
			t.Errorf("expected empty filter, got %+v", captured)
		}
	})

	invalid := []string{
		"/transactions?type=refund",
		"/transactions?month=march",
		"/transactions?category_id=-1",
		"/transactions?min_amount=abc",
		"/transactions?from_date=01/01/2024",
		"/transactions?page_size=1000",
	}
	for _, path := range invalid {
		t.Run("returns 400 for "+path, func(t *testing.T) {
			r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

			rec := doRequest(r, "GET", path, "")

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestTransactionHandler_GetTransactionByID(t *testing.T) {
	t.Run("returns the category name", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getTransactionFn: func(id uint) (*models.Transaction, error) {
				return &models.Transaction{Base: models.Base{ID: id}, CategoryName: models.UnknownCategoryName}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, "GET", "/transactions/8", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if tx["category_name"] != "Unknown" {
			t.Errorf("expected Unknown, got %v", tx["category_name"])
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getTransactionFn: func(uint) (*models.Transaction, error) { return nil, apperrors.ErrTransactionNotFound },
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, "GET", "/transactions/8", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})
}

func TestTransactionHandler_UpdateTransaction(t *testing.T) {
	t.Run("passes only the provided fields", func(t *testing.T) {
		var captured services.TransactionPatch
		txSvc := &mockTransactionService{
			updateTransactionFn: func(id uint, patch services.TransactionPatch) (*models.Transaction, error) {
				captured = patch
				return &models.Transaction{Base: models.Base{ID: id}}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, "PUT", "/transactions/3", `{"amount":"12.5","date":"2024-02-29"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.Amount == nil || !captured.Amount.Equal(decimal.RequireFromString("12.5")) {
			t.Errorf("expected amount 12.5, got %v", captured.Amount)
		}
		if captured.Date == nil || captured.Date.Day() != 29 {
			t.Errorf("expected date 29th, got %v", captured.Date)
		}
		if captured.Type != nil || captured.AccountID != nil || captured.Notes != nil {
			t.Errorf("expected untouched fields to stay nil, got %+v", captured)
		}
	})

	t.Run("returns 400 on zero amount", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, "PUT", "/transactions/3", `{"amount":"0"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		txSvc := &mockTransactionService{
			updateTransactionFn: func(uint, services.TransactionPatch) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, "PUT", "/transactions/3", `{"notes":"x"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	var deleted uint
	txSvc := &mockTransactionService{
		deleteTransactionFn: func(id uint) error {
			deleted = id
			return nil
		},
	}
	r := setupTransactionRouter(NewTransactionHandler(txSvc))

	rec := doRequest(r, "DELETE", "/transactions/11", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if deleted != 11 {
		t.Errorf("expected 11 deleted, got %d", deleted)
	}
}
