package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/services"
)

// --- mock budget service ---

type mockBudgetService struct {
	setBudgetFn         func(categoryID uint, month, year int, amount decimal.Decimal) (*models.Budget, error)
	listBudgetsFn       func(month, year int) ([]models.Budget, error)
	getBudgetFn         func(budgetID uint) (*models.Budget, error)
	deleteBudgetFn      func(budgetID uint) error
	getBudgetProgressFn func(month, year int) ([]services.BudgetProgress, error)
}

func (m *mockBudgetService) SetBudget(categoryID uint, month, year int, amount decimal.Decimal) (*models.Budget, error) {
	if m.setBudgetFn != nil {
		return m.setBudgetFn(categoryID, month, year, amount)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) ListBudgets(month, year int) ([]models.Budget, error) {
	if m.listBudgetsFn != nil {
		return m.listBudgetsFn(month, year)
	}
	return []models.Budget{}, nil
}

func (m *mockBudgetService) GetBudget(budgetID uint) (*models.Budget, error) {
	if m.getBudgetFn != nil {
		return m.getBudgetFn(budgetID)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) DeleteBudget(budgetID uint) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(budgetID)
	}
	return nil
}

func (m *mockBudgetService) GetBudgetProgress(month, year int) ([]services.BudgetProgress, error) {
	if m.getBudgetProgressFn != nil {
		return m.getBudgetProgressFn(month, year)
	}
	return []services.BudgetProgress{}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	r.PUT("/budgets", handler.SetBudget)
	r.GET("/budgets", handler.GetBudgets)
	r.GET("/budgets/progress", handler.GetBudgetProgress)
	r.GET("/budgets/:id", handler.GetBudgetByID)
	r.DELETE("/budgets/:id", handler.DeleteBudget)
	return r
}

func TestBudgetHandler_SetBudget(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var gotCat uint
		var gotMonth, gotYear int
		var gotAmount decimal.Decimal
		budgetSvc := &mockBudgetService{
			setBudgetFn: func(catID uint, month, year int, amount decimal.Decimal) (*models.Budget, error) {
				gotCat, gotMonth, gotYear, gotAmount = catID, month, year, amount
				return &models.Budget{Base: models.Base{ID: 1}, CategoryID: catID, Month: month, Year: year, Amount: amount}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(budgetSvc))

		rec := doRequest(r, "PUT", "/budgets", `{"category_id":3,"month":0,"year":2024,"amount":"450"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotCat != 3 || gotMonth != 0 || gotYear != 2024 {
			t.Errorf("unexpected args %d %d %d", gotCat, gotMonth, gotYear)
		}
		if !gotAmount.Equal(decimal.NewFromInt(450)) {
			t.Errorf("expected 450, got %s", gotAmount)
		}
		budget := parseJSON(t, rec)["budget"].(map[string]interface{})
		if budget["month"] != float64(0) {
			t.Errorf("expected month 0, got %v", budget["month"])
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"returns 400 on missing month", `{"category_id":3,"year":2024,"amount":"10"}`},
		{"returns 400 on month 12", `{"category_id":3,"month":12,"year":2024,"amount":"10"}`},
		{"returns 400 on negative month", `{"category_id":3,"month":-1,"year":2024,"amount":"10"}`},
		{"returns 400 on missing year", `{"category_id":3,"month":1,"amount":"10"}`},
		{"returns 400 on negative amount", `{"category_id":3,"month":1,"year":2024,"amount":"-1"}`},
		{"returns 400 on missing category", `{"month":1,"year":2024,"amount":"10"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}))

			rec := doRequest(r, "PUT", "/budgets", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}

	t.Run("returns 400 for an income category", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			setBudgetFn: func(uint, int, int, decimal.Decimal) (*models.Budget, error) {
				return nil, apperrors.ErrCategoryTypeMismatch
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(budgetSvc))

		rec := doRequest(r, "PUT", "/budgets", `{"category_id":3,"month":1,"year":2024,"amount":"10"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_TYPE_MISMATCH")
	})
}

func TestBudgetHandler_GetBudgets(t *testing.T) {
	var gotMonth, gotYear int
	budgetSvc := &mockBudgetService{
		listBudgetsFn: func(month, year int) ([]models.Budget, error) {
			gotMonth, gotYear = month, year
			return []models.Budget{{Base: models.Base{ID: 1}, Month: month, Year: year}}, nil
		},
	}
	r := setupBudgetRouter(NewBudgetHandler(budgetSvc))

	rec := doRequest(r, "GET", "/budgets?month=11&year=2023", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotMonth != 11 || gotYear != 2023 {
		t.Errorf("expected 11/2023, got %d/%d", gotMonth, gotYear)
	}
	budgets := parseJSON(t, rec)["budgets"].([]interface{})
	if len(budgets) != 1 {
		t.Errorf("expected 1 budget, got %d", len(budgets))
	}
}

func TestBudgetHandler_GetBudgetByID(t *testing.T) {
	budgetSvc := &mockBudgetService{
		getBudgetFn: func(uint) (*models.Budget, error) { return nil, apperrors.ErrBudgetNotFound },
	}
	r := setupBudgetRouter(NewBudgetHandler(budgetSvc))

	rec := doRequest(r, "GET", "/budgets/42", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
}

func TestBudgetHandler_DeleteBudget(t *testing.T) {
	var deleted uint
	budgetSvc := &mockBudgetService{
		deleteBudgetFn: func(id uint) error {
			deleted = id
			return nil
		},
	}
	r := setupBudgetRouter(NewBudgetHandler(budgetSvc))

	rec := doRequest(r, "DELETE", "/budgets/6", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if deleted != 6 {
		t.Errorf("expected 6 deleted, got %d", deleted)
	}
}

func TestBudgetHandler_GetBudgetProgress(t *testing.T) {
	budgetSvc := &mockBudgetService{
		getBudgetProgressFn: func(month, year int) ([]services.BudgetProgress, error) {
			return []services.BudgetProgress{{
				BudgetID:     1,
				CategoryName: "Fun",
				Month:        month,
				Year:         year,
				Budgeted:     decimal.NewFromInt(50),
				Spent:        decimal.NewFromInt(75),
				Remaining:    decimal.NewFromInt(-25),
				Percentage:   150,
				OverBudget:   true,
			}}, nil
		},
	}
	r := setupBudgetRouter(NewBudgetHandler(budgetSvc))

	rec := doRequest(r, "GET", "/budgets/progress?month=4&year=2024", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	progress := parseJSON(t, rec)["progress"].([]interface{})
	if len(progress) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(progress))
	}
	entry := progress[0].(map[string]interface{})
	if entry["over_budget"] != true {
		t.Error("expected over_budget true")
	}
	if entry["remaining"] != "-25" {
		t.Errorf("expected remaining -25, got %v", entry["remaining"])
	}
}
