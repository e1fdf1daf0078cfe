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

// --- mock analysis service ---

type mockAnalysisService struct {
	monthlySummaryFn    func(month, year int) (*services.MonthlySummary, error)
	categoryBreakdownFn func(categoryType models.CategoryType, month, year int) ([]services.CategoryTotal, error)
	dailyFlowFn         func(month, year int) ([]services.DailyFlow, error)
	trendsFn            func(month, year, months int) ([]services.MonthlySummary, error)
	overviewFn          func() (*services.Overview, error)
}

func (m *mockAnalysisService) MonthlySummary(month, year int) (*services.MonthlySummary, error) {
	if m.monthlySummaryFn != nil {
		return m.monthlySummaryFn(month, year)
	}
	return &services.MonthlySummary{Month: month, Year: year}, nil
}

func (m *mockAnalysisService) CategoryBreakdown(categoryType models.CategoryType, month, year int) ([]services.CategoryTotal, error) {
	if m.categoryBreakdownFn != nil {
		return m.categoryBreakdownFn(categoryType, month, year)
	}
	return []services.CategoryTotal{}, nil
}

func (m *mockAnalysisService) DailyFlow(month, year int) ([]services.DailyFlow, error) {
	if m.dailyFlowFn != nil {
		return m.dailyFlowFn(month, year)
	}
	return []services.DailyFlow{}, nil
}

func (m *mockAnalysisService) Trends(month, year, months int) ([]services.MonthlySummary, error) {
	if m.trendsFn != nil {
		return m.trendsFn(month, year, months)
	}
	return []services.MonthlySummary{}, nil
}

func (m *mockAnalysisService) Overview() (*services.Overview, error) {
	if m.overviewFn != nil {
		return m.overviewFn()
	}
	return &services.Overview{}, nil
}

var _ services.AnalysisServicer = (*mockAnalysisService)(nil)

func setupAnalysisRouter(handler *AnalysisHandler) *gin.Engine {
	r := gin.New()
	r.GET("/analysis/summary", handler.GetSummary)
	r.GET("/analysis/breakdown", handler.GetBreakdown)
	r.GET("/analysis/daily", handler.GetDailyFlow)
	r.GET("/analysis/trends", handler.GetTrends)
	r.GET("/analysis/overview", handler.GetOverview)
	return r
}

func TestAnalysisHandler_GetSummary(t *testing.T) {
	t.Run("returns 200 with totals", func(t *testing.T) {
		svc := &mockAnalysisService{
			monthlySummaryFn: func(month, year int) (*services.MonthlySummary, error) {
				return &services.MonthlySummary{
					Month:   month,
					Year:    year,
					Income:  decimal.NewFromInt(1000),
					Expense: decimal.NewFromInt(250),
					Net:     decimal.NewFromInt(750),
					Count:   4,
				}, nil
			},
		}
		r := setupAnalysisRouter(NewAnalysisHandler(svc))

		rec := doRequest(r, "GET", "/analysis/summary?month=2&year=2024", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		summary := parseJSON(t, rec)["summary"].(map[string]interface{})
		if summary["net"] != "750" {
			t.Errorf("expected net 750, got %v", summary["net"])
		}
		if summary["month"] != float64(2) {
			t.Errorf("expected month 2, got %v", summary["month"])
		}
	})

	t.Run("returns 400 when the service rejects the period", func(t *testing.T) {
		svc := &mockAnalysisService{
			monthlySummaryFn: func(int, int) (*services.MonthlySummary, error) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 0 and 11")
			},
		}
		r := setupAnalysisRouter(NewAnalysisHandler(svc))

		rec := doRequest(r, "GET", "/analysis/summary?month=12&year=2024", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAnalysisHandler_GetBreakdown(t *testing.T) {
	t.Run("defaults to expense", func(t *testing.T) {
		var captured models.CategoryType
		svc := &mockAnalysisService{
			categoryBreakdownFn: func(categoryType models.CategoryType, _, _ int) ([]services.CategoryTotal, error) {
				captured = categoryType
				return []services.CategoryTotal{}, nil
			},
		}
		r := setupAnalysisRouter(NewAnalysisHandler(svc))

		rec := doRequest(r, "GET", "/analysis/breakdown", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if captured != models.CategoryTypeExpense {
			t.Errorf("expected expense, got %s", captured)
		}
	})

	t.Run("passes the requested type", func(t *testing.T) {
		var captured models.CategoryType
		svc := &mockAnalysisService{
			categoryBreakdownFn: func(categoryType models.CategoryType, _, _ int) ([]services.CategoryTotal, error) {
				captured = categoryType
				return []services.CategoryTotal{{Name: "Salary", Total: decimal.NewFromInt(10), Percentage: 100}}, nil
			},
		}
		r := setupAnalysisRouter(NewAnalysisHandler(svc))

		rec := doRequest(r, "GET", "/analysis/breakdown?type=income", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if captured != models.CategoryTypeIncome {
			t.Errorf("expected income, got %s", captured)
		}
		breakdown := parseJSON(t, rec)["breakdown"].([]interface{})
		if len(breakdown) != 1 {
			t.Errorf("expected 1 slice, got %d", len(breakdown))
		}
	})
}

func TestAnalysisHandler_GetDailyFlow(t *testing.T) {
	svc := &mockAnalysisService{
		dailyFlowFn: func(month, year int) ([]services.DailyFlow, error) {
			return make([]services.DailyFlow, 29), nil
		},
	}
	r := setupAnalysisRouter(NewAnalysisHandler(svc))

	rec := doRequest(r, "GET", "/analysis/daily?month=1&year=2024", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if days := parseJSON(t, rec)["days"].([]interface{}); len(days) != 29 {
		t.Errorf("expected 29 days, got %d", len(days))
	}
}

func TestAnalysisHandler_GetTrends(t *testing.T) {
	t.Run("passes the window", func(t *testing.T) {
		var gotMonths int
		svc := &mockAnalysisService{
			trendsFn: func(_, _, months int) ([]services.MonthlySummary, error) {
				gotMonths = months
				return []services.MonthlySummary{}, nil
			},
		}
		r := setupAnalysisRouter(NewAnalysisHandler(svc))

		rec := doRequest(r, "GET", "/analysis/trends?months=12", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotMonths != 12 {
			t.Errorf("expected 12, got %d", gotMonths)
		}
	})

	t.Run("leaves the default to the service", func(t *testing.T) {
		gotMonths := -1
		svc := &mockAnalysisService{
			trendsFn: func(_, _, months int) ([]services.MonthlySummary, error) {
				gotMonths = months
				return []services.MonthlySummary{}, nil
			},
		}
		r := setupAnalysisRouter(NewAnalysisHandler(svc))

		doRequest(r, "GET", "/analysis/trends", "")

		if gotMonths != 0 {
			t.Errorf("expected 0, got %d", gotMonths)
		}
	})

	t.Run("returns 400 on non-numeric window", func(t *testing.T) {
		r := setupAnalysisRouter(NewAnalysisHandler(&mockAnalysisService{}))

		rec := doRequest(r, "GET", "/analysis/trends?months=six", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAnalysisHandler_GetOverview(t *testing.T) {
	svc := &mockAnalysisService{
		overviewFn: func() (*services.Overview, error) {
			return &services.Overview{
				TotalBalance: decimal.NewFromInt(40),
				Assets:       decimal.NewFromInt(120),
				Liabilities:  decimal.NewFromInt(80),
				Accounts:     3,
			}, nil
		},
	}
	r := setupAnalysisRouter(NewAnalysisHandler(svc))

	rec := doRequest(r, "GET", "/analysis/overview", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	overview := parseJSON(t, rec)["overview"].(map[string]interface{})
	if overview["total_balance"] != "40" {
		t.Errorf("expected 40, got %v", overview["total_balance"])
	}
}
