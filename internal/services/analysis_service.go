package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
)

// DefaultTrendMonths is the trailing window used when Trends gets months <= 0.
const DefaultTrendMonths = 6

// maxTrendMonths bounds the trailing window.
const maxTrendMonths = 120

// analysisService computes the read-only aggregate views.
type analysisService struct {
	db  *gorm.DB
	loc *time.Location
}

// NewAnalysisService creates a new AnalysisServicer. loc defines calendar
// months and days.
func NewAnalysisService(db *gorm.DB, loc *time.Location) AnalysisServicer {
	if loc == nil {
		loc = time.UTC
	}
	return &analysisService{db: db, loc: loc}
}

func (s *analysisService) monthTransactions(month, year int, columns ...string) ([]models.Transaction, error) {
	start, end := monthRange(year, month, s.loc)
	q := s.db.Where("date >= ? AND date < ?", start, end)
	if len(columns) > 0 {
		q = q.Select(columns)
	}
	var transactions []models.Transaction
	if err := q.Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return transactions, nil
}

// MonthlySummary totals income, expense and transfers for one month.
func (s *analysisService) MonthlySummary(month, year int) (*MonthlySummary, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	transactions, err := s.monthTransactions(month, year, "amount", "type")
	if err != nil {
		return nil, err
	}
	summary := summarize(month, year, transactions)
	return &summary, nil
}

func summarize(month, year int, transactions []models.Transaction) MonthlySummary {
	summary := MonthlySummary{
		Month:    month,
		Year:     year,
		Income:   decimal.Zero,
		Expense:  decimal.Zero,
		Transfer: decimal.Zero,
		Count:    len(transactions),
	}
	for _, t := range transactions {
		switch t.Type {
		case models.TransactionTypeIncome:
			summary.Income = summary.Income.Add(t.Amount)
		case models.TransactionTypeExpense:
			summary.Expense = summary.Expense.Add(t.Amount)
		case models.TransactionTypeTransfer:
			summary.Transfer = summary.Transfer.Add(t.Amount)
		}
	}
	summary.Net = summary.Income.Sub(summary.Expense)
	return summary
}

// CategoryBreakdown returns the non-zero totals of each category of the given
// type for one month, largest first.
func (s *analysisService) CategoryBreakdown(categoryType models.CategoryType, month, year int) ([]CategoryTotal, error) {
	if !categoryType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
	}
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := s.db.Where("type = ?", categoryType).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	start, end := monthRange(year, month, s.loc)
	var transactions []models.Transaction
	if err := s.db.Select("amount", "category_id").
		Where("type = ? AND category_id IS NOT NULL AND date >= ? AND date < ?", categoryType, start, end).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	totals := make(map[uint]decimal.Decimal)
	for _, t := range transactions {
		totals[*t.CategoryID] = totals[*t.CategoryID].Add(t.Amount)
	}

	grand := decimal.Zero
	breakdown := []CategoryTotal{}
	for _, c := range categories {
		total, ok := totals[c.ID]
		if !ok || !total.IsPositive() {
			continue
		}
		id := c.ID
		breakdown = append(breakdown, CategoryTotal{CategoryID: &id, Name: c.Name, Color: c.Color, Total: total})
		grand = grand.Add(total)
	}
	for i := range breakdown {
		breakdown[i].Percentage = percentOf(breakdown[i].Total, grand)
	}

	sort.SliceStable(breakdown, func(i, j int) bool {
		if breakdown[i].Total.Equal(breakdown[j].Total) {
			return breakdown[i].Name < breakdown[j].Name
		}
		return breakdown[i].Total.GreaterThan(breakdown[j].Total)
	})
	return breakdown, nil
}

// DailyFlow returns income and expense for every day of the month.
func (s *analysisService) DailyFlow(month, year int) ([]DailyFlow, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	transactions, err := s.monthTransactions(month, year, "amount", "type", "date")
	if err != nil {
		return nil, err
	}

	first := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, s.loc)
	days := first.AddDate(0, 1, -1).Day()
	flow := make([]DailyFlow, days)
	for i := range flow {
		flow[i] = DailyFlow{
			Day:     i + 1,
			Date:    first.AddDate(0, 0, i).Format("2006-01-02"),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}
	}

	for _, t := range transactions {
		idx := t.Date.In(s.loc).Day() - 1
		if idx < 0 || idx >= days {
			continue
		}
		switch t.Type {
		case models.TransactionTypeIncome:
			flow[idx].Income = flow[idx].Income.Add(t.Amount)
		case models.TransactionTypeExpense:
			flow[idx].Expense = flow[idx].Expense.Add(t.Amount)
		}
	}
	return flow, nil
}

// Trends returns one summary per month for the trailing window ending at
// (month, year), oldest first.
func (s *analysisService) Trends(month, year, months int) ([]MonthlySummary, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	if months <= 0 {
		months = DefaultTrendMonths
	}
	if months > maxTrendMonths {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "trend window is limited to 120 months")
	}

	firstMonth, firstYear := shiftMonth(month, year, -(months - 1))
	if firstYear < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "trend window starts before year 1")
	}
	start, _ := monthRange(firstYear, firstMonth, s.loc)
	_, end := monthRange(year, month, s.loc)

	var transactions []models.Transaction
	if err := s.db.Select("amount", "type", "date").
		Where("date >= ? AND date < ?", start, end).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	buckets := make([][]models.Transaction, months)
	for _, t := range transactions {
		local := t.Date.In(s.loc)
		idx := (local.Year()*12 + int(local.Month()) - 1) - (firstYear*12 + firstMonth)
		if idx >= 0 && idx < months {
			buckets[idx] = append(buckets[idx], t)
		}
	}

	trends := make([]MonthlySummary, 0, months)
	for i := 0; i < months; i++ {
		m, y := shiftMonth(firstMonth, firstYear, i)
		trends = append(trends, summarize(m, y, buckets[i]))
	}
	return trends, nil
}

// Overview sums the balances of all accounts.
func (s *analysisService) Overview() (*Overview, error) {
	var accounts []models.Account
	if err := s.db.Select("id", "balance").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	overview := &Overview{
		TotalBalance: decimal.Zero,
		Assets:       decimal.Zero,
		Liabilities:  decimal.Zero,
		Accounts:     len(accounts),
	}
	for _, a := range accounts {
		overview.TotalBalance = overview.TotalBalance.Add(a.Balance)
		if a.Balance.IsNegative() {
			overview.Liabilities = overview.Liabilities.Add(a.Balance.Neg())
		} else {
			overview.Assets = overview.Assets.Add(a.Balance)
		}
	}
	return overview, nil
}
