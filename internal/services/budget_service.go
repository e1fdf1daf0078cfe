package services

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pennywise/internal/events"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db      *gorm.DB
	journal *journal
	loc     *time.Location
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, changes ChangeServicer, broker *events.Broker, loc *time.Location) BudgetServicer {
	if loc == nil {
		loc = time.UTC
	}
	return &budgetService{db: db, journal: &journal{db: db, changes: changes, broker: broker}, loc: loc}
}

// SetBudget creates the budget for (category, month, year) or overwrites the
// amount of the existing one.
func (s *budgetService) SetBudget(categoryID uint, month, year int, amount decimal.Decimal) (*models.Budget, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount cannot be negative")
	}

	var budget models.Budget
	err := s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		category, err := findCategory(tx, categoryID)
		if err != nil {
			if errors.Is(err, apperrors.ErrCategoryNotFound) {
				return apperrors.WithMessage(apperrors.ErrInvalidReference, "category not found")
			}
			return err
		}
		if category.Type != models.CategoryTypeExpense {
			return apperrors.WithMessage(apperrors.ErrCategoryTypeMismatch, "budgets can only be set for expense categories")
		}

		err = tx.Where("category_id = ? AND month = ? AND year = ?", categoryID, month, year).First(&budget).Error
		switch {
		case err == nil:
			if err := tx.Model(&budget).Update("amount", amount).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrStorage, err)
			}
			budget.Amount = amount
			return cs.add(models.TableBudgets, models.ChangeOpUpdate, budget.ID, &budget)
		case errors.Is(err, gorm.ErrRecordNotFound):
			budget = models.Budget{CategoryID: categoryID, Month: month, Year: year, Amount: amount}
			if err := tx.Create(&budget).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrStorage, err)
			}
			return cs.add(models.TableBudgets, models.ChangeOpCreate, budget.ID, &budget)
		default:
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
	})
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// ListBudgets returns the budgets of one month.
func (s *budgetService) ListBudgets(month, year int) ([]models.Budget, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	budgets := []models.Budget{}
	if err := s.db.Where("month = ? AND year = ?", month, year).Order("category_id ASC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return budgets, nil
}

// GetBudget returns a budget by ID.
func (s *budgetService) GetBudget(budgetID uint) (*models.Budget, error) {
	return findBudget(s.db, budgetID)
}

func findBudget(db *gorm.DB, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := db.First(&budget, budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return &budget, nil
}

// DeleteBudget removes a budget.
func (s *budgetService) DeleteBudget(budgetID uint) error {
	return s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		budget, err := findBudget(tx, budgetID)
		if err != nil {
			return err
		}
		if err := tx.Delete(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		return cs.add(models.TableBudgets, models.ChangeOpDelete, budget.ID, nil)
	})
}

// GetBudgetProgress compares each budget of the month with the expenses
// recorded in its category during that month.
func (s *budgetService) GetBudgetProgress(month, year int) ([]BudgetProgress, error) {
	budgets, err := s.ListBudgets(month, year)
	if err != nil {
		return nil, err
	}
	progress := make([]BudgetProgress, 0, len(budgets))
	if len(budgets) == 0 {
		return progress, nil
	}

	categoryIDs := make([]uint, 0, len(budgets))
	for _, b := range budgets {
		categoryIDs = append(categoryIDs, b.CategoryID)
	}

	var categories []models.Category
	if err := s.db.Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	names := make(map[uint]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	start, end := monthRange(year, month, s.loc)
	var expenses []models.Transaction
	if err := s.db.Select("amount", "category_id").
		Where("type = ? AND category_id IN ? AND date >= ? AND date < ?", models.TransactionTypeExpense, categoryIDs, start, end).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	spent := make(map[uint]decimal.Decimal)
	for _, t := range expenses {
		spent[*t.CategoryID] = spent[*t.CategoryID].Add(t.Amount)
	}

	for _, b := range budgets {
		p := BudgetProgress{
			BudgetID:     b.ID,
			CategoryID:   b.CategoryID,
			CategoryName: names[b.CategoryID],
			Month:        b.Month,
			Year:         b.Year,
			Budgeted:     b.Amount,
			Spent:        spent[b.CategoryID].Add(decimal.Zero),
		}
		if p.CategoryName == "" {
			p.CategoryName = models.UnknownCategoryName
		}
		p.Remaining = p.Budgeted.Sub(p.Spent)
		p.OverBudget = p.Spent.GreaterThan(p.Budgeted)
		p.Percentage = percentOf(p.Spent, p.Budgeted)
		progress = append(progress, p)
	}

	sort.SliceStable(progress, func(i, j int) bool {
		return progress[i].CategoryName < progress[j].CategoryName
	})
	return progress, nil
}

// percentOf returns part/whole as a percentage rounded to two places. A zero
// whole yields 100 when part is positive and 0 otherwise.
func percentOf(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		if part.IsPositive() {
			return 100
		}
		return 0
	}
	pct, _ := part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return pct
}
