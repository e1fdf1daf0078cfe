package services

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// TransferMode selects how transfers affect account balances.
type TransferMode string

const (
	// TransferModeIgnore leaves balances untouched by transfers.
	TransferModeIgnore TransferMode = "ignore"
	// TransferModeMove debits the source account and credits the destination.
	TransferModeMove TransferMode = "move"
)

// CategoryUpdate holds the mutable category fields. Nil fields are left unchanged.
type CategoryUpdate struct {
	Name  *string
	Color *string
	Icon  *models.IconTag
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(name string, categoryType models.CategoryType, color string, icon models.IconTag) (*models.Category, error)
	ListCategories(page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	ListCategoriesByType(categoryType models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategory(categoryID uint) (*models.Category, error)
	UpdateCategory(categoryID uint, update CategoryUpdate) (*models.Category, error)
	DeleteCategory(categoryID uint) error
	EnsureDefaultCategories() (bool, error)
	InitialBalanceCategory(tx *gorm.DB) (*models.Category, bool, error)
}

// AccountInput holds the fields for a new account.
type AccountInput struct {
	Name           string
	Color          string
	Icon           models.IconTag
	InitialBalance decimal.Decimal
}

// AccountUpdate holds the mutable account fields. The balance is derived and
// cannot be set.
type AccountUpdate struct {
	Name  *string
	Color *string
	Icon  *models.IconTag
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(input AccountInput) (*models.Account, error)
	ListAccounts(page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccount(accountID uint) (*models.Account, error)
	UpdateAccount(accountID uint, update AccountUpdate) (*models.Account, error)
	DeleteAccount(accountID uint) error
	RecomputeBalances() error
	RecomputeAccountBalances(tx *gorm.DB, accountIDs ...uint) ([]uint, error)
}

// TransactionInput holds the fields for a new transaction.
type TransactionInput struct {
	Amount      decimal.Decimal
	Type        models.TransactionType
	CategoryID  *uint
	AccountID   uint
	ToAccountID *uint
	Date        time.Time
	Notes       string
}

// TransactionPatch holds a partial transaction update. Nil fields keep their
// current value.
type TransactionPatch struct {
	Amount      *decimal.Decimal
	Type        *models.TransactionType
	CategoryID  *uint
	AccountID   *uint
	ToAccountID *uint
	Date        *time.Time
	Notes       *string
}

// TransactionFilter holds optional filter parameters for listing transactions.
// Month is 0-11 and is only applied together with Year. ToDate is inclusive,
// Before is exclusive.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Before     *time.Time
	Month      *int
	Year       *int
	Type       *models.TransactionType
	CategoryID *uint
	AccountID  *uint
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(input TransactionInput) (*models.Transaction, error)
	UpdateTransaction(transactionID uint, patch TransactionPatch) (*models.Transaction, error)
	DeleteTransaction(transactionID uint) error
	GetTransaction(transactionID uint) (*models.Transaction, error)
	ListTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

// BudgetProgress contains spending vs budget data for one budget's month.
type BudgetProgress struct {
	BudgetID     uint            `json:"budget_id"`
	CategoryID   uint            `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Month        int             `json:"month"`
	Year         int             `json:"year"`
	Budgeted     decimal.Decimal `json:"budgeted"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	Percentage   float64         `json:"percentage"`
	OverBudget   bool            `json:"over_budget"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	SetBudget(categoryID uint, month, year int, amount decimal.Decimal) (*models.Budget, error)
	ListBudgets(month, year int) ([]models.Budget, error)
	GetBudget(budgetID uint) (*models.Budget, error)
	DeleteBudget(budgetID uint) error
	GetBudgetProgress(month, year int) ([]BudgetProgress, error)
}

// CardInput holds the fields for a new card.
type CardInput struct {
	Name   string
	Number string
	Color  string
	Icon   models.IconTag
}

// CardUpdate holds the mutable card fields. Nil fields are left unchanged.
type CardUpdate struct {
	Name   *string
	Number *string
	Color  *string
	Icon   *models.IconTag
}

// CardServicer defines the contract for card records.
type CardServicer interface {
	CreateCard(input CardInput) (*models.Card, error)
	ListCards(page pagination.PageRequest) (*pagination.PageResponse[models.Card], error)
	GetCard(cardID uint) (*models.Card, error)
	UpdateCard(cardID uint, update CardUpdate) (*models.Card, error)
	DeleteCard(cardID uint) error
}

// ImportResult reports how many rows a restore wrote.
type ImportResult struct {
	Categories   int `json:"categories"`
	Transactions int `json:"transactions"`
}

// BackupServicer defines the contract for backup, restore and export.
type BackupServicer interface {
	ExportJSON(w io.Writer) error
	ImportJSON(r io.Reader) (*ImportResult, error)
	ExportCSV(w io.Writer, filter TransactionFilter) (int, error)
	Reset() error
}

// MonthlySummary totals one month of transactions.
type MonthlySummary struct {
	Month    int             `json:"month"`
	Year     int             `json:"year"`
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Transfer decimal.Decimal `json:"transfer"`
	Net      decimal.Decimal `json:"net"`
	Count    int             `json:"count"`
}

// CategoryTotal is one slice of a category breakdown. CategoryID is nil for
// transactions whose category no longer exists.
type CategoryTotal struct {
	CategoryID *uint           `json:"category_id,omitempty"`
	Name       string          `json:"name"`
	Color      string          `json:"color,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Percentage float64         `json:"percentage"`
}

// DailyFlow holds income and expense for one calendar day.
type DailyFlow struct {
	Day     int             `json:"day"`
	Date    string          `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Overview summarizes balances across all accounts.
type Overview struct {
	TotalBalance decimal.Decimal `json:"total_balance"`
	Assets       decimal.Decimal `json:"assets"`
	Liabilities  decimal.Decimal `json:"liabilities"`
	Accounts     int             `json:"accounts"`
}

// AnalysisServicer defines the read-only aggregate views.
type AnalysisServicer interface {
	MonthlySummary(month, year int) (*MonthlySummary, error)
	CategoryBreakdown(categoryType models.CategoryType, month, year int) ([]CategoryTotal, error)
	DailyFlow(month, year int) ([]DailyFlow, error)
	Trends(month, year, months int) ([]MonthlySummary, error)
	Overview() (*Overview, error)
}

// ChangeServicer defines the contract for the change journal.
type ChangeServicer interface {
	Record(tx *gorm.DB, table string, op models.ChangeOp, recordID uint, payload any) (*models.ChangeRecord, error)
	ListSince(seq uint, limit int) ([]models.ChangeRecord, error)
}
