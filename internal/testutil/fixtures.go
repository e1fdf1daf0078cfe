package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"pennywise/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Dec parses a decimal literal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// CreateTestAccount creates an account with zero balance and no transactions.
func CreateTestAccount(t *testing.T, db *gorm.DB) *models.Account {
	t.Helper()

	account := &models.Account{
		Name:    fmt.Sprintf("Test Account %d", nextID()),
		Icon:    models.IconWallet,
		Balance: decimal.Zero,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:  fmt.Sprintf("Test Category %d", nextID()),
		Type:  categoryType,
		Color: "#123abc",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction inserts a transaction row directly, bypassing
// validation and balance recomputation.
func CreateTestTransaction(t *testing.T, db *gorm.DB, accountID uint, categoryID *uint, txType models.TransactionType, amount string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		AccountID:  accountID,
		CategoryID: categoryID,
		Type:       txType,
		Amount:     Dec(amount),
		Date:       date.UTC(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates a budget for the given expense category and month.
func CreateTestBudget(t *testing.T, db *gorm.DB, categoryID uint, month, year int, amount string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		CategoryID: categoryID,
		Month:      month,
		Year:       year,
		Amount:     Dec(amount),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestCard creates a card record.
func CreateTestCard(t *testing.T, db *gorm.DB) *models.Card {
	t.Helper()

	n := nextID()
	card := &models.Card{
		Name:   fmt.Sprintf("Test Card %d", n),
		Number: fmt.Sprintf("4111 1111 1111 %04d", n%10000),
		Icon:   models.IconCreditCard,
	}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("failed to create test card: %v", err)
	}
	return card
}

// CountRows returns the number of rows in model's table.
func CountRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return n
}
