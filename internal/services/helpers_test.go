package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"pennywise/internal/events"
	"pennywise/internal/models"
	"pennywise/internal/testutil"
)

// newTestLedger returns a ledger over a fresh in-memory database.
func newTestLedger(t *testing.T, opts Options) (*Ledger, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
	return NewLedger(db, events.NewBroker(256), opts), db
}

func mustCategory(t *testing.T, l *Ledger, name string, categoryType models.CategoryType) *models.Category {
	t.Helper()
	c, err := l.Categories.CreateCategory(name, categoryType, "", "")
	testutil.AssertNoError(t, err)
	return c
}

func mustAccount(t *testing.T, l *Ledger, name, initial string) *models.Account {
	t.Helper()
	a, err := l.Accounts.CreateAccount(AccountInput{Name: name, InitialBalance: testutil.Dec(initial)})
	testutil.AssertNoError(t, err)
	return a
}

func mustTransaction(t *testing.T, l *Ledger, in TransactionInput) *models.Transaction {
	t.Helper()
	tx, err := l.Transactions.CreateTransaction(in)
	testutil.AssertNoError(t, err)
	return tx
}

func storedBalance(t *testing.T, db *gorm.DB, accountID uint) string {
	t.Helper()
	var a models.Account
	if err := db.First(&a, accountID).Error; err != nil {
		t.Fatalf("failed to load account %d: %v", accountID, err)
	}
	return a.Balance.String()
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}
