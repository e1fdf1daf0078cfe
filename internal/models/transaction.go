package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Valid reports whether t is one of the three transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

// CategoryType returns the category type an income or expense transaction
// must reference. Transfers have no category.
func (t TransactionType) CategoryType() (CategoryType, bool) {
	switch t {
	case TransactionTypeIncome:
		return CategoryTypeIncome, true
	case TransactionTypeExpense:
		return CategoryTypeExpense, true
	}
	return "", false
}

// Transaction represents a single ledger entry.
//
// CategoryID is set for income and expense and nil for transfers.
// ToAccountID is set only for transfers. Date is chosen by the user and is
// independent of CreatedAt, which records insertion time.
type Transaction struct {
	Base
	Amount      decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Type        TransactionType `gorm:"not null;index" json:"type"`
	CategoryID  *uint           `gorm:"index" json:"category_id,omitempty"`
	AccountID   uint            `gorm:"not null;index" json:"account_id"`
	ToAccountID *uint           `gorm:"index" json:"to_account_id,omitempty"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Notes       string          `json:"notes,omitempty"`

	// CategoryName is resolved at read time; "Unknown" for orphans.
	CategoryName string `gorm:"-" json:"category_name,omitempty"`
}
