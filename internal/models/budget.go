package models

import "github.com/shopspring/decimal"

// Budget is a monthly spending ceiling for one expense category.
// There is at most one budget per (category, month, year).
type Budget struct {
	Base
	CategoryID uint            `gorm:"not null;uniqueIndex:idx_budgets_period" json:"category_id"`
	Month      int             `gorm:"not null;uniqueIndex:idx_budgets_period" json:"month"` // 0-11
	Year       int             `gorm:"not null;uniqueIndex:idx_budgets_period" json:"year"`
	Amount     decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
}
