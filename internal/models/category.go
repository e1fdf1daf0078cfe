package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Valid reports whether t is income or expense.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// InitialBalanceCategoryName is the reserved income category used to tag
// synthesized opening-balance transactions.
const InitialBalanceCategoryName = "Initial Balance"

// UnknownCategoryName is shown for transactions whose category no longer exists.
const UnknownCategoryName = "Unknown"

// Category represents a transaction category
type Category struct {
	Base
	Name  string       `gorm:"not null;index" json:"name"`
	Type  CategoryType `gorm:"not null;index" json:"type"`
	Color string       `json:"color,omitempty"`
	Icon  IconTag      `json:"icon,omitempty"`
}
