package services

import "pennywise/internal/models"

// defaultCategories is seeded into an empty category table.
var defaultCategories = []models.Category{
	{Name: "Salary", Type: models.CategoryTypeIncome, Color: "#10b981", Icon: models.IconBriefcase},
	{Name: "Freelance", Type: models.CategoryTypeIncome, Color: "#8b5cf6", Icon: models.IconLaptop},
	{Name: "Investments", Type: models.CategoryTypeIncome, Color: "#0ea5e9", Icon: models.IconTrendingUp},
	{Name: "Food", Type: models.CategoryTypeExpense, Color: "#f59e0b", Icon: models.IconUtensils},
	{Name: "Housing", Type: models.CategoryTypeExpense, Color: "#6366f1", Icon: models.IconHome},
	{Name: "Transportation", Type: models.CategoryTypeExpense, Color: "#ef4444", Icon: models.IconCar},
	{Name: "Entertainment", Type: models.CategoryTypeExpense, Color: "#ec4899", Icon: models.IconFilm},
	{Name: "Utilities", Type: models.CategoryTypeExpense, Color: "#14b8a6", Icon: models.IconZap},
}

// DefaultCategories returns a fresh copy of the seed categories.
func DefaultCategories() []models.Category {
	out := make([]models.Category, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}

const initialBalanceColor = "#22c55e"
