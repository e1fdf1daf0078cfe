package services

import (
	"testing"

	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		l, _ := newTestLedger(t, Options{})

		cat, err := l.Categories.CreateCategory("  Groceries ", models.CategoryTypeExpense, "#ff0000", models.IconShoppingCart)
		testutil.AssertNoError(t, err)

		if cat.ID == 0 {
			t.Fatal("expected non-zero category ID")
		}
		if cat.Name != "Groceries" {
			t.Errorf("expected trimmed name Groceries, got %q", cat.Name)
		}
		if cat.Type != models.CategoryTypeExpense {
			t.Errorf("expected type expense, got %s", cat.Type)
		}
		if cat.Icon != models.IconShoppingCart {
			t.Errorf("expected icon shopping-cart, got %s", cat.Icon)
		}
	})

	t.Run("duplicate_name_same_type", func(t *testing.T) {
		l, _ := newTestLedger(t, Options{})

		mustCategory(t, l, "Food", models.CategoryTypeExpense)
		_, err := l.Categories.CreateCategory("Food", models.CategoryTypeExpense, "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("same_name_other_type", func(t *testing.T) {
		l, _ := newTestLedger(t, Options{})

		mustCategory(t, l, "Refunds", models.CategoryTypeExpense)
		_, err := l.Categories.CreateCategory("Refunds", models.CategoryTypeIncome, "", "")
		testutil.AssertNoError(t, err)
	})

	t.Run("empty_name", func(t *testing.T) {
		l, _ := newTestLedger(t, Options{})

		_, err := l.Categories.CreateCategory("   ", models.CategoryTypeExpense, "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_type", func(t *testing.T) {
		l, _ := newTestLedger(t, Options{})

		_, err := l.Categories.CreateCategory("Misc", models.CategoryType("transfer"), "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_color", func(t *testing.T) {
		l, _ := newTestLedger(t, Options{})

		_, err := l.Categories.CreateCategory("Misc", models.CategoryTypeExpense, "red", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_icon", func(t *testing.T) {
		l, _ := newTestLedger(t, Options{})

		_, err := l.Categories.CreateCategory("Misc", models.CategoryTypeExpense, "", models.IconTag("rocket"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestListCategories(t *testing.T) {
	l, _ := newTestLedger(t, Options{})

	mustCategory(t, l, "Rent", models.CategoryTypeExpense)
	mustCategory(t, l, "Salary", models.CategoryTypeIncome)
	mustCategory(t, l, "Coffee", models.CategoryTypeExpense)

	t.Run("ordered_by_type_then_name", func(t *testing.T) {
		page, err := l.Categories.ListCategories(pagination.PageRequest{Page: 1, PageSize: 10})
		testutil.AssertNoError(t, err)

		if page.TotalItems != 3 {
			t.Fatalf("expected 3 categories, got %d", page.TotalItems)
		}
		want := []string{"Coffee", "Rent", "Salary"}
		for i, name := range want {
			if page.Data[i].Name != name {
				t.Errorf("position %d: expected %s, got %s", i, name, page.Data[i].Name)
			}
		}
	})

	t.Run("by_type", func(t *testing.T) {
		page, err := l.Categories.ListCategoriesByType(models.CategoryTypeIncome, pagination.All)
		testutil.AssertNoError(t, err)

		if len(page.Data) != 1 || page.Data[0].Name != "Salary" {
			t.Errorf("expected only Salary, got %+v", page.Data)
		}
	})

	t.Run("by_invalid_type", func(t *testing.T) {
		_, err := l.Categories.ListCategoriesByType(models.CategoryType("bogus"), pagination.All)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetCategory(t *testing.T) {
	l, _ := newTestLedger(t, Options{})

	cat := mustCategory(t, l, "Books", models.CategoryTypeExpense)

	got, err := l.Categories.GetCategory(cat.ID)
	testutil.AssertNoError(t, err)
	if got.Name != "Books" {
		t.Errorf("expected Books, got %s", got.Name)
	}

	_, err = l.Categories.GetCategory(99999)
	testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
}

func TestUpdateCategory(t *testing.T) {
	t.Run("partial_update", func(t *testing.T) {
		l, _ := newTestLedger(t, Options{})
		cat := mustCategory(t, l, "Fun", models.CategoryTypeExpense)

		color := "#abc"
		updated, err := l.Categories.UpdateCategory(cat.ID, CategoryUpdate{Color: &color})
		testutil.AssertNoError(t, err)

		if updated.Name != "Fun" {
			t.Errorf("expected name unchanged, got %s", updated.Name)
		}
		if updated.Color != "#abc" {
			t.Errorf("expected color #abc, got %s", updated.Color)
		}
	})

	t.Run("rename_to_existing", func(t *testing.T) {
		l, _ := newTestLedger(t, Options{})
		mustCategory(t, l, "Taxi", models.CategoryTypeExpense)
		cat := mustCategory(t, l, "Bus", models.CategoryTypeExpense)

		name := "Taxi"
		_, err := l.Categories.UpdateCategory(cat.ID, CategoryUpdate{Name: &name})
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("not_found", func(t *testing.T) {
		l, _ := newTestLedger(t, Options{})

		name := "Ghost"
		_, err := l.Categories.UpdateCategory(99999, CategoryUpdate{Name: &name})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("keeps_transactions", func(t *testing.T) {
		l, db := newTestLedger(t, Options{})
		account := mustAccount(t, l, "Wallet", "0")
		cat := mustCategory(t, l, "Snacks", models.CategoryTypeExpense)
		tx := mustTransaction(t, l, TransactionInput{
			Amount:     testutil.Dec("4.20"),
			Type:       models.TransactionTypeExpense,
			CategoryID: &cat.ID,
			AccountID:  account.ID,
			Date:       day(2024, 3, 2),
		})

		testutil.AssertNoError(t, l.Categories.DeleteCategory(cat.ID))

		got, err := l.Transactions.GetTransaction(tx.ID)
		testutil.AssertNoError(t, err)
		if got.CategoryName != models.UnknownCategoryName {
			t.Errorf("expected orphaned transaction to read as Unknown, got %q", got.CategoryName)
		}
		if storedBalance(t, db, account.ID) != "-4.2" {
			t.Errorf("expected balance unchanged by category delete, got %s", storedBalance(t, db, account.ID))
		}
	})

	t.Run("removes_budgets", func(t *testing.T) {
		l, db := newTestLedger(t, Options{})
		cat := mustCategory(t, l, "Dining", models.CategoryTypeExpense)
		_, err := l.Budgets.SetBudget(cat.ID, 2, 2024, testutil.Dec("100"))
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, l.Categories.DeleteCategory(cat.ID))

		if n := testutil.CountRows(t, db, &models.Budget{}); n != 0 {
			t.Errorf("expected budgets removed with category, found %d", n)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		l, _ := newTestLedger(t, Options{})

		err := l.Categories.DeleteCategory(99999)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestEnsureDefaultCategories(t *testing.T) {
	l, db := newTestLedger(t, Options{})

	seeded, err := l.Categories.EnsureDefaultCategories()
	testutil.AssertNoError(t, err)
	if !seeded {
		t.Fatal("expected defaults to be seeded into an empty ledger")
	}

	defaults := DefaultCategories()
	if n := testutil.CountRows(t, db, &models.Category{}); n != int64(len(defaults)) {
		t.Errorf("expected %d categories, got %d", len(defaults), n)
	}

	seeded, err = l.Categories.EnsureDefaultCategories()
	testutil.AssertNoError(t, err)
	if seeded {
		t.Error("expected second call to be a no-op")
	}
	if n := testutil.CountRows(t, db, &models.Category{}); n != int64(len(defaults)) {
		t.Errorf("expected seeding to be idempotent, got %d categories", n)
	}
}

func TestDefaultCategories(t *testing.T) {
	var income, expense int
	for _, c := range DefaultCategories() {
		if !models.ValidColor(c.Color) {
			t.Errorf("%s: invalid color %q", c.Name, c.Color)
		}
		if !c.Icon.Valid() {
			t.Errorf("%s: invalid icon %q", c.Name, c.Icon)
		}
		switch c.Type {
		case models.CategoryTypeIncome:
			income++
		case models.CategoryTypeExpense:
			expense++
		}
	}
	if income != 3 || expense != 5 {
		t.Errorf("expected 3 income and 5 expense defaults, got %d and %d", income, expense)
	}
}
