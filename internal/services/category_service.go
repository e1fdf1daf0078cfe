package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"pennywise/internal/events"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db      *gorm.DB
	journal *journal
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB, changes ChangeServicer, broker *events.Broker) CategoryServicer {
	return &categoryService{db: db, journal: &journal{db: db, changes: changes, broker: broker}}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(name string, categoryType models.CategoryType, color string, icon models.IconTag) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !categoryType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
	}
	if err := validateAppearance(color, icon); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:  name,
		Type:  categoryType,
		Color: color,
		Icon:  icon,
	}

	err := s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		// Check if a category with the same name and type already exists
		var count int64
		if err := tx.Model(&models.Category{}).
			Where("name = ? AND type = ?", name, categoryType).
			Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		if count > 0 {
			return apperrors.ErrDuplicateCategory
		}

		if err := tx.Create(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		return cs.add(models.TableCategories, models.ChangeOpCreate, category.ID, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories retrieves a paginated list of categories ordered by type then name.
func (s *categoryService) ListCategories(page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	return s.list(s.db.Model(&models.Category{}), page)
}

// ListCategoriesByType retrieves a paginated list of categories of a specific type.
func (s *categoryService) ListCategoriesByType(categoryType models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	if !categoryType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
	}
	return s.list(s.db.Model(&models.Category{}).Where("type = ?", categoryType), page)
}

func (s *categoryService) list(base *gorm.DB, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).Order("type ASC, name ASC, id ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategory retrieves a category by ID
func (s *categoryService) GetCategory(categoryID uint) (*models.Category, error) {
	return findCategory(s.db, categoryID)
}

func findCategory(db *gorm.DB, categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return &category, nil
}

// UpdateCategory updates an existing category. The type cannot change because
// existing transactions rely on it.
func (s *categoryService) UpdateCategory(categoryID uint, update CategoryUpdate) (*models.Category, error) {
	updates := make(map[string]interface{})
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
		}
		updates["name"] = name
	}
	if update.Color != nil {
		if !models.ValidColor(*update.Color) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "color must be a hex color like #1a2b3c")
		}
		updates["color"] = *update.Color
	}
	if update.Icon != nil {
		if !update.Icon.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown icon")
		}
		updates["icon"] = *update.Icon
	}

	var category *models.Category
	err := s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		var err error
		category, err = findCategory(tx, categoryID)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}

		if name, ok := updates["name"]; ok && name != category.Name {
			var count int64
			if err := tx.Model(&models.Category{}).
				Where("name = ? AND type = ? AND id <> ?", name, category.Type, category.ID).
				Count(&count).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrStorage, err)
			}
			if count > 0 {
				return apperrors.ErrDuplicateCategory
			}
		}

		if err := tx.Model(category).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		// Reload to get fresh data
		if err := tx.First(category, category.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		return cs.add(models.TableCategories, models.ChangeOpUpdate, category.ID, updates)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory deletes a category and its budgets. Transactions that
// referenced it are kept and read back as "Unknown".
func (s *categoryService) DeleteCategory(categoryID uint) error {
	return s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		category, err := findCategory(tx, categoryID)
		if err != nil {
			return err
		}

		var budgetIDs []uint
		if err := tx.Model(&models.Budget{}).Where("category_id = ?", category.ID).Pluck("id", &budgetIDs).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		if len(budgetIDs) > 0 {
			if err := tx.Where("id IN ?", budgetIDs).Delete(&models.Budget{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrStorage, err)
			}
			for _, id := range budgetIDs {
				if err := cs.add(models.TableBudgets, models.ChangeOpDelete, id, nil); err != nil {
					return err
				}
			}
		}

		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		return cs.add(models.TableCategories, models.ChangeOpDelete, category.ID, nil)
	})
}

// EnsureDefaultCategories seeds the default categories when none exist and
// reports whether it did.
func (s *categoryService) EnsureDefaultCategories() (bool, error) {
	seeded := false
	err := s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		var count int64
		if err := tx.Model(&models.Category{}).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		if count > 0 {
			return nil
		}
		if err := seedDefaultCategories(tx, cs); err != nil {
			return err
		}
		seeded = true
		return nil
	})
	return seeded, err
}

func seedDefaultCategories(tx *gorm.DB, cs *changeSet) error {
	categories := DefaultCategories()
	if err := tx.Create(&categories).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err)
	}
	for i := range categories {
		if err := cs.add(models.TableCategories, models.ChangeOpCreate, categories[i].ID, categories[i]); err != nil {
			return err
		}
	}
	return nil
}

// InitialBalanceCategory finds the reserved "Initial Balance" income category,
// creating it on first use. The second result reports whether it was created.
func (s *categoryService) InitialBalanceCategory(tx *gorm.DB) (*models.Category, bool, error) {
	var category models.Category
	err := tx.Where("name = ? AND type = ?", models.InitialBalanceCategoryName, models.CategoryTypeIncome).
		Order("id ASC").
		First(&category).Error
	if err == nil {
		return &category, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	category = models.Category{
		Name:  models.InitialBalanceCategoryName,
		Type:  models.CategoryTypeIncome,
		Color: initialBalanceColor,
		Icon:  models.IconPiggyBank,
	}
	if err := tx.Create(&category).Error; err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return &category, true, nil
}

func validateAppearance(color string, icon models.IconTag) error {
	if !models.ValidColor(color) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "color must be a hex color like #1a2b3c")
	}
	if !icon.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown icon")
	}
	return nil
}
