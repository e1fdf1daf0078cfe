package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"pennywise/internal/events"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db       *gorm.DB
	journal  *journal
	accounts AccountServicer
	loc      *time.Location
}

// NewTransactionService creates a new TransactionServicer. loc defines
// calendar months for the month/year filter.
func NewTransactionService(db *gorm.DB, changes ChangeServicer, broker *events.Broker, accounts AccountServicer, loc *time.Location) TransactionServicer {
	if loc == nil {
		loc = time.UTC
	}
	return &transactionService{
		db:       db,
		journal:  &journal{db: db, changes: changes, broker: broker},
		accounts: accounts,
		loc:      loc,
	}
}

// CreateTransaction validates and stores a transaction, then recomputes the
// balances of the accounts it touches.
func (s *transactionService) CreateTransaction(input TransactionInput) (*models.Transaction, error) {
	// Default date to now if not provided
	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	transaction := &models.Transaction{
		Amount:      input.Amount,
		Type:        input.Type,
		CategoryID:  input.CategoryID,
		AccountID:   input.AccountID,
		ToAccountID: input.ToAccountID,
		Date:        date.UTC(),
		Notes:       input.Notes,
	}

	err := s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		if err := validateTransaction(tx, transaction); err != nil {
			return err
		}
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		if err := cs.add(models.TableTransactions, models.ChangeOpCreate, transaction.ID, transaction); err != nil {
			return err
		}
		return cs.recompute(s.accounts, affectedAccounts(transaction)...)
	})
	if err != nil {
		return nil, err
	}

	if err := s.attachCategoryNames(s.db, []*models.Transaction{transaction}); err != nil {
		return nil, err
	}
	return transaction, nil
}

// UpdateTransaction applies patch and re-validates the result with the
// creation rules. Fields the resulting type does not use are cleared, unless
// the patch sets them, in which case the update is rejected.
func (s *transactionService) UpdateTransaction(transactionID uint, patch TransactionPatch) (*models.Transaction, error) {
	var updated models.Transaction
	err := s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		existing, err := findTransaction(tx, transactionID)
		if err != nil {
			return err
		}

		updated = *existing
		if patch.Amount != nil {
			updated.Amount = *patch.Amount
		}
		if patch.Type != nil {
			updated.Type = *patch.Type
		}
		if patch.CategoryID != nil {
			updated.CategoryID = patch.CategoryID
		}
		if patch.AccountID != nil {
			updated.AccountID = *patch.AccountID
		}
		if patch.ToAccountID != nil {
			updated.ToAccountID = patch.ToAccountID
		}
		if patch.Date != nil {
			if patch.Date.IsZero() {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
			}
			updated.Date = patch.Date.UTC()
		}
		if patch.Notes != nil {
			updated.Notes = *patch.Notes
		}

		if updated.Type == models.TransactionTypeTransfer {
			if patch.CategoryID == nil {
				updated.CategoryID = nil
			}
		} else if patch.ToAccountID == nil {
			updated.ToAccountID = nil
		}

		if err := validateTransaction(tx, &updated); err != nil {
			return err
		}
		if err := tx.Save(&updated).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		if err := cs.add(models.TableTransactions, models.ChangeOpUpdate, updated.ID, &updated); err != nil {
			return err
		}

		ids := append(affectedAccounts(existing), affectedAccounts(&updated)...)
		return cs.recompute(s.accounts, ids...)
	})
	if err != nil {
		return nil, err
	}

	if err := s.attachCategoryNames(s.db, []*models.Transaction{&updated}); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTransaction deletes a transaction and recomputes the balances of the
// accounts it referenced.
func (s *transactionService) DeleteTransaction(transactionID uint) error {
	return s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		transaction, err := findTransaction(tx, transactionID)
		if err != nil {
			return err
		}
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		if err := cs.add(models.TableTransactions, models.ChangeOpDelete, transaction.ID, nil); err != nil {
			return err
		}
		return cs.recompute(s.accounts, affectedAccounts(transaction)...)
	})
}

// GetTransaction retrieves a transaction by ID
func (s *transactionService) GetTransaction(transactionID uint) (*models.Transaction, error) {
	transaction, err := findTransaction(s.db, transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.attachCategoryNames(s.db, []*models.Transaction{transaction}); err != nil {
		return nil, err
	}
	return transaction, nil
}

func findTransaction(db *gorm.DB, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := db.First(&transaction, transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return &transaction, nil
}

// ListTransactions retrieves a paginated, filtered list of transactions,
// newest first.
func (s *transactionService) ListTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	page.Defaults()

	base := applyTransactionFilters(s.db.Model(&models.Transaction{}), filter, s.loc)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC, id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	ptrs := make([]*models.Transaction, len(transactions))
	for i := range transactions {
		ptrs[i] = &transactions[i]
	}
	if err := s.attachCategoryNames(s.db, ptrs); err != nil {
		return nil, err
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func validateFilter(f TransactionFilter) error {
	if f.Month != nil && f.Year == nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "month filter requires a year")
	}
	if f.Year != nil {
		month := 0
		if f.Month != nil {
			month = *f.Month
		}
		if err := validatePeriod(month, *f.Year); err != nil {
			return err
		}
	}
	if f.Type != nil && !f.Type.Valid() {
		return apperrors.ErrInvalidTransactionType
	}
	if f.MinAmount != nil && f.MaxAmount != nil && f.MinAmount.GreaterThan(*f.MaxAmount) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "min amount is greater than max amount")
	}
	return nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter, loc *time.Location) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", f.ToDate.UTC())
	}
	if f.Before != nil {
		q = q.Where("date < ?", f.Before.UTC())
	}
	if f.Year != nil {
		var start, end time.Time
		if f.Month != nil {
			start, end = monthRange(*f.Year, *f.Month, loc)
		} else {
			start, end = yearRange(*f.Year, loc)
		}
		q = q.Where("date >= ? AND date < ?", start, end)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.AccountID != nil {
		q = q.Where("(account_id = ? OR to_account_id = ?)", *f.AccountID, *f.AccountID)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// validateTransaction enforces the rules shared by create and update.
func validateTransaction(tx *gorm.DB, t *models.Transaction) error {
	if !t.Amount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if !t.Type.Valid() {
		return apperrors.ErrInvalidTransactionType
	}
	if t.AccountID == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account is required")
	}
	if err := requireAccount(tx, t.AccountID, "account not found"); err != nil {
		return err
	}

	if t.Type == models.TransactionTypeTransfer {
		if t.CategoryID != nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "transfers do not have a category")
		}
		if t.ToAccountID == nil || *t.ToAccountID == 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "destination account is required for transfers")
		}
		if *t.ToAccountID == t.AccountID {
			return apperrors.ErrSameAccountTransfer
		}
		return requireAccount(tx, *t.ToAccountID, "destination account not found")
	}

	if t.ToAccountID != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "only transfers have a destination account")
	}
	if t.CategoryID == nil || *t.CategoryID == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required for income and expense")
	}
	category, err := findCategory(tx, *t.CategoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCategoryNotFound) {
			return apperrors.WithMessage(apperrors.ErrInvalidReference, "category not found")
		}
		return err
	}
	want, _ := t.Type.CategoryType()
	if category.Type != want {
		return apperrors.ErrCategoryTypeMismatch
	}
	return nil
}

func requireAccount(tx *gorm.DB, accountID uint, message string) error {
	if _, err := findAccount(tx, accountID); err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			return apperrors.WithMessage(apperrors.ErrInvalidReference, message)
		}
		return err
	}
	return nil
}

// affectedAccounts lists the accounts whose balance may depend on t.
func affectedAccounts(t *models.Transaction) []uint {
	ids := []uint{t.AccountID}
	if t.ToAccountID != nil {
		ids = append(ids, *t.ToAccountID)
	}
	return ids
}

// attachCategoryNames resolves CategoryName for each transaction. Transfers
// and transactions whose category was deleted read as "Unknown".
func (s *transactionService) attachCategoryNames(db *gorm.DB, transactions []*models.Transaction) error {
	names, err := categoryNames(db, transactions)
	if err != nil {
		return err
	}
	for _, t := range transactions {
		t.CategoryName = categoryNameFor(names, t)
	}
	return nil
}

func categoryNames(db *gorm.DB, transactions []*models.Transaction) (map[uint]string, error) {
	var ids []uint
	for _, t := range transactions {
		if t.CategoryID != nil {
			ids = append(ids, *t.CategoryID)
		}
	}
	names := make(map[uint]string)
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return names, nil
	}

	var categories []models.Category
	if err := db.Select("id", "name").Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

func categoryNameFor(names map[uint]string, t *models.Transaction) string {
	if t.CategoryID == nil {
		return models.UnknownCategoryName
	}
	if name, ok := names[*t.CategoryID]; ok {
		return name
	}
	return models.UnknownCategoryName
}
