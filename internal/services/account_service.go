package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pennywise/internal/events"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// initialBalanceNotes is written on synthesized opening-balance transactions.
const initialBalanceNotes = "Initial balance"

// accountService handles account-related business logic.
type accountService struct {
	db         *gorm.DB
	journal    *journal
	categories CategoryServicer
	mode       TransferMode
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB, changes ChangeServicer, broker *events.Broker, categories CategoryServicer, mode TransferMode) AccountServicer {
	if mode == "" {
		mode = TransferModeIgnore
	}
	return &accountService{
		db:         db,
		journal:    &journal{db: db, changes: changes, broker: broker},
		categories: categories,
		mode:       mode,
	}
}

// CreateAccount creates a new account. A non-zero initial balance is recorded
// as an income transaction in the reserved "Initial Balance" category, so the
// balance stays derivable from transactions alone. Everything commits together.
func (s *accountService) CreateAccount(input AccountInput) (*models.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if err := validateAppearance(input.Color, input.Icon); err != nil {
		return nil, err
	}
	if input.InitialBalance.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "initial balance cannot be negative")
	}

	account := &models.Account{
		Name:    name,
		Color:   input.Color,
		Icon:    input.Icon,
		Balance: decimal.Zero,
	}

	err := s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		if err := tx.Create(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		if err := cs.add(models.TableAccounts, models.ChangeOpCreate, account.ID, account); err != nil {
			return err
		}

		if input.InitialBalance.IsZero() {
			return nil
		}

		category, created, err := s.categories.InitialBalanceCategory(tx)
		if err != nil {
			return err
		}
		if created {
			if err := cs.add(models.TableCategories, models.ChangeOpCreate, category.ID, category); err != nil {
				return err
			}
		}

		transaction := &models.Transaction{
			Amount:     input.InitialBalance,
			Type:       models.TransactionTypeIncome,
			CategoryID: &category.ID,
			AccountID:  account.ID,
			Date:       time.Now().UTC(),
			Notes:      initialBalanceNotes,
		}
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		if err := cs.add(models.TableTransactions, models.ChangeOpCreate, transaction.ID, transaction); err != nil {
			return err
		}

		if err := cs.recompute(s, account.ID); err != nil {
			return err
		}
		// Reload to get the derived balance
		if err := tx.First(account, account.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts retrieves a paginated list of accounts in creation order.
func (s *accountService) ListAccounts(page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Account{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccount retrieves an account by ID
func (s *accountService) GetAccount(accountID uint) (*models.Account, error) {
	return findAccount(s.db, accountID)
}

func findAccount(db *gorm.DB, accountID uint) (*models.Account, error) {
	var account models.Account
	if err := db.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return &account, nil
}

// UpdateAccount updates the name, color or icon of an account.
func (s *accountService) UpdateAccount(accountID uint, update AccountUpdate) (*models.Account, error) {
	updates := make(map[string]interface{})
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
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

	var account *models.Account
	err := s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		var err error
		account, err = findAccount(tx, accountID)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(account).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		// Reload to get fresh data
		if err := tx.First(account, account.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		return cs.add(models.TableAccounts, models.ChangeOpUpdate, account.ID, updates)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteAccount removes an account. Its transactions are kept so historical
// totals do not change.
func (s *accountService) DeleteAccount(accountID uint) error {
	return s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		account, err := findAccount(tx, accountID)
		if err != nil {
			return err
		}
		if err := tx.Delete(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		return cs.add(models.TableAccounts, models.ChangeOpDelete, account.ID, nil)
	})
}

// RecomputeBalances rewrites every account balance from its transactions.
func (s *accountService) RecomputeBalances() error {
	return s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		ids, err := allAccountIDs(tx)
		if err != nil {
			return err
		}
		return cs.recompute(s, ids...)
	})
}

func allAccountIDs(tx *gorm.DB) ([]uint, error) {
	var ids []uint
	if err := tx.Model(&models.Account{}).Pluck("id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return ids, nil
}

// RecomputeAccountBalances recomputes the given accounts using tx and returns
// the IDs whose stored balance changed. Unknown IDs are skipped.
func (s *accountService) RecomputeAccountBalances(tx *gorm.DB, accountIDs ...uint) ([]uint, error) {
	ids := uniqueIDs(accountIDs)
	if len(ids) == 0 {
		return nil, nil
	}

	var accounts []models.Account
	if err := tx.Where("id IN ?", ids).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	if len(accounts) == 0 {
		return nil, nil
	}

	q := tx.Model(&models.Transaction{}).
		Select("id", "amount", "type", "account_id", "to_account_id").
		Where("account_id IN ?", ids)
	if s.mode == TransferModeMove {
		q = q.Or("to_account_id IN ?", ids)
	}
	var transactions []models.Transaction
	if err := q.Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	balances := ComputeBalances(transactions, s.mode)

	var changed []uint
	for _, account := range accounts {
		balance := balances[account.ID]
		if account.Balance.Equal(balance) {
			continue
		}
		if err := tx.Model(&models.Account{}).Where("id = ?", account.ID).Update("balance", balance).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, err)
		}
		changed = append(changed, account.ID)
	}
	return changed, nil
}

// ComputeBalances returns the signed transaction sum per account: income adds
// and expense subtracts. Transfers count only in TransferModeMove, where they
// debit AccountID and credit ToAccountID. Accounts without transactions are
// absent from the map.
func ComputeBalances(transactions []models.Transaction, mode TransferMode) map[uint]decimal.Decimal {
	balances := make(map[uint]decimal.Decimal)
	add := func(id uint, amount decimal.Decimal) {
		balances[id] = balances[id].Add(amount)
	}
	for _, t := range transactions {
		switch t.Type {
		case models.TransactionTypeIncome:
			add(t.AccountID, t.Amount)
		case models.TransactionTypeExpense:
			add(t.AccountID, t.Amount.Neg())
		case models.TransactionTypeTransfer:
			if mode != TransferModeMove || t.ToAccountID == nil {
				continue
			}
			add(t.AccountID, t.Amount.Neg())
			add(*t.ToAccountID, t.Amount)
		}
	}
	return balances
}

// recompute refreshes the balances of the given accounts and journals the
// ones that changed.
func (c *changeSet) recompute(accounts AccountServicer, accountIDs ...uint) error {
	changed, err := accounts.RecomputeAccountBalances(c.tx, accountIDs...)
	if err != nil {
		return err
	}
	for _, id := range changed {
		if err := c.add(models.TableAccounts, models.ChangeOpUpdate, id, nil); err != nil {
			return err
		}
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
