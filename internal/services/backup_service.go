package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pennywise/internal/events"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
)

// importBatchSize bounds the rows per INSERT during a restore.
const importBatchSize = 200

// Backup is the JSON document written by ExportJSON and read by ImportJSON.
type Backup struct {
	Categories   []BackupCategory    `json:"categories"`
	Transactions []BackupTransaction `json:"transactions"`
	ExportDate   string              `json:"exportDate"`
}

// BackupCategory is a category as stored in a backup file.
type BackupCategory struct {
	ID        uint                `json:"id"`
	Name      string              `json:"name"`
	Type      models.CategoryType `json:"type"`
	Color     string              `json:"color,omitempty"`
	Icon      string              `json:"icon,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
}

// BackupTransaction is a transaction as stored in a backup file. Amount is a
// plain JSON number.
type BackupTransaction struct {
	ID          uint                   `json:"id"`
	Amount      json.Number            `json:"amount"`
	Type        models.TransactionType `json:"type"`
	CategoryID  *uint                  `json:"categoryId,omitempty"`
	AccountID   *uint                  `json:"accountId,omitempty"`
	ToAccountID *uint                  `json:"toAccountId,omitempty"`
	Date        time.Time              `json:"date"`
	Notes       string                 `json:"notes,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// backupService handles backup, restore, export and reset.
type backupService struct {
	db       *gorm.DB
	journal  *journal
	accounts AccountServicer
	loc      *time.Location
}

// NewBackupService creates a new BackupServicer.
func NewBackupService(db *gorm.DB, changes ChangeServicer, broker *events.Broker, accounts AccountServicer, loc *time.Location) BackupServicer {
	if loc == nil {
		loc = time.UTC
	}
	return &backupService{
		db:       db,
		journal:  &journal{db: db, changes: changes, broker: broker},
		accounts: accounts,
		loc:      loc,
	}
}

// ExportJSON writes every category and transaction as an indented Backup.
func (s *backupService) ExportJSON(w io.Writer) error {
	var categories []models.Category
	if err := s.db.Order("id ASC").Find(&categories).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err)
	}
	var transactions []models.Transaction
	if err := s.db.Order("id ASC").Find(&transactions).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err)
	}

	backup := Backup{
		Categories:   make([]BackupCategory, 0, len(categories)),
		Transactions: make([]BackupTransaction, 0, len(transactions)),
		ExportDate:   time.Now().UTC().Format(time.RFC3339),
	}
	for _, c := range categories {
		backup.Categories = append(backup.Categories, BackupCategory{
			ID:        c.ID,
			Name:      c.Name,
			Type:      c.Type,
			Color:     c.Color,
			Icon:      string(c.Icon),
			CreatedAt: c.CreatedAt.UTC(),
		})
	}
	for _, t := range transactions {
		accountID := t.AccountID
		backup.Transactions = append(backup.Transactions, BackupTransaction{
			ID:          t.ID,
			Amount:      json.Number(t.Amount.String()),
			Type:        t.Type,
			CategoryID:  t.CategoryID,
			AccountID:   &accountID,
			ToAccountID: t.ToAccountID,
			Date:        t.Date.UTC(),
			Notes:       t.Notes,
			CreatedAt:   t.CreatedAt.UTC(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(backup); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ImportJSON replaces all categories and transactions with the contents of a
// backup. The file is fully validated before anything is cleared. Category
// keys are reassigned and transaction references are remapped to them;
// account references are kept as written. Budgets are cleared with the
// categories they belonged to.
func (s *backupService) ImportJSON(r io.Reader) (*ImportResult, error) {
	var raw struct {
		Categories   *[]BackupCategory    `json:"categories"`
		Transactions *[]BackupTransaction `json:"transactions"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrImportFormat, "backup file is not valid JSON: "+err.Error())
	}
	if raw.Categories == nil || raw.Transactions == nil {
		return nil, apperrors.WithMessage(apperrors.ErrImportFormat, "backup file must contain categories and transactions")
	}

	categories, oldIDs, err := prepareCategories(*raw.Categories)
	if err != nil {
		return nil, err
	}
	transactions, oldCategoryRefs, err := prepareTransactions(*raw.Transactions)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	err = s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		if err := clearLedger(tx, cs); err != nil {
			return err
		}

		idMap := make(map[uint]uint, len(categories))
		if len(categories) > 0 {
			if err := tx.CreateInBatches(&categories, importBatchSize).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrStorage, err)
			}
			for i := range categories {
				if oldIDs[i] != 0 {
					idMap[oldIDs[i]] = categories[i].ID
				}
			}
		}

		for i := range transactions {
			if old := oldCategoryRefs[i]; old != nil {
				if id, ok := idMap[*old]; ok {
					transactions[i].CategoryID = &id
				}
			}
		}
		if len(transactions) > 0 {
			if err := tx.CreateInBatches(&transactions, importBatchSize).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrStorage, err)
			}
		}

		result.Categories = len(categories)
		result.Transactions = len(transactions)
		if err := cs.add(models.TableCategories, models.ChangeOpReset, 0, result); err != nil {
			return err
		}
		if err := cs.add(models.TableTransactions, models.ChangeOpReset, 0, result); err != nil {
			return err
		}

		ids, err := allAccountIDs(tx)
		if err != nil {
			return err
		}
		return cs.recompute(s.accounts, ids...)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func prepareCategories(in []BackupCategory) ([]models.Category, []uint, error) {
	categories := make([]models.Category, 0, len(in))
	oldIDs := make([]uint, 0, len(in))
	for i, c := range in {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, nil, importErrorf("category %d has no name", i)
		}
		if !c.Type.Valid() {
			return nil, nil, importErrorf("category %q has invalid type %q", name, c.Type)
		}
		category := models.Category{Name: name, Type: c.Type}
		if models.ValidColor(c.Color) {
			category.Color = c.Color
		}
		if icon := models.IconTag(c.Icon); icon.Valid() {
			category.Icon = icon
		}
		category.CreatedAt = orNow(c.CreatedAt)
		categories = append(categories, category)
		oldIDs = append(oldIDs, c.ID)
	}
	return categories, oldIDs, nil
}

func prepareTransactions(in []BackupTransaction) ([]models.Transaction, []*uint, error) {
	transactions := make([]models.Transaction, 0, len(in))
	oldCategoryRefs := make([]*uint, 0, len(in))
	for i, t := range in {
		amount, err := decimal.NewFromString(t.Amount.String())
		if err != nil || !amount.IsPositive() {
			return nil, nil, importErrorf("transaction %d has invalid amount %q", i, t.Amount)
		}
		if !t.Type.Valid() {
			return nil, nil, importErrorf("transaction %d has invalid type %q", i, t.Type)
		}
		if t.AccountID == nil || *t.AccountID == 0 {
			return nil, nil, importErrorf("transaction %d has no account", i)
		}
		if t.Date.IsZero() {
			return nil, nil, importErrorf("transaction %d has no date", i)
		}

		transaction := models.Transaction{
			Amount:    amount,
			Type:      t.Type,
			AccountID: *t.AccountID,
			Date:      t.Date.UTC(),
			Notes:     t.Notes,
		}
		transaction.CreatedAt = orNow(t.CreatedAt)

		var categoryRef *uint
		if t.Type == models.TransactionTypeTransfer {
			if t.ToAccountID == nil || *t.ToAccountID == 0 || *t.ToAccountID == *t.AccountID {
				return nil, nil, importErrorf("transfer %d needs a distinct destination account", i)
			}
			to := *t.ToAccountID
			transaction.ToAccountID = &to
		} else {
			categoryRef = t.CategoryID
		}
		transactions = append(transactions, transaction)
		oldCategoryRefs = append(oldCategoryRefs, categoryRef)
	}
	return transactions, oldCategoryRefs, nil
}

func importErrorf(format string, args ...any) error {
	return apperrors.WithMessage(apperrors.ErrImportFormat, fmt.Sprintf(format, args...))
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// clearLedger deletes every transaction, budget and category.
func clearLedger(tx *gorm.DB, cs *changeSet) error {
	for _, step := range []struct {
		table string
		model any
	}{
		{models.TableTransactions, &models.Transaction{}},
		{models.TableBudgets, &models.Budget{}},
		{models.TableCategories, &models.Category{}},
	} {
		res := tx.Where("1 = 1").Delete(step.model)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrStorage, res.Error)
		}
		if err := cs.add(step.table, models.ChangeOpReset, 0, map[string]int64{"deleted": res.RowsAffected}); err != nil {
			return err
		}
	}
	return nil
}

// ExportCSV writes the matching transactions as CSV in date order and returns
// the number of rows written.
func (s *backupService) ExportCSV(w io.Writer, filter TransactionFilter) (int, error) {
	if err := validateFilter(filter); err != nil {
		return 0, err
	}

	var transactions []models.Transaction
	if err := applyTransactionFilters(s.db.Model(&models.Transaction{}), filter, s.loc).
		Order("date ASC, id ASC").
		Find(&transactions).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	if len(transactions) == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "no transactions to export")
	}

	ptrs := make([]*models.Transaction, len(transactions))
	for i := range transactions {
		ptrs[i] = &transactions[i]
	}
	names, err := categoryNames(s.db, ptrs)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Type", "Category", "Amount", "Notes"}); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, t := range ptrs {
		row := []string{
			t.Date.UTC().Format("2006-01-02"),
			capitalize(string(t.Type)),
			categoryNameFor(names, t),
			t.Amount.StringFixed(2),
			t.Notes,
		}
		if err := cw.Write(row); err != nil {
			return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return len(transactions), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Reset deletes all transactions, budgets and categories, reseeds the default
// categories and zeroes the account balances. Accounts and cards are kept.
func (s *backupService) Reset() error {
	return s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		if err := clearLedger(tx, cs); err != nil {
			return err
		}
		if err := seedDefaultCategories(tx, cs); err != nil {
			return err
		}
		ids, err := allAccountIDs(tx)
		if err != nil {
			return err
		}
		return cs.recompute(s.accounts, ids...)
	})
}
