package services

import (
	"time"

	"gorm.io/gorm"

	"pennywise/internal/events"
)

// Options configures a Ledger.
type Options struct {
	TransferMode TransferMode
	// Location defines calendar months and days for filters and analysis.
	Location *time.Location
}

// Ledger bundles the servicers that share one database and one change
// broker. Handlers and the CLI receive a *Ledger instead of reaching for
// global state.
type Ledger struct {
	Categories   CategoryServicer
	Accounts     AccountServicer
	Transactions TransactionServicer
	Budgets      BudgetServicer
	Cards        CardServicer
	Backup       BackupServicer
	Analysis     AnalysisServicer
	Changes      ChangeServicer
	Broker       *events.Broker
	// Location is the calendar zone the servicers use for months and days.
	Location *time.Location
}

// NewLedger wires the servicers together. broker may be nil when nobody
// needs change notifications.
func NewLedger(db *gorm.DB, broker *events.Broker, opts Options) *Ledger {
	if opts.TransferMode == "" {
		opts.TransferMode = TransferModeIgnore
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	changes := NewChangeService(db)
	categories := NewCategoryService(db, changes, broker)
	accounts := NewAccountService(db, changes, broker, categories, opts.TransferMode)

	return &Ledger{
		Categories:   categories,
		Accounts:     accounts,
		Transactions: NewTransactionService(db, changes, broker, accounts, opts.Location),
		Budgets:      NewBudgetService(db, changes, broker, opts.Location),
		Cards:        NewCardService(db, changes, broker),
		Backup:       NewBackupService(db, changes, broker, accounts, opts.Location),
		Analysis:     NewAnalysisService(db, opts.Location),
		Changes:      changes,
		Broker:       broker,
		Location:     opts.Location,
	}
}
