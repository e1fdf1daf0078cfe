// Command ledgerctl runs ledger maintenance against the configured database
// without starting the HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pennywise/internal/config"
	"pennywise/internal/database"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/logger"
	"pennywise/internal/services"
)

// openFunc opens the ledger for one command. The returned func releases it.
type openFunc func(cmd *cobra.Command) (*services.Ledger, func(), error)

type app struct {
	cfgFile string
	open    openFunc
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(nil).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(describeError(err)))
		os.Exit(exitCode(err))
	}
}

// newRootCmd builds the command tree. A nil open uses the configured database.
func newRootCmd(open openFunc) *cobra.Command {
	a := &app{open: open}
	if a.open == nil {
		a.open = a.openConfigured
	}

	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Maintain a pennywise ledger",
		Long:          `ledgerctl seeds, recomputes, exports, imports and resets a pennywise ledger directly against its database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./pennywise.yaml)")

	root.AddCommand(a.seedCmd())
	root.AddCommand(a.recomputeCmd())
	root.AddCommand(a.exportCmd())
	root.AddCommand(a.importCmd())
	root.AddCommand(a.resetCmd())
	root.AddCommand(a.accountsCmd())
	root.AddCommand(a.categoriesCmd())
	root.AddCommand(a.summaryCmd())

	return root
}

func (a *app) openConfigured(_ *cobra.Command) (*services.Ledger, func(), error) {
	cfg, err := config.LoadFile(a.cfgFile)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(cfg.Env, cfg.LogLevel)

	manager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	if err := manager.RunMigrations(); err != nil {
		manager.Close()
		return nil, nil, err
	}

	ledger := services.NewLedger(manager.DB(), nil, services.Options{
		TransferMode: services.TransferMode(cfg.TransferMode),
		Location:     cfg.Location,
	})
	cleanup := func() {
		if err := manager.Close(); err != nil {
			logger.Get().Warnf("database close error: %v", err)
		}
		logger.Sync()
	}
	return ledger, cleanup, nil
}

// withLedger opens the ledger, runs fn and releases the ledger.
func (a *app) withLedger(cmd *cobra.Command, fn func(*services.Ledger) error) error {
	ledger, cleanup, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(ledger)
}

// describeError prefixes err with its failure class.
func describeError(err error) string {
	switch apperrors.Kind(err) {
	case apperrors.KindValidation:
		return "invalid input: " + err.Error()
	case apperrors.KindNotFound:
		return "not found: " + err.Error()
	case apperrors.KindImportFormat:
		return "bad backup: " + err.Error()
	default:
		return "error: " + err.Error()
	}
}

func exitCode(err error) int {
	switch apperrors.Kind(err) {
	case apperrors.KindValidation, apperrors.KindImportFormat:
		return 2
	case apperrors.KindNotFound:
		return 3
	default:
		return 1
	}
}
