package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the default categories into an empty ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(l *services.Ledger) error {
				seeded, err := l.Categories.EnsureDefaultCategories()
				if err != nil {
					return err
				}
				if !seeded {
					fmt.Fprintln(cmd.OutOrStdout(), subtleStyle.Render("Categories already present, nothing seeded."))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Seeded %d default categories", len(services.DefaultCategories()))))
				return nil
			})
		},
	}
}

func (a *app) recomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild every account balance from its transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(l *services.Ledger) error {
				if err := l.Accounts.RecomputeBalances(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Balances recomputed"))
				return nil
			})
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger as a JSON backup or a CSV of transactions",
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")

	cmd.AddCommand(&cobra.Command{
		Use:   "json",
		Short: "Write a JSON backup of categories and transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(l *services.Ledger) error {
				return writeOutput(cmd, output, func(w io.Writer) error {
					return l.Backup.ExportJSON(w)
				})
			})
		},
	})

	var month, year int
	csvCmd := &cobra.Command{
		Use:   "csv",
		Short: "Write transactions as CSV, optionally limited to one month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := monthFilter(cmd, month, year)
			if err != nil {
				return err
			}
			return a.withLedger(cmd, func(l *services.Ledger) error {
				return writeOutput(cmd, output, func(w io.Writer) error {
					n, err := l.Backup.ExportCSV(w, filter)
					if err == nil && output != "" {
						fmt.Fprintln(cmd.ErrOrStderr(), successStyle.Render(fmt.Sprintf("✓ Exported %d transactions to %s", n, output)))
					}
					return err
				})
			})
		},
	}
	csvCmd.Flags().IntVar(&month, "month", 0, "calendar month 1-12 (requires --year)")
	csvCmd.Flags().IntVar(&year, "year", 0, "calendar year")
	cmd.AddCommand(csvCmd)

	return cmd
}

func (a *app) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Restore the ledger from a backup",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "json <file>",
		Short: "Replace categories and transactions with a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open backup: %w", err)
			}
			defer f.Close()

			return a.withLedger(cmd, func(l *services.Ledger) error {
				result, err := l.Backup.ImportJSON(f)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf(
					"✓ Imported %d categories and %d transactions", result.Categories, result.Transactions)))
				return nil
			})
		},
	})
	return cmd
}

func (a *app) resetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all transactions, budgets and categories and reseed the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "reset deletes every transaction; pass --yes to confirm")
			}
			return a.withLedger(cmd, func(l *services.Ledger) error {
				if err := l.Backup.Reset(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Ledger reset"))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	return cmd
}

func (a *app) accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts with their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(l *services.Ledger) error {
				page, err := l.Accounts.ListAccounts(pagination.All)
				if err != nil {
					return err
				}
				if len(page.Data) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), subtleStyle.Render("No accounts yet."))
					return nil
				}

				t := newTable(cmd.OutOrStdout(), "ID", "Name", "Icon", "Balance")
				for _, acc := range page.Data {
					t.row(acc.ID, acc.Name, orDash(string(acc.Icon)), money(acc.Balance))
				}
				return t.flush()
			})
		},
	})
	return cmd
}

func (a *app) categoriesCmd() *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Inspect categories",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(l *services.Ledger) error {
				var (
					page *pagination.PageResponse[models.Category]
					err  error
				)
				if typ != "" {
					page, err = l.Categories.ListCategoriesByType(models.CategoryType(typ), pagination.All)
				} else {
					page, err = l.Categories.ListCategories(pagination.All)
				}
				if err != nil {
					return err
				}
				if len(page.Data) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), subtleStyle.Render("No categories found. Use 'ledgerctl seed' to add the defaults."))
					return nil
				}

				t := newTable(cmd.OutOrStdout(), "ID", "Name", "Type", "Color", "Icon")
				for _, cat := range page.Data {
					t.row(cat.ID, cat.Name, cat.Type, orDash(cat.Color), orDash(string(cat.Icon)))
				}
				return t.flush()
			})
		},
	}
	list.Flags().StringVar(&typ, "type", "", "only list income or expense categories")
	cmd.AddCommand(list)
	return cmd
}

func (a *app) summaryCmd() *cobra.Command {
	var month, year int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income, expense and net for one month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			if !cmd.Flags().Changed("month") {
				month = int(now.Month())
			}
			if !cmd.Flags().Changed("year") {
				year = now.Year()
			}
			if month < 1 || month > 12 {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "--month must be between 1 and 12")
			}

			return a.withLedger(cmd, func(l *services.Ledger) error {
				s, err := l.Analysis.MonthlySummary(month-1, year)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s %d", time.Month(month), year)))
				t := newTable(out, "Income", "Expense", "Transfers", "Net", "Transactions")
				t.row(money(s.Income), money(s.Expense.Neg()), s.Transfer.StringFixed(2), money(s.Net), s.Count)
				return t.flush()
			})
		},
	}
	cmd.Flags().IntVar(&month, "month", 0, "calendar month 1-12 (default: current)")
	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default: current)")
	return cmd
}

// monthFilter turns --month/--year into a transaction filter. Both unset
// means no date filter.
func monthFilter(cmd *cobra.Command, month, year int) (services.TransactionFilter, error) {
	var filter services.TransactionFilter
	monthSet, yearSet := cmd.Flags().Changed("month"), cmd.Flags().Changed("year")
	switch {
	case !monthSet && !yearSet:
		return filter, nil
	case monthSet && !yearSet:
		return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "--month requires --year")
	}
	filter.Year = &year
	if monthSet {
		if month < 1 || month > 12 {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "--month must be between 1 and 12")
		}
		m := month - 1
		filter.Month = &m
	}
	return filter, nil
}

// writeOutput runs fn against the -o file, or stdout when none is given.
func writeOutput(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
