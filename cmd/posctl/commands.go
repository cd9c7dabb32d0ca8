package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"go-jewelry-pos/internal/app"
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/service"
)

func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Persist the ending stock of a day (default today)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app.App) error {
				today := a.Services.Stock.Today()
				day, err := parseDayFlag("date", date, today)
				if err != nil {
					return err
				}
				if day.After(today) {
					return service.ErrFutureDate
				}
				snapshots, err := a.Services.Stock.GenerateSnapshot(ctx, day)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d snapshots for %s\n", len(snapshots), day.Format(model.DateLayout))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to snapshot (YYYY-MM-DD)")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var from, to, out, format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write sales, movements and buybacks of a date range to a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				return errors.New("--out is required")
			}
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(out), ".")
			}
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app.App) error {
				today := a.Services.Stock.Today()
				start, err := parseDayFlag("from", from, today)
				if err != nil {
					return err
				}
				end, err := parseDayFlag("to", to, today)
				if err != nil {
					return err
				}

				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := a.Services.Maintenance.Export(ctx, f, start, end, service.ExportFormat(strings.ToLower(format))); err != nil {
					f.Close()
					os.Remove(out)
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %s..%s to %s\n", start.Format(model.DateLayout), end.Format(model.DateLayout), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&out, "out", "", "output file")
	cmd.Flags().StringVar(&format, "format", "", "xlsx or csv (default from the file extension)")
	return cmd
}

func newPurgeCmd(opts *rootOptions) *cobra.Command {
	var before string
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete sales, movements and buybacks dated before a day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if before == "" {
				return errors.New("--before is required")
			}
			cutoff, err := model.ParseDay(before)
			if err != nil {
				return fmt.Errorf("--before must be YYYY-MM-DD: %w", err)
			}
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app.App) error {
				result, err := a.Services.Maintenance.Purge(ctx, cutoff, cliActor)
				if err != nil {
					return err
				}
				d := result.Deleted
				fmt.Fprintf(cmd.OutOrStdout(),
					"purged before %s: %d sales, %d sale items, %d payments, %d movements, %d buybacks, %d snapshots (base snapshot %s)\n",
					result.Before, d.Sales, d.SaleItems, d.SalePayments, d.Movements, d.Buybacks, d.Snapshots, result.SnapshotDate)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "cut-off day (YYYY-MM-DD), rows dated earlier are deleted")
	return cmd
}

func newArchiveCmd(opts *rootOptions) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Copy a date range to the configured archive sinks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app.App) error {
				today := a.Services.Stock.Today()
				start, err := parseDayFlag("from", from, today)
				if err != nil {
					return err
				}
				end, err := parseDayFlag("to", to, today)
				if err != nil {
					return err
				}
				result, err := a.Services.Maintenance.Archive(ctx, start, end)
				for sink, n := range result {
					fmt.Fprintf(cmd.OutOrStdout(), "archived %d records to %s\n", n, sink)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD, default today)")
	return cmd
}

func newResetPasswordCmd(opts *rootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a user's password and end their sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app.App) error {
				if err := a.Services.Auth.ForcePassword(ctx, email, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password for %s has been reset\n", email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	return cmd
}
