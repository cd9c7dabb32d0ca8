package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-jewelry-pos/internal/app"
	"go-jewelry-pos/internal/config"
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/service"
	"go-jewelry-pos/pkg/logger"
)

// cliActor is recorded as the author of CLI changes.
var cliActor = service.Actor{ID: "posctl", Name: "posctl"}

type rootOptions struct {
	envFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "posctl",
		Short:        "Maintenance commands for the jewelry POS",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env", "", "path to a .env file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "development logging")

	cmd.AddCommand(
		newSnapshotCmd(opts),
		newExportCmd(opts),
		newArchiveCmd(opts),
		newPurgeCmd(opts),
		newResetPasswordCmd(opts),
	)
	return cmd
}

// withApp loads config, builds the application and runs fn with it.
func withApp(ctx context.Context, opts *rootOptions, fn func(context.Context, *app.App) error) error {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}
	log, err := logger.New(opts.verbose || cfg.Logger.Development)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	if err := fn(ctx, a); err != nil {
		log.Error("command failed", zap.Error(err))
		return err
	}
	return nil
}

// parseDayFlag parses a YYYY-MM-DD flag, defaulting to def when empty.
func parseDayFlag(name, value string, def time.Time) (time.Time, error) {
	if value == "" {
		return def, nil
	}
	day, err := model.ParseDay(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be YYYY-MM-DD: %w", name, err)
	}
	return day, nil
}
