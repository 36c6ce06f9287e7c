package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"dbxbridge/cmd/dbxbridge/globals"
	"dbxbridge/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	tel        telemetry.Telemetry
	current    *globals.Value
)

var rootCmd = &cobra.Command{
	Use:           "dbxbridge",
	Short:         "dbxbridge lists, fetches, uploads, syncs and serves files from a Dropbox account through its web interface.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)
		ctx := cmd.Context()

		var err error
		tel, err = telemetry.SetupFromEnv(ctx, "dbxbridge")
		if errors.Is(err, os.ErrNotExist) {
			slog.DebugContext(ctx, "telemetry.json5 not found, tracing disabled")
		} else if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		cfg, err := globals.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		current = &globals.Value{
			Config:  cfg,
			Verbose: verbose,
		}
		cmd.SetContext(globals.Set(ctx, current))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json5", "Path to the configuration file.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging and request dumps.")
}

// finish releases what PersistentPreRunE acquired, it runs whether or not
// the command failed.
func finish() {
	if current != nil {
		err := current.Close()
		if err != nil {
			slog.Warn("failed to close cache", "err", err)
		}
		current = nil
	}
	err := tel.Shutdown(context.Background())
	if err != nil {
		slog.Warn("failed to shutdown telemetry", "err", err)
	}
	tel = telemetry.Telemetry{}
}

func execute(ctx context.Context) error {
	defer finish()
	return rootCmd.ExecuteContext(ctx)
}

func ExecuteContext(ctx context.Context) {
	if err := execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
