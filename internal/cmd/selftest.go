package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/triagehq/blackbox/internal/config"
	"github.com/triagehq/blackbox/internal/console"
	"github.com/triagehq/blackbox/internal/diaglog"
	"github.com/triagehq/blackbox/internal/errors"
	"github.com/triagehq/blackbox/internal/logstore"
)

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Exercise the capture pipeline end to end",
	Long: `Initialize the rolling log store, attach the console tap, and write a
few diagnostic lines through the facade. Useful for verifying that the
configured log path is writable and that interception works on this
platform.`,
	RunE: runSelftest,
}

func init() {
	rootCmd.AddCommand(selftestCmd)
}

func runSelftest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store := logstore.New(
		logstore.WithMaxSize(cfg.Log.MaxSize()),
		logstore.WithTrimBatch(cfg.Log.TrimBatch()),
		logstore.WithDiskFloor(cfg.Log.DiskFloor()),
		logstore.WithAppVersion(Version),
	)
	if err := store.Initialize(cfg.Log.Path); err != nil {
		return err
	}
	defer store.Close()

	if err := diaglog.Init(store); err != nil {
		return err
	}
	defer diaglog.Reset()

	diaglog.Event("selftest started")
	diaglog.Message("log path %s, cap %d KB", cfg.Log.Path, cfg.Log.MaxSizeKB)

	if cfg.Console.Tap {
		tap := console.New(diaglog.System)
		switch err := tap.Start(); {
		case err == nil:
			fmt.Println("console tap attached; this line should land in the log")
			if err := tap.Close(); err != nil {
				return err
			}
		case errors.Is(err, errors.ErrTapDisabled):
			fmt.Fprintf(os.Stderr, "Warning: console tap disabled in this environment\n")
		default:
			return err
		}
	}

	diaglog.Event("selftest finished")

	if dropped := store.Dropped(); dropped > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d lines dropped for low disk space\n", dropped)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Selftest complete: %s now %d bytes\n", store.Path(), store.CurrentSize())
	return nil
}
