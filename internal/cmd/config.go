package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/triagehq/blackbox/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the effective configuration after merging defaults, the config
file, and BLACKBOX_* environment variables.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# config file: (none, using defaults)")
	}
	fmt.Fprintf(out, "log.path: %s\n", cfg.Log.Path)
	fmt.Fprintf(out, "log.max_size_kb: %d\n", cfg.Log.MaxSizeKB)
	fmt.Fprintf(out, "log.trim_batch_kb: %d\n", cfg.Log.TrimBatchKB)
	fmt.Fprintf(out, "log.disk_floor_mb: %d\n", cfg.Log.DiskFloorMB)
	fmt.Fprintf(out, "report.output_dir: %s\n", cfg.Report.OutputDir)
	fmt.Fprintf(out, "report.redact: %v\n", cfg.Report.Redact)
	fmt.Fprintf(out, "console.tap: %t\n", cfg.Console.Tap)
	return nil
}
