package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/triagehq/blackbox/internal/config"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the rolling diagnostics log",
	Long:  `Remove the rolling diagnostics log. Clearing an absent log succeeds.`,
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := os.Remove(cfg.Log.Path); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(cmd.OutOrStdout(), "Log already clear")
			return nil
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", cfg.Log.Path)
	return nil
}
