package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/triagehq/blackbox/internal/report"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the environment metadata chapter",
	Long:  `Print the environment metadata that would appear in a compiled report.`,
	RunE:  runEnv,
}

func init() {
	rootCmd.AddCommand(envCmd)
}

func runEnv(cmd *cobra.Command, args []string) error {
	ch, err := report.NewEnvReporter().ProduceChapter()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), ch.Body)
	return nil
}
