package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/triagehq/blackbox/internal/config"
	"github.com/triagehq/blackbox/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compile a diagnostics report",
	Long: `Compile the rolling log, environment metadata, and preference state
into a single HTML report and save it.

Examples:
  # Save Diagnostics-Report.html to the configured output directory
  blackbox report

  # Save somewhere specific, redacting bearer tokens
  blackbox report --out /tmp --redact 'Bearer \S+'`,
	RunE: runReport,
}

var (
	reportOut    string
	reportRedact []string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Output directory (default: report.output_dir)")
	reportCmd.Flags().StringArrayVar(&reportRedact, "redact", nil, "Additional redaction pattern (regex, repeatable)")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	compiler := report.NewCompiler(
		report.NewFileLogReporter(cfg.Log.Path),
		report.NewEnvReporter(),
		report.NewPrefsReporter(viper.GetViper()),
	)

	patterns := append(append([]string{}, cfg.Report.Redact...), reportRedact...)
	if len(patterns) > 0 {
		redact, err := report.NewRedactFilter(patterns...)
		if err != nil {
			return err
		}
		compiler.AddFilter(redact)
	}

	doc, err := compiler.Compile()
	if err != nil {
		return err
	}

	out := reportOut
	if out == "" {
		out = cfg.Report.OutputDir
	}
	path, err := doc.Save(out)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Report %s saved to %s\n", doc.ID, path)
	return nil
}
