package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veryresto/pingmo/internal/export"
	"github.com/veryresto/pingmo/internal/report"
)

func newChartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart <results.json>",
		Short: "Render PNG charts and a summary from a results document",
		Long: `Render a report directory (latency time series, quality bands, spike
counts and summary.txt) from a document written by pingmo. The document is
validated first; a malformed file renders nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			doc, err := export.Load(args[0])
			if err != nil {
				return err
			}

			reportDir, err := report.GenerateReport(dir, doc)
			if err != nil {
				return err
			}

			report.PrintSummary(cmd.OutOrStdout(), doc.Summary)
			fmt.Fprintf(cmd.OutOrStdout(), "\nReport: %s\n", reportDir)
			return nil
		},
	}

	cmd.Flags().StringP("dir", "d", ".", "Directory the report is created in")
	return cmd
}
