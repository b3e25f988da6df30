package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/veryresto/pingmo/internal/database"
	"github.com/veryresto/pingmo/internal/export"
	"github.com/veryresto/pingmo/internal/models"
	"github.com/veryresto/pingmo/internal/stats"
)

func openDatabase(path string) (*database.DB, error) {
	db, err := database.New(path)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}
	return db, nil
}

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived monitoring runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := requireFlag(cmd, "db")
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			db, err := openDatabase(path)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.ListRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No archived runs")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTARGET\tSTARTED\tDURATION\tPINGS\tSUCCESS")
			fmt.Fprintln(w, "--\t------\t-------\t--------\t-----\t-------")
			for _, r := range runs {
				duration := "running"
				if r.EndedAt != nil {
					duration = r.EndedAt.Sub(r.StartedAt).Round(time.Second).String()
				}
				success := "N/A"
				if r.SuccessRate != nil {
					success = fmt.Sprintf("%.2f%%", *r.SuccessRate)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Target, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
					duration, humanize.Comma(int64(r.Observations)), success)
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("db", "", "SQLite archive path")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Rebuild a results document from an archived run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := requireFlag(cmd, "db")
			if err != nil {
				return err
			}
			runID, err := requireFlag(cmd, "run")
			if err != nil {
				return err
			}
			output, _ := cmd.Flags().GetString("output")

			db, err := openDatabase(path)
			if err != nil {
				return err
			}
			defer db.Close()

			doc, run, err := rebuildDocument(db, runID)
			if err != nil {
				return err
			}

			if output == "" {
				output = export.DefaultPath(run.StartedAt.Local())
			}
			if err := export.Write(output, doc); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s observations of run %s to %s\n",
				humanize.Comma(int64(len(doc.Results))), run.ID, output)
			return nil
		},
	}

	cmd.Flags().String("db", "", "SQLite archive path")
	cmd.Flags().String("run", "", "Run ID (see pingmo runs)")
	cmd.Flags().StringP("output", "o", "", "Output file name (default: ping_results_YYYY-MM-DD-HH.MM.json)")
	return cmd
}

// rebuildDocument recomputes the summary of an archived run from its
// observations. It starts at its first observation; a run that never
// finished ends at its last one.
func rebuildDocument(db *database.DB, runID string) (models.Document, models.Run, error) {
	run, err := db.LoadRun(runID)
	if err != nil {
		return models.Document{}, run, err
	}

	observations, err := db.LoadObservations(runID)
	if err != nil {
		return models.Document{}, run, err
	}
	if observations == nil {
		observations = []models.Observation{}
	}

	started := run.StartedAt
	if len(observations) > 0 {
		started = observations[0].Timestamp
	}
	ended := run.StartedAt
	if run.EndedAt != nil {
		ended = *run.EndedAt
	} else if n := len(observations); n > 0 {
		ended = observations[n-1].Timestamp
	}

	summary := stats.Summarize(observations, stats.Meta{
		Target:   run.Target,
		Interval: time.Duration(run.Interval * float64(time.Second)),
		Started:  started,
		Ended:    ended,
	})
	return models.Document{Summary: summary, Results: observations}, run, nil
}
