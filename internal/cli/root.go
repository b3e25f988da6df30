package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/veryresto/pingmo/internal/config"
)

var version = "dev"

// NewRootCmd builds the pingmo command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pingmo",
		Short: "Sample ping latency to one host and export a results document",
		Long: `pingmo pings a single target at a fixed interval until interrupted,
then writes every observation plus a summary (percentiles, spike counts and
video conferencing quality bands) to a JSON file.

  Quick start:
    pingmo -t 1.1.1.1 -i 0.5
    pingmo -t example.com --db pingmo.db --listen :9101
    pingmo chart ping_results_2025-03-01-12.00.json`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := config.RegisterFlags(rootCmd.Flags())
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.Load()
		if err != nil {
			return err
		}
		return runMonitor(cmd.Context(), cfg, cmd.OutOrStdout())
	}

	rootCmd.AddCommand(newChartCmd())
	rootCmd.AddCommand(newRunsCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

// Execute executes the root command. SIGINT and SIGTERM end sampling
// gracefully; the results are still summarized and exported.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	case "fatal":
		log.SetLevel(log.FatalLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

func requireFlag(cmd *cobra.Command, name string) (string, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return "", fmt.Errorf("--%s is required", name)
	}
	return v, nil
}
