package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var version = "dev"

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	debug   bool
	logFile bool
	quiet   bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "lossgrid",
		Short: "lossgrid - visualize which samples a model finds hardest",
		Long: `lossgrid is a command-line tool for inspecting classifier mistakes.

It runs a predictor over a labelled image dataset, computes a per-sample
loss, ranks the samples from lowest to highest loss and draws them as a
grid with a green-to-red dot overlay marking each sample's relative loss.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.logFile, "log-file", false, "Also write logs to a timestamped file")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress console logs, progress and the summary table")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if opts.debug {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newRenderCommand(opts))
	cmd.AddCommand(newInitCommand())

	return cmd
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}
