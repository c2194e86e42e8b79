// Package cli provides the verifyctl command tree.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kirillkom/acceptance-verifier/internal/bootstrap"
	"github.com/kirillkom/acceptance-verifier/internal/config"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/resilience"
	"github.com/kirillkom/acceptance-verifier/internal/observability/logging"
)

// VerifierFactory builds the document verifier and a release func.
type VerifierFactory func(cfg config.Config, logger *slog.Logger) (ports.DocumentVerifier, func(), error)

type rootOpts struct {
	logLevel string
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultVerifierFactory)
}

func newRootCmd(factory VerifierFactory) *cobra.Command {
	opts := &rootOpts{}
	rootCmd := &cobra.Command{
		Use:   "verifyctl",
		Short: "Verify BAUT and BACT acceptance documents from the command line",
		Long: `verifyctl runs the acceptance document verification pipeline locally.

Configuration comes from the same environment variables as the API and worker
(MODEL_PATH, CLASS_NAMES_PATH, OCR_LANGUAGES, RENDER_DPI and friends).`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newVerifyCmd(opts, factory),
		newClassifyTextCmd(),
		newChecklistCmd(),
	)
	return rootCmd
}

// Execute runs the root command with the given output writers.
func Execute(stdout, stderr io.Writer) error {
	rootCmd := NewRootCmd()
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.Execute()
}

func defaultVerifierFactory(cfg config.Config, logger *slog.Logger) (ports.DocumentVerifier, func(), error) {
	executor := resilience.NewExecutor(resilience.SummaryConfig(), resilience.WithLogger(logger))
	pipeline, err := bootstrap.NewPipeline(cfg, logger, nil, executor)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := pipeline.Close(); err != nil {
			logger.Warn("inference_close_failed", "error", err)
		}
	}
	return pipeline.Verifier, release, nil
}

func newLogger(opts *rootOpts, cfg config.Config, stderr io.Writer) *slog.Logger {
	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	return logging.NewJSONLoggerTo(stderr, "verifyctl", level)
}
