package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kirillkom/acceptance-verifier/internal/config"
	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

type verifyOpts struct {
	docType string
	asJSON  bool
	quiet   bool
}

func newVerifyCmd(root *rootOpts, factory VerifierFactory) *cobra.Command {
	opts := &verifyOpts{}
	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify a PDF or scanned image against its checklist",
		Long: `Verify a PDF or scanned image against the BAUT or BACT checklist.

Progress is written to stderr; the report goes to stdout. Interrupting the
command cancels the run and removes its working files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := config.Load()
			logger := newLogger(root, cfg, cmd.ErrOrStderr())
			verifier, release, err := factory(cfg, logger)
			if err != nil {
				return fmt.Errorf("init pipeline: %w", err)
			}
			defer release()

			req := domain.VerificationRequest{
				SourcePath:   args[0],
				MimeType:     mime.TypeByExtension(filepath.Ext(args[0])),
				DocumentType: domain.ParseDocumentType(opts.docType),
			}
			return runVerify(ctx, verifier.Verify(ctx, req), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&opts.docType, "doc-type", "t", "BAUT", "document type: BAUT or BACT")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print progress")
	return cmd
}

func runVerify(ctx context.Context, events iter.Seq[domain.ProgressEvent], opts *verifyOpts, stdout, stderr io.Writer) error {
	var last domain.ProgressEvent
	for event := range events {
		last = event
		if event.Kind == domain.EventProgress && !opts.quiet {
			fmt.Fprintf(stderr, "[%3d%%] %s\n", event.Percent, event.Message)
		}
	}

	switch last.Kind {
	case domain.EventDone:
		if last.Report == nil {
			return errors.New("verification finished without a report")
		}
		if opts.asJSON {
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(last.Report)
		}
		return printReport(stdout, *last.Report)
	case domain.EventError:
		if last.Err != nil {
			return last.Err
		}
		return errors.New(last.Message)
	default:
		if err := ctx.Err(); err != nil {
			return err
		}
		return errors.New("verification ended without a result")
	}
}

func printReport(w io.Writer, report domain.VerificationReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Document type:\t%s\n", report.DocumentType)
	fmt.Fprintf(tw, "Score:\t%.2f (%s)\n", report.Score, report.Level)
	fmt.Fprintf(tw, "Signature:\t%s\n\n", report.Signature.Status)
	fmt.Fprintln(tw, "NO\tITEM\tSTATUS\tNOTE")
	for i, item := range report.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, item.DisplayName, item.Status, item.Note)
	}
	return tw.Flush()
}
