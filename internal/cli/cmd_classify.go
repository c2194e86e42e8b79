package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/acceptance-verifier/internal/bootstrap"
	"github.com/kirillkom/acceptance-verifier/internal/config"
	"github.com/kirillkom/acceptance-verifier/internal/core/keywords"
)

func newClassifyTextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify-text [text...]",
		Short: "Run the keyword rules against text",
		Long: `Run the keyword rules against text given as arguments, or stdin when no
arguments are given, and print the resulting category with the rule that
matched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(raw)
			}

			engine, err := bootstrap.NewKeywordEngine(config.Load())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			match, ok := engine.Explain(text)
			if !ok {
				fmt.Fprintln(out, engine.Classify(text))
				return nil
			}
			fmt.Fprintf(out, "%s\t(group %s, keyword %q, threshold %.0f, normalized %q)\n",
				match.Category, match.Group, match.Keyword, match.Threshold, keywords.Normalize(text))
			return nil
		},
	}
	return cmd
}
