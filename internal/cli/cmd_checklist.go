package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kirillkom/acceptance-verifier/internal/core/checklist"
	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

func newChecklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist <BAUT|BACT>",
		Short: "Print the checklist of a document type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docType := domain.ParseDocumentType(args[0])
			items, ok := checklist.Default().Template(docType)
			if !ok {
				return fmt.Errorf("%w: %q", domain.ErrUnknownDocumentType, args[0])
			}

			mapping := checklist.DefaultMapping()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NO\tSECTION\tITEM\tCATEGORY")
			for i, item := range items {
				category := string(mapping[item.DisplayName])
				if item.Signature {
					category = string(domain.CategorySignature)
				}
				if category == "" {
					category = "-"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, item.Section, item.DisplayName, category)
			}
			return tw.Flush()
		},
	}
	return cmd
}
