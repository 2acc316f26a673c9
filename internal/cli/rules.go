package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tnqn/code-review-comments/internal/app"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the available rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDESCRIPTION\tSUGGESTION")
			for _, r := range app.Catalog() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Description, r.Suggestion)
			}
			return tw.Flush()
		},
	}
}
