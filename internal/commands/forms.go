package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"smarttracker/internal/backend"
	"smarttracker/internal/core"
)

func newFormsCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "forms",
		Short: "List forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd.Context(), open, func(b *backend.Backend) error {
				forms, err := b.Forms.ListForms(cmd.Context())
				if err != nil {
					return fmt.Errorf("listing forms: %w", err)
				}
				if len(forms) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No forms.")
					return nil
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tFIELDS\tCREATED")
				for _, f := range forms {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", f.ID, f.Name,
						strings.Join(core.Labels(f.Fields), ", "),
						f.CreatedAt.Format(core.DateLayout))
				}
				return tw.Flush()
			})
		},
	}
}
