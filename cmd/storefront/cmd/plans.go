package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"storefront/internal/subscription"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List delivery subscription plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			planner := subscription.NewPlanner(zerolog.Nop())
			out := cmd.OutOrStdout()

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPLAN\tDISCOUNT\tDAYS")
			for _, p := range planner.Plans() {
				fmt.Fprintf(w, "%s\t%s\t%d%%\t%s\n", p.ID, p.Title, p.BaseDiscount, strings.Join(p.Days, ", "))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Bonus: 5+ days selected adds 10%, 10+ days adds 15%, capped at 20% total.")
			return nil
		},
	}
}
