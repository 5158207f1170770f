package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/pickup/internal/wire"
)

// EventsCmd returns the events command
func EventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recent domain events",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			limit, _ := cmd.Flags().GetInt("limit")

			log := wire.EventLog()
			if log == nil {
				fmt.Println("Event log is only kept with the sqlite storage driver.")
				return nil
			}

			events, err := log.List(context.Background(), name, limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("No events recorded")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "WHEN\tEVENT\tAMOUNT\tID")
			fmt.Fprintln(w, "----\t-----\t------\t--")
			for _, e := range events {
				fmt.Fprintf(w, "%s\t%s\t$%.2f\t%s\n", e.OccurredAt.Local().Format("2006-01-02 15:04:05"), e.Name, e.Amount, e.ID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("name", "", "Only show events with this name")
	cmd.Flags().Int("limit", 20, "Maximum number of events (0 for all)")
	return cmd
}
