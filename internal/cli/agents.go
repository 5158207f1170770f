package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/pickup/internal/wire"
)

// AgentsCmd returns the agents command
func AgentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List payout agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.PickupAdapter().Agents(context.Background())
			return err
		},
	}
}

// QuoteCmd returns the quote command
func QuoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote [amount]",
		Short: "Show the fee and the cash received for an amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.PickupAdapter().Quote(context.Background(), args[0])
			return err
		},
	}
}
