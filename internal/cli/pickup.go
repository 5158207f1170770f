package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/pickup/internal/ctxutil"
	"github.com/example/pickup/internal/wire"
)

// SendCmd returns the send command
func SendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send funds for cash pickup at a payout agent",
		Long: `Submit a transfer to the configured destination and wait for settlement.
On success a QR code is printed; show it to the agent to collect the cash.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			agentID, _ := cmd.Flags().GetString("agent")
			amount, _ := cmd.Flags().GetString("amount")
			requestID, _ := cmd.Flags().GetString("request-id")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if requestID == "" {
				requestID = uuid.NewString()
			}
			ctx = ctxutil.WithRequestID(ctx, requestID)

			adapter := wire.PickupAdapter()
			if _, err := adapter.Quote(ctx, amount); err != nil {
				return err
			}
			cmd.Println()

			_, err := adapter.Send(ctx, agentID, amount)
			return err
		},
	}

	cmd.Flags().StringP("agent", "a", "", "Payout agent ID (see 'pickup agents')")
	cmd.Flags().StringP("amount", "n", "", "Amount to send, e.g. 20 or 12.50")
	cmd.Flags().String("request-id", "", "Correlation ID for logs (generated when empty)")
	_ = cmd.MarkFlagRequired("agent")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

// ListCmd returns the list command
func ListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List completed pickups, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.PickupAdapter().List(context.Background())
			return err
		},
	}
}

// ShowCmd returns the show command
func ShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [pickup-id]",
		Short: "Show a completed pickup and its QR code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.PickupAdapter().Show(context.Background(), args[0])
			return err
		},
	}
}
