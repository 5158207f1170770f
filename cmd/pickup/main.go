package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/pickup/internal/cli"
	"github.com/example/pickup/internal/version"
	"github.com/example/pickup/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "pickup",
		Short:   "Send funds for cash pickup at a payout agent",
		Version: version.String(),
		Long: `pickup submits a transfer to a cash-out destination, follows it until it
settles, and issues a QR proof the recipient shows at a payout agent.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.AgentsCmd())
	rootCmd.AddCommand(cli.QuoteCmd())
	rootCmd.AddCommand(cli.SendCmd())
	rootCmd.AddCommand(cli.ListCmd())
	rootCmd.AddCommand(cli.ShowCmd())
	rootCmd.AddCommand(cli.EventsCmd())

	err := rootCmd.Execute()
	if shutdownErr := wire.Shutdown(); shutdownErr != nil {
		fmt.Fprintln(os.Stderr, shutdownErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
