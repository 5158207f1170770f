package cli

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/example/pickup/internal/config"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default .pickup/config.yaml",
		Long:  `Write a default configuration to .pickup/config.yaml in the current directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			destination, _ := cmd.Flags().GetString("destination")
			mode, _ := cmd.Flags().GetString("ledger")
			force, _ := cmd.Flags().GetBool("force")

			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			path := config.Path(dir)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.Default()
			if mode != "" {
				cfg.Ledger.Mode = mode
			}
			if destination != "" {
				if !common.IsHexAddress(destination) {
					return fmt.Errorf("destination %q is not a valid address", destination)
				}
				cfg.Destination = common.HexToAddress(destination).Hex()
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			if err := config.SaveConfig(dir, cfg); err != nil {
				return err
			}

			fmt.Printf("✓ Config written to %s\n", path)
			fmt.Println()
			fmt.Println("Next steps:")
			if cfg.Destination == "" {
				fmt.Println("  set destination_address (or PICKUP_DESTINATION_ADDRESS)")
			}
			fmt.Println("  pickup agents")
			fmt.Println("  pickup send --agent 1 --amount 20")

			return nil
		},
	}

	cmd.Flags().String("destination", "", "Destination address for pickup transfers")
	cmd.Flags().String("ledger", "", "Ledger mode: http or simulated")
	cmd.Flags().Bool("force", false, "Overwrite an existing config")
	return cmd
}
