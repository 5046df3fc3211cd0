package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mayan-swap/config"
	"mayan-swap/pkg/mayan"
)

var chainsCmd = &cobra.Command{
	Use:     "list-chains",
	Aliases: []string{"chains"},
	Short:   "List all supported blockchains",
	Long: `List the blockchains the Mayan aggregator can swap between on the
configured network.

Examples:
  mayan-swap list-chains
  MAYAN_SWAP_NETWORK=testnet mayan-swap list-chains`,
	Run: runListChains,
}

func init() {
	rootCmd.AddCommand(chainsCmd)
}

func runListChains(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	chains := mayan.SupportedChains(cfg.Network)

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(chains, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 50))
	color.Green("            SUPPORTED BLOCKCHAINS (%s)", cfg.Network)
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println()

	for _, chain := range chains {
		name, _ := mayan.ChainName(cfg.Network, chain)
		fmt.Printf("  %-20s %s\n", color.YellowString(string(chain)), color.HiBlackString(name))
	}

	fmt.Printf("\nTotal: %d blockchains\n\n", len(chains))
}
