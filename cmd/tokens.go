package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mayan-swap/config"
	"mayan-swap/pkg/mayan"
	"mayan-swap/pkg/route"
	"mayan-swap/pkg/types"
)

var (
	filterChain  string
	filterSymbol string
)

var tokensCmd = &cobra.Command{
	Use:     "list-tokens",
	Aliases: []string{"tokens", "ls"},
	Short:   "List all supported tokens",
	Long: `List the tokens the Mayan aggregator can swap.

You can filter tokens by blockchain or symbol.

Examples:
  mayan-swap list-tokens
  mayan-swap list-tokens --chain solana
  mayan-swap list-tokens --symbol USDC`,
	Run: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&filterChain, "chain", "", "Filter by blockchain")
	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
}

func runListTokens(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	jsonOutput, _ := cmd.Flags().GetBool("json")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	chains := mayan.SupportedChains(cfg.Network)
	if filterChain != "" {
		chain, err := mayan.ToChain(cfg.Network, filterChain)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		chains = []types.Chain{chain}
	}

	client := mayan.NewClient(mayan.ClientConfig{
		Network:         cfg.Network,
		PriceBaseURL:    cfg.QuoteBaseURL,
		ExplorerBaseURL: cfg.ExplorerBaseURL,
	})
	cache := route.NewTokenCache(cfg.Network, client)

	// Get tokens with spinner
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching supported tokens..."
		s.Start()
	}

	tokensByChain := make(map[types.Chain][]mayan.Token)
	for _, chain := range chains {
		tokens, err := cache.Tokens(ctx, chain)
		if err != nil {
			if !jsonOutput {
				s.Stop()
			}
			printError(err)
			os.Exit(1)
		}
		tokensByChain[chain] = tokens
	}
	if !jsonOutput {
		s.Stop()
	}

	// Apply symbol filter
	if filterSymbol != "" {
		for chain, tokens := range tokensByChain {
			var temp []mayan.Token
			for _, token := range tokens {
				if strings.Contains(strings.ToUpper(token.Symbol), strings.ToUpper(filterSymbol)) {
					temp = append(temp, token)
				}
			}
			tokensByChain[chain] = temp
		}
	}

	// Output
	if jsonOutput {
		jsonData, _ := json.MarshalIndent(tokensByChain, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayTokens(chains, tokensByChain)
	}
}

func displayTokens(chains []types.Chain, tokensByChain map[types.Chain][]mayan.Token) {
	total := 0
	for _, tokens := range tokensByChain {
		total += len(tokens)
	}
	if total == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                            SUPPORTED TOKENS")
	fmt.Println(strings.Repeat("=", 90))

	for _, chain := range chains {
		tokens := tokensByChain[chain]
		if len(tokens) == 0 {
			continue
		}

		color.Cyan("\n%s", strings.ToUpper(string(chain)))
		fmt.Println(strings.Repeat("-", 90))

		for _, token := range tokens {
			address := token.Contract
			if strings.EqualFold(address, mayan.NativeContractAddress) {
				address = "(native)"
			}

			// Truncate address if too long
			if len(address) > 44 {
				address = address[:41] + "..."
			}

			fmt.Printf("  %-10s  %2d decimals  %s\n",
				color.YellowString(token.Symbol),
				token.Decimals,
				color.HiBlackString(address))
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d tokens across %d blockchains\n\n", total, len(chains))
}
