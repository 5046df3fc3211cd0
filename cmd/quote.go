package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"mayan-swap/config"
	"mayan-swap/pkg/mayan"
	"mayan-swap/pkg/parser"
	"mayan-swap/pkg/types"
)

var (
	quoteSlippage string
	quoteGasDrop  float64
	quoteOptimize string
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <token>@<chain> to <token>@<chain>",
	Short: "Fetch a swap quote without executing it",
	Long: `Fetch the best available quote for a swap without submitting anything.

Examples:
  mayan-swap quote 1 SOL@solana to USDC@base
  mayan-swap quote 100 USDC@arbitrum to SOL@solana --optimize cost
  mayan-swap quote 0.5 ETH@ethereum to USDC@base --slippage 300`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringVar(&quoteSlippage, "slippage", "auto", "Slippage tolerance in basis points, or 'auto'")
	quoteCmd.Flags().Float64Var(&quoteGasDrop, "gas-drop", 0, "Native gas to receive on the destination chain")
	quoteCmd.Flags().StringVar(&quoteOptimize, "optimize", "speed", "Quote selection preference: 'speed' or 'cost'")
}

func runQuote(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	commandStr := strings.Join(args, " ")
	swapReq, err := parser.ParseSwapCommand(commandStr)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	r := newRoute(cfg, verbose)

	sourceChain, err := mayan.ToChain(cfg.Network, swapReq.SourceChain)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	destChain, err := mayan.ToChain(cfg.Network, swapReq.DestChain)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}

	source, err := r.ResolveToken(ctx, sourceChain, swapReq.SourceToken)
	var dest types.TokenID
	if err == nil {
		dest, err = r.ResolveToken(ctx, destChain, swapReq.DestToken)
	}
	if err != nil {
		if !jsonOutput {
			s.Stop()
		}
		printError(err)
		os.Exit(1)
	}

	result := r.Validate(types.TransferRequest{
		Source:      source,
		Destination: dest,
		Amount:      swapReq.Amount,
		Options: types.Options{
			GasDrop:     quoteGasDrop,
			Slippage:    quoteSlippage,
			OptimizeFor: quoteOptimize,
		},
	})
	if !result.Valid {
		if !jsonOutput {
			s.Stop()
		}
		printError(result.Err)
		os.Exit(1)
	}

	quote, err := r.Quote(ctx, result.Params)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		var minErr *types.MinAmountError
		if errors.As(err, &minErr) {
			printError(fmt.Errorf("amount too small: the aggregator requires at least %s %s",
				minErr.Min, swapReq.SourceToken))
			os.Exit(1)
		}
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(quote.Details, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayQuote(quote, swapReq)
}
