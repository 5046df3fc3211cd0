package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mayan-swap/config"
	"mayan-swap/pkg/mayan"
	"mayan-swap/pkg/parser"
	"mayan-swap/pkg/route"
	"mayan-swap/pkg/signer"
	"mayan-swap/pkg/types"
)

var (
	recipientAddr string
	slippageFlag  string
	gasDropFlag   float64
	optimizeFlag  string
	noConfirm     bool
	noTrack       bool
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <token>@<chain> to <token>@<chain>",
	Short: "Perform a cross-chain token swap",
	Long: `Swap tokens across blockchains through the Mayan aggregator.

IMPORTANT:
  - You MUST specify --recipient (where you'll receive tokens)
  - The recipient address must be valid for the destination blockchain
  - Signing keys and RPC endpoints come from the environment or .mayan-swap.yaml

Examples:
  # Cross-chain swap
  mayan-swap swap 1 SOL@solana to USDC@base --recipient 0x1234...abcd

  # Optimize for the best output amount instead of speed
  mayan-swap swap 100 USDC@arbitrum to SOL@solana --recipient <solana-addr> --optimize cost

  # Fixed slippage and destination gas drop-off
  mayan-swap swap 0.5 ETH@ethereum to USDC@base --recipient 0x1234... --slippage 300 --gas-drop 0.005

  # Skip confirmation and don't wait for settlement
  mayan-swap swap 1 SOL@solana to USDC@base --recipient 0x1234... --yes --no-track`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().StringVar(&recipientAddr, "recipient", "", "Recipient address (REQUIRED - where you'll receive tokens)")
	swapCmd.Flags().StringVar(&slippageFlag, "slippage", "auto", "Slippage tolerance in basis points, or 'auto'")
	swapCmd.Flags().Float64Var(&gasDropFlag, "gas-drop", 0, "Native gas to receive on the destination chain")
	swapCmd.Flags().StringVar(&optimizeFlag, "optimize", "speed", "Quote selection preference: 'speed' or 'cost'")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	swapCmd.Flags().BoolVar(&noTrack, "no-track", false, "Don't wait for the transfer to settle")
}

func runSwap(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	// Parse the command
	commandStr := strings.Join(args, " ")
	swapReq, err := parser.ParseSwapCommand(commandStr)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if recipientAddr == "" {
		printError(fmt.Errorf("--recipient is required"))
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

	// Resolve token symbols against the aggregator's listings
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Resolving tokens..."
		s.Start()
	}
	source, err := r.ResolveToken(ctx, sourceChain, swapReq.SourceToken)
	var dest types.TokenID
	if err == nil {
		dest, err = r.ResolveToken(ctx, destChain, swapReq.DestToken)
	}
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	result := r.Validate(types.TransferRequest{
		Source:      source,
		Destination: dest,
		Amount:      swapReq.Amount,
		Options: types.Options{
			GasDrop:     gasDropFlag,
			Slippage:    slippageFlag,
			OptimizeFor: optimizeFlag,
		},
	})
	if !result.Valid {
		printError(result.Err)
		os.Exit(1)
	}

	// Get quote with spinner
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
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

	if verbose {
		fmt.Printf("\nQuote received (%s):\n", quote.Details.Type)
		quoteJSON, _ := json.MarshalIndent(quote.Details, "", "  ")
		fmt.Println(string(quoteJSON))
	}

	if jsonOutput {
		output := map[string]interface{}{
			"protocol":          quote.Details.Type,
			"source_amount":     quote.SourceToken.Amount.String(),
			"source_token":      swapReq.SourceToken,
			"dest_amount":       quote.DestinationToken.Amount.String(),
			"dest_token":        swapReq.DestToken,
			"relay_fee_usd":     quote.RelayFee.Amount.String(),
			"time_estimate_sec": quote.ETA.Seconds(),
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayQuote(quote, swapReq)
	}

	// Ask for confirmation
	if !noConfirm && !jsonOutput {
		if !confirmSwap() {
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}
	}

	sgn, err := newSigner(cfg, sourceChain)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if !jsonOutput {
		s.Suffix = " Submitting swap..."
		s.Start()
	}
	receipt, err := r.Initiate(ctx, quote, recipientAddr, sgn)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	txid := receipt.OriginTxs[len(receipt.OriginTxs)-1].TxID
	if jsonOutput {
		jsonData, _ := json.MarshalIndent(receipt, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		color.Green("\n✓ Swap submitted!")
		fmt.Printf("  Transaction: %s\n", color.CyanString(txid))
		fmt.Printf("  Explorer:    %s\n", color.HiBlackString(r.TransferURL(txid)))
	}

	if noTrack {
		if !jsonOutput {
			fmt.Println("\nYou can track the transfer later using:")
			color.Cyan("  mayan-swap track %s --chain %s\n", txid, swapReq.SourceChain)
		}
		return
	}

	if err := trackTransfer(ctx, r, receipt, cfg.TrackTimeout, jsonOutput); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// newSigner builds the signer for the source chain from the configured keys.
func newSigner(cfg *config.Config, chain types.Chain) (types.Signer, error) {
	key, err := cfg.PrivateKeyFor(chain)
	if err != nil {
		return nil, err
	}
	switch chain.Platform() {
	case types.PlatformEVM:
		return signer.NewEVMSigner(chain, cfg.RPCEndpoints[chain], key)
	case types.PlatformSolana:
		return signer.NewSolanaSigner(cfg.RPCEndpoints[chain], key)
	default:
		return nil, fmt.Errorf("no signing support for %s chains", chain.Platform())
	}
}

func displayQuote(quote *route.Quote, swapReq *parser.SwapCommand) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Protocol:          %s\n", color.CyanString(string(quote.Details.Type)))
	fmt.Printf("  From:              %s %s on %s\n",
		quote.SourceToken.Amount, color.YellowString(swapReq.SourceToken), swapReq.SourceChain)
	fmt.Printf("  To:                ~%s %s on %s\n",
		quote.DestinationToken.Amount, color.YellowString(swapReq.DestToken), swapReq.DestChain)
	fmt.Printf("  Relay Fee:         $%s\n", quote.RelayFee.Amount)
	if !quote.DestinationNativeGas.IsZero() {
		fmt.Printf("  Gas Drop-off:      %s\n", quote.DestinationNativeGas)
	}
	fmt.Printf("  Estimated Time:    %.0f seconds\n", quote.ETA.Seconds())
	if quote.Expires != nil {
		fmt.Printf("  Quote Expires:     %s\n", quote.Expires.Format("15:04:05"))
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func confirmSwap() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with swap? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
