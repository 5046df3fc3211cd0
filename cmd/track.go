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
	trackChain   string
	trackTimeout time.Duration
)

var trackCmd = &cobra.Command{
	Use:   "track <txid>",
	Short: "Track a transfer until it settles or refunds",
	Long: `Track the progress of a previously submitted swap by its source-chain
transaction id. Tracking follows the transfer through the aggregator until it
settles on the destination chain, refunds, or the timeout elapses.

Examples:
  mayan-swap track 3nR7...pQ9f --chain solana
  mayan-swap track 0x1234...abcd --chain arbitrum --timeout 30m`,
	Args: cobra.ExactArgs(1),
	Run:  runTrack,
}

func init() {
	rootCmd.AddCommand(trackCmd)

	trackCmd.Flags().StringVar(&trackChain, "chain", "", "Source blockchain of the transaction (REQUIRED)")
	trackCmd.Flags().DurationVar(&trackTimeout, "timeout", 0, "How long to keep polling (default from config)")
}

func runTrack(cmd *cobra.Command, args []string) {
	txid := args[0]
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if trackChain == "" {
		printError(fmt.Errorf("--chain is required"))
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	chain, err := mayan.ToChain(cfg.Network, trackChain)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	timeout := trackTimeout
	if timeout == 0 {
		timeout = cfg.TrackTimeout
	}

	r := newRoute(cfg, verbose)
	receipt := &types.Receipt{
		From:      chain,
		State:     types.StateSourceInitiated,
		OriginTxs: []types.TransactionID{{Chain: chain, TxID: txid}},
	}

	if err := trackTransfer(context.Background(), r, receipt, timeout, jsonOutput); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// trackTransfer drives a tracking session to completion, printing each state
// transition as it is observed.
func trackTransfer(ctx context.Context, r *route.Route, receipt *types.Receipt, timeout time.Duration, jsonOutput bool) error {
	session, err := r.Track(receipt, timeout)
	if err != nil {
		return err
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Tracking transfer..."
		s.Start()
		defer s.Stop()
	}

	last := receipt
	for {
		update, err := session.Next(ctx)
		if err != nil {
			return err
		}
		if update == nil {
			break
		}
		last = update

		if jsonOutput {
			jsonData, _ := json.MarshalIndent(update, "", "  ")
			fmt.Println(string(jsonData))
			continue
		}

		s.Stop()
		displayReceipt(update)
		if !update.State.Terminal() {
			s.Start()
		}
	}

	if !jsonOutput && !last.State.Terminal() {
		s.Stop()
		color.Yellow("\nTransfer still in progress when tracking stopped.")
		fmt.Println("Run the track command again to keep following it.")
	}
	return nil
}

func displayReceipt(receipt *types.Receipt) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        TRANSFER STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  State:           %s\n", coloredState(receipt.State))
	fmt.Printf("  Route:           %s -> %s\n", receipt.From, receipt.To)

	for _, tx := range receipt.OriginTxs {
		fmt.Printf("  Origin Tx:       %s\n", color.HiBlackString(tx.TxID))
	}
	for _, tx := range receipt.DestinationTxs {
		fmt.Printf("  Destination Tx:  %s\n", color.HiBlackString(tx.TxID))
	}
	for _, tx := range receipt.RefundTxs {
		fmt.Printf("  Refund Tx:       %s\n", color.HiBlackString(tx.TxID))
	}
	if receipt.Attestation != nil {
		fmt.Printf("  Attestation:     %s (seq %d)\n",
			color.HiBlackString(receipt.Attestation.Emitter), receipt.Attestation.Sequence)
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func coloredState(state types.TransferState) string {
	switch state {
	case types.StateDestinationFinalized:
		return color.GreenString(state.String())
	case types.StateRefunded, types.StateFailed:
		return color.RedString(state.String())
	default:
		return color.YellowString(state.String())
	}
}
