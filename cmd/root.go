package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mayan-swap/config"
	"mayan-swap/pkg/route"
	"mayan-swap/pkg/types"
)

var rootCmd = &cobra.Command{
	Use:   "mayan-swap",
	Short: "A CLI for cross-chain swaps through the Mayan aggregator",
	Long: `mayan-swap is a command-line tool for cross-chain token swaps through the
Mayan liquidity aggregator. It quotes across the aggregator's underlying
protocols, submits the source-chain transactions, and tracks the transfer
until it settles or refunds.

Examples:
  mayan-swap swap 1 SOL@solana to USDC@base --recipient 0x1234...abcd
  mayan-swap swap 100 USDC@arbitrum to SOL@solana --recipient <solana-addr> --optimize cost
  mayan-swap track <txid> --chain arbitrum
  mayan-swap list-tokens --chain solana
  mayan-swap list-chains`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}

// newRoute builds the full-aggregator route preset from the CLI
// configuration.
func newRoute(cfg *config.Config, verbose bool) *route.Route {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	routeCfg := route.Config{
		Network:         cfg.Network,
		RPCEndpoints:    cfg.RPCEndpoints,
		Logger:          logger,
		PollInterval:    cfg.PollInterval,
		TrackTimeout:    cfg.TrackTimeout,
		QuoteBaseURL:    cfg.QuoteBaseURL,
		ExplorerBaseURL: cfg.ExplorerBaseURL,
	}
	if cfg.ReferrerAddress != "" {
		routeCfg.Referrer = &route.ReferrerConfig{
			Addresses: map[types.Chain]string{types.Solana: cfg.ReferrerAddress},
			Bps:       cfg.ReferrerBps,
		}
	}

	return route.New(routeCfg)
}
