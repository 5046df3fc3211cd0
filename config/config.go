package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"mayan-swap/pkg/types"
)

// Config holds the application configuration
type Config struct {
	// Network selects mainnet or testnet.
	Network types.Network

	// RPCEndpoints maps chains to their RPC URLs.
	RPCEndpoints map[types.Chain]string

	// EVMPrivateKey is the hex-encoded key used on every EVM chain.
	EVMPrivateKey string
	// SolanaPrivateKey is the base58-encoded Solana key.
	SolanaPrivateKey string

	// ReferrerAddress is an optional Solana referrer payee.
	ReferrerAddress string
	// ReferrerBps is the referrer fee in basis points.
	ReferrerBps int

	PollInterval time.Duration
	TrackTimeout time.Duration

	// Optional endpoint overrides for the aggregator APIs.
	QuoteBaseURL    string
	ExplorerBaseURL string
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".mayan-swap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("network", string(types.Mainnet))
	viper.SetDefault("poll_interval", "5s")
	viper.SetDefault("track_timeout", "1h")

	// Read from environment variables
	viper.SetEnvPrefix("MAYAN_SWAP")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	network := types.Network(viper.GetString("network"))
	if network != types.Mainnet && network != types.Testnet {
		return nil, fmt.Errorf("network must be %q or %q, got %q", types.Mainnet, types.Testnet, network)
	}

	endpoints := make(map[types.Chain]string)
	for chain, url := range viper.GetStringMapString("rpc_endpoints") {
		endpoints[types.Chain(chain)] = url
	}

	cfg := &Config{
		Network:          network,
		RPCEndpoints:     endpoints,
		EVMPrivateKey:    viper.GetString("evm_private_key"),
		SolanaPrivateKey: viper.GetString("solana_private_key"),
		ReferrerAddress:  viper.GetString("referrer_address"),
		ReferrerBps:      viper.GetInt("referrer_bps"),
		PollInterval:     viper.GetDuration("poll_interval"),
		TrackTimeout:     viper.GetDuration("track_timeout"),
		QuoteBaseURL:     viper.GetString("quote_base_url"),
		ExplorerBaseURL:  viper.GetString("explorer_base_url"),
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}

// PrivateKeyFor returns the signing key for a chain's platform.
func (c *Config) PrivateKeyFor(chain types.Chain) (string, error) {
	switch chain.Platform() {
	case types.PlatformEVM:
		if c.EVMPrivateKey == "" {
			return "", fmt.Errorf("EVM private key not configured. Set MAYAN_SWAP_EVM_PRIVATE_KEY or add evm_private_key to .mayan-swap.yaml")
		}
		return c.EVMPrivateKey, nil
	case types.PlatformSolana:
		if c.SolanaPrivateKey == "" {
			return "", fmt.Errorf("Solana private key not configured. Set MAYAN_SWAP_SOLANA_PRIVATE_KEY or add solana_private_key to .mayan-swap.yaml")
		}
		return c.SolanaPrivateKey, nil
	default:
		return "", fmt.Errorf("no signing support for %s chains", chain.Platform())
	}
}
