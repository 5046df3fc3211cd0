// Package route implements the Mayan route adapter: validate, quote,
// initiate and track for cross-chain swaps executed through the Mayan
// liquidity aggregator.
package route

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"mayan-swap/pkg/mayan"
	"mayan-swap/pkg/types"
)

// MaxSlippageBps caps the user-supplied slippage tolerance at 100%.
const MaxSlippageBps = 10_000

const (
	defaultPollInterval = time.Second
	defaultTrackTimeout = time.Hour
)

// ReferrerConfig enables referrer fees on quotes. Referral parameters are
// attached only when a Solana referrer address is configured.
type ReferrerConfig struct {
	// Addresses maps chains to the referrer payee address in that chain's
	// native format. Only the Solana, Ethereum and Sui entries are read.
	Addresses map[types.Chain]string
	// Bps is the fixed referrer fee in basis points.
	Bps int
	// BpsFor, when set, overrides Bps per request.
	BpsFor func(req types.TransferRequest) int
}

// Config configures a Route. Zero values select defaults.
type Config struct {
	Network types.Network
	// RPCEndpoints supplies the read-only chain clients used for allowance
	// checks and sign-only broadcast.
	RPCEndpoints map[types.Chain]string
	Referrer     *ReferrerConfig
	Logger       *logrus.Logger
	PollInterval time.Duration
	TrackTimeout time.Duration

	// Endpoint overrides, mainly for tests.
	QuoteBaseURL    string
	ExplorerBaseURL string
	ExplorerURL     string
	HTTPTimeout     time.Duration
}

// Route executes transfers through the aggregator, restricted to a set of
// enabled underlying protocols. The named presets only differ by that set and
// their metadata.
type Route struct {
	name     string
	provider string

	network   types.Network
	protocols []mayan.Protocol

	client   *mayan.Client
	tokens   *TokenCache
	conns    *connPool
	referrer *ReferrerConfig

	log *logrus.Entry

	pollInterval time.Duration
	trackTimeout time.Duration
	explorerURL  string
}

// New creates the full-aggregator preset, quoting across every generally
// available protocol.
func New(cfg Config) *Route {
	return newRoute("MayanSwap", "Mayan",
		[]mayan.Protocol{mayan.ProtocolWH, mayan.ProtocolMCTP, mayan.ProtocolSwift, mayan.ProtocolMonoChain}, cfg)
}

// NewSWIFT creates the preset restricted to the Swift auction protocol.
func NewSWIFT(cfg Config) *Route {
	return newRoute("MayanSwapSWIFT", "Mayan Swift", []mayan.Protocol{mayan.ProtocolSwift}, cfg)
}

// NewMCTP creates the preset restricted to the MCTP (Circle CCTP) protocol.
func NewMCTP(cfg Config) *Route {
	return newRoute("MayanSwapMCTP", "Mayan MCTP", []mayan.Protocol{mayan.ProtocolMCTP}, cfg)
}

// NewWH creates the preset restricted to the Wormhole token-bridge protocol.
func NewWH(cfg Config) *Route {
	return newRoute("MayanSwapWH", "Mayan", []mayan.Protocol{mayan.ProtocolWH}, cfg)
}

// NewMonoChain creates the preset restricted to same-chain swaps.
func NewMonoChain(cfg Config) *Route {
	return newRoute("MayanSwapMONOCHAIN", "Mayan Mono Chain", []mayan.Protocol{mayan.ProtocolMonoChain}, cfg)
}

func newRoute(name, provider string, protocols []mayan.Protocol, cfg Config) *Route {
	network := cfg.Network
	if network == "" {
		network = types.Mainnet
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	client := mayan.NewClient(mayan.ClientConfig{
		Network:         network,
		PriceBaseURL:    cfg.QuoteBaseURL,
		ExplorerBaseURL: cfg.ExplorerBaseURL,
		Timeout:         cfg.HTTPTimeout,
		Logger:          logger,
	})

	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = defaultPollInterval
	}
	trackTimeout := cfg.TrackTimeout
	if trackTimeout == 0 {
		trackTimeout = defaultTrackTimeout
	}
	explorerURL := cfg.ExplorerURL
	if explorerURL == "" {
		explorerURL = "https://explorer.mayan.finance"
	}

	return &Route{
		name:         name,
		provider:     provider,
		network:      network,
		protocols:    protocols,
		client:       client,
		tokens:       NewTokenCache(network, client),
		conns:        newConnPool(cfg.RPCEndpoints),
		referrer:     cfg.Referrer,
		log:          logger.WithField("route", name),
		pollInterval: pollInterval,
		trackTimeout: trackTimeout,
		explorerURL:  explorerURL,
	}
}

// Name returns the preset's route name.
func (r *Route) Name() string { return r.name }

// Provider returns the preset's human-facing provider name.
func (r *Route) Provider() string { return r.provider }

// Network returns the network the route operates on.
func (r *Route) Network() types.Network { return r.network }

// Protocols returns the underlying protocols this preset quotes across.
func (r *Route) Protocols() []mayan.Protocol { return r.protocols }

// SupportedNetworks lists the networks any preset can operate on.
func SupportedNetworks() []types.Network {
	return []types.Network{types.Mainnet, types.Testnet}
}

// SupportedChains lists the chains with an aggregator mapping on a network.
func SupportedChains(network types.Network) []types.Chain {
	return mayan.SupportedChains(network)
}

// IsProtocolSupported reports whether transfers touching the chain can be
// routed through the aggregator.
func IsProtocolSupported(network types.Network, chain types.Chain) bool {
	return mayan.IsSupportedChain(network, chain)
}

// SupportsSameChainSwaps reports whether the mono-chain preset can swap
// within a single chain. Only mainnet EVM and Solana chains qualify.
func (r *Route) SupportsSameChainSwaps(chain types.Chain) bool {
	if len(r.protocols) != 1 || r.protocols[0] != mayan.ProtocolMonoChain {
		return false
	}
	if r.network != types.Mainnet {
		return false
	}
	p := chain.Platform()
	return p == types.PlatformEVM || p == types.PlatformSolana
}

// DefaultOptions returns the options applied when a request leaves them
// unset.
func (r *Route) DefaultOptions() types.Options {
	return types.Options{
		GasDrop:     0,
		Slippage:    types.SlippageAuto,
		OptimizeFor: types.OptimizeSpeed,
	}
}

// Validate checks a transfer request and produces the validated params quote
// acquisition consumes. Bad option values are reported in the result, not as
// an error return.
func (r *Route) Validate(req types.TransferRequest) types.ValidationResult {
	invalid := func(err error) types.ValidationResult {
		return types.ValidationResult{Valid: false, Err: err}
	}

	defaults := r.DefaultOptions()
	if req.Options.Slippage == "" {
		req.Options.Slippage = defaults.Slippage
	}
	if req.Options.OptimizeFor == "" {
		req.Options.OptimizeFor = defaults.OptimizeFor
	}

	if _, err := mayan.ChainName(r.network, req.Source.Chain); err != nil {
		return invalid(err)
	}
	if _, err := mayan.ChainName(r.network, req.Destination.Chain); err != nil {
		return invalid(err)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return invalid(fmt.Errorf("invalid amount %q: %w", req.Amount, err))
	}
	if amount.Sign() <= 0 {
		return invalid(fmt.Errorf("amount must be positive, got %s", req.Amount))
	}

	if req.Options.GasDrop < 0 {
		return invalid(fmt.Errorf("gas drop must not be negative"))
	}

	switch req.Options.OptimizeFor {
	case types.OptimizeCost, types.OptimizeSpeed:
	default:
		return invalid(fmt.Errorf("optimizeFor must be %q or %q, got %q",
			types.OptimizeCost, types.OptimizeSpeed, req.Options.OptimizeFor))
	}

	slippageBps := types.SlippageBpsAuto
	if req.Options.Slippage != types.SlippageAuto {
		slippageBps, err = strconv.Atoi(req.Options.Slippage)
		if err != nil {
			return invalid(fmt.Errorf("slippage must be %q or basis points: %w", types.SlippageAuto, err))
		}
		if slippageBps < 0 || slippageBps > MaxSlippageBps {
			return invalid(fmt.Errorf("slippage must be between 0 and %d bps, got %d", MaxSlippageBps, slippageBps))
		}
	}

	return types.ValidationResult{
		Valid: true,
		Params: types.ValidatedParams{
			Request:    req,
			Normalized: types.NormalizedParams{SlippageBps: slippageBps},
		},
	}
}

// TransferURL builds the human-facing explorer URL for an origin transaction.
func (r *Route) TransferURL(txid string) string {
	return fmt.Sprintf("%s/swap/%s", r.explorerURL, txid)
}

// referrerAddresses returns the configured referrer payees and fee for a
// request, or nil when referral is disabled.
func (r *Route) referrerAddresses(req types.TransferRequest) *mayan.ReferrerAddresses {
	if r.referrer == nil || len(r.referrer.Addresses) == 0 {
		return nil
	}
	bps := r.referrer.Bps
	if r.referrer.BpsFor != nil {
		bps = r.referrer.BpsFor(req)
	}
	return &mayan.ReferrerAddresses{
		Solana: r.referrer.Addresses[types.Solana],
		EVM:    r.referrer.Addresses[types.Ethereum],
		Sui:    r.referrer.Addresses[types.Sui],
		Bps:    uint8(bps),
	}
}

// referralParams returns the referrer and fee to attach to a quote request.
// Referral requires a Solana referrer address, matching the aggregator's fee
// collection model.
func (r *Route) referralParams(req types.TransferRequest) (string, int) {
	if r.referrer == nil {
		return "", 0
	}
	referrer := r.referrer.Addresses[types.Solana]
	if referrer == "" {
		return "", 0
	}
	bps := r.referrer.Bps
	if r.referrer.BpsFor != nil {
		bps = r.referrer.BpsFor(req)
	}
	return referrer, bps
}
