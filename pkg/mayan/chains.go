package mayan

import (
	vaa "github.com/wormhole-foundation/wormhole/sdk/vaa"

	"mayan-swap/pkg/types"
)

// NativeContractAddress is the reserved sentinel the aggregator uses for a
// chain's native asset in place of a token contract address.
const NativeContractAddress = "0x0000000000000000000000000000000000000000"

type chainNamePair struct {
	chain types.Chain
	name  string
}

// Chain maps are ordered so SupportedChains returns a stable listing.
var mainnetChains = []chainNamePair{
	{types.Solana, "solana"},
	{types.Ethereum, "ethereum"},
	{types.Bsc, "bsc"},
	{types.Polygon, "polygon"},
	{types.Avalanche, "avalanche"},
	{types.Arbitrum, "arbitrum"},
	{types.Optimism, "optimism"},
	{types.Base, "base"},
	{types.Sui, "sui"},
	{types.Aptos, "aptos"},
}

var testnetChains = []chainNamePair{
	{types.Solana, "solana"},
	{types.Sepolia, "sepolia"},
	{types.ArbitrumSepolia, "arbitrum-sepolia"},
	{types.BaseSepolia, "base-sepolia"},
}

func chainPairs(network types.Network) []chainNamePair {
	if network == types.Testnet {
		return testnetChains
	}
	return mainnetChains
}

// ChainName translates a framework chain identifier into the aggregator's
// chain-name vocabulary.
func ChainName(network types.Network, chain types.Chain) (string, error) {
	for _, p := range chainPairs(network) {
		if p.chain == chain {
			return p.name, nil
		}
	}
	return "", &types.UnsupportedChainError{Chain: string(chain)}
}

// ToChain is the inverse of ChainName.
func ToChain(network types.Network, name string) (types.Chain, error) {
	for _, p := range chainPairs(network) {
		if p.name == name {
			return p.chain, nil
		}
	}
	return "", &types.UnsupportedChainError{Chain: name}
}

// SupportedChains lists every chain with a known aggregator mapping.
func SupportedChains(network types.Network) []types.Chain {
	pairs := chainPairs(network)
	chains := make([]types.Chain, 0, len(pairs))
	for _, p := range pairs {
		chains = append(chains, p.chain)
	}
	return chains
}

// IsSupportedChain reports whether the chain has an aggregator mapping on the
// given network.
func IsSupportedChain(network types.Network, chain types.Chain) bool {
	_, err := ChainName(network, chain)
	return err == nil
}

// TokenAddress returns the address the aggregator expects for a token: the
// native sentinel for native assets, else the canonical contract address.
func TokenAddress(token types.TokenID) string {
	if token.IsNative() {
		return NativeContractAddress
	}
	return token.Address
}

var wormholeChains = map[vaa.ChainID]types.Chain{
	vaa.ChainIDSolana:    types.Solana,
	vaa.ChainIDEthereum:  types.Ethereum,
	vaa.ChainIDBSC:       types.Bsc,
	vaa.ChainIDPolygon:   types.Polygon,
	vaa.ChainIDAvalanche: types.Avalanche,
	vaa.ChainIDSui:       types.Sui,
	vaa.ChainIDAptos:     types.Aptos,
	vaa.ChainIDArbitrum:  types.Arbitrum,
	vaa.ChainIDOptimism:  types.Optimism,
	vaa.ChainIDBase:      types.Base,

	vaa.ChainIDSepolia:         types.Sepolia,
	vaa.ChainIDArbitrumSepolia: types.ArbitrumSepolia,
	vaa.ChainIDBaseSepolia:     types.BaseSepolia,
}

// ChainFromWormholeID resolves the emitter chain of an attestation.
func ChainFromWormholeID(id vaa.ChainID) (types.Chain, bool) {
	c, ok := wormholeChains[id]
	return c, ok
}

// WormholeChainID is the inverse of ChainFromWormholeID.
func WormholeChainID(chain types.Chain) (vaa.ChainID, bool) {
	for id, c := range wormholeChains {
		if c == chain {
			return id, true
		}
	}
	return vaa.ChainIDUnset, false
}
