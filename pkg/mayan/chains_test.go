package mayan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mayan-swap/pkg/types"
)

func TestChainNameRoundTrip(t *testing.T) {
	for _, network := range []types.Network{types.Mainnet, types.Testnet} {
		for _, chain := range SupportedChains(network) {
			name, err := ChainName(network, chain)
			require.NoError(t, err, "chain %s on %s", chain, network)
			require.NotEmpty(t, name)

			back, err := ToChain(network, name)
			require.NoError(t, err)
			assert.Equal(t, chain, back)
		}
	}
}

func TestChainNameUnsupported(t *testing.T) {
	_, err := ChainName(types.Mainnet, types.Chain("near"))
	require.Error(t, err)

	var unsupported *types.UnsupportedChainError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "near", unsupported.Chain)

	// Testnet-only chains are unknown on mainnet and vice versa.
	_, err = ChainName(types.Mainnet, types.Sepolia)
	assert.Error(t, err)
	_, err = ChainName(types.Testnet, types.Ethereum)
	assert.Error(t, err)
}

func TestToChainUnsupported(t *testing.T) {
	_, err := ToChain(types.Mainnet, "gnosis")
	var unsupported *types.UnsupportedChainError
	require.True(t, errors.As(err, &unsupported))
}

func TestTokenAddress(t *testing.T) {
	native := types.NativeToken(types.Ethereum)
	assert.Equal(t, NativeContractAddress, TokenAddress(native))

	usdc := types.TokenID{Chain: types.Ethereum, Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"}
	assert.Equal(t, usdc.Address, TokenAddress(usdc))
}

func TestWormholeChainIDRoundTrip(t *testing.T) {
	for _, chain := range SupportedChains(types.Mainnet) {
		id, ok := WormholeChainID(chain)
		require.True(t, ok, "chain %s", chain)

		back, ok := ChainFromWormholeID(id)
		require.True(t, ok)
		assert.Equal(t, chain, back)
	}

	_, ok := WormholeChainID(types.Chain("near"))
	assert.False(t, ok)
}
