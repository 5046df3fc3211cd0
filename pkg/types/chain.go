package types

// Network selects between the production and test deployments of every chain.
type Network string

const (
	Mainnet Network = "Mainnet"
	Testnet Network = "Testnet"
)

// Chain is the framework-side chain identifier vocabulary.
type Chain string

const (
	Solana    Chain = "Solana"
	Ethereum  Chain = "Ethereum"
	Bsc       Chain = "Bsc"
	Polygon   Chain = "Polygon"
	Avalanche Chain = "Avalanche"
	Arbitrum  Chain = "Arbitrum"
	Optimism  Chain = "Optimism"
	Base      Chain = "Base"
	Sui       Chain = "Sui"
	Aptos     Chain = "Aptos"

	// Testnet-only chains
	Sepolia         Chain = "Sepolia"
	ArbitrumSepolia Chain = "ArbitrumSepolia"
	BaseSepolia     Chain = "BaseSepolia"
)

// Platform is the execution model family of a chain.
type Platform string

const (
	PlatformEVM    Platform = "Evm"
	PlatformSolana Platform = "Solana"
	PlatformSui    Platform = "Sui"
	PlatformAptos  Platform = "Aptos"
)

// Platform returns the execution family for a chain. Chains not listed here
// default to EVM, matching how every non-Solana/Sui/Aptos chain is handled.
func (c Chain) Platform() Platform {
	switch c {
	case Solana:
		return PlatformSolana
	case Sui:
		return PlatformSui
	case Aptos:
		return PlatformAptos
	default:
		return PlatformEVM
	}
}

// NativeAddress is the reserved marker for a chain's native asset.
const NativeAddress = "native"

// TokenID identifies a token on a specific chain. Address is either a
// canonical contract address or the NativeAddress marker.
type TokenID struct {
	Chain   Chain  `json:"chain"`
	Address string `json:"address"`
}

// NativeToken returns the TokenID of the chain's native asset.
func NativeToken(chain Chain) TokenID {
	return TokenID{Chain: chain, Address: NativeAddress}
}

// IsNative reports whether the token is the chain's native asset.
func (t TokenID) IsNative() bool {
	return t.Address == "" || t.Address == NativeAddress
}

// TransactionID is an on-chain transaction reference.
type TransactionID struct {
	Chain Chain  `json:"chain"`
	TxID  string `json:"txid"`
}
